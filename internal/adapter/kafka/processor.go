package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hamba/avro/v2"
	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.RecentSearchesProcessor = (*RecentSearchesProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A searchEventCodec used for serde [schema.SearchEventV1]
type searchEventCodec struct {
	serde Serde
}

func newSearchEventCodec(s Serde) searchEventCodec {
	return searchEventCodec{s}
}

func (c searchEventCodec) Encode(v any) ([]byte, error) {
	const op = "searchEventCodec.Encode"
	if _, ok := v.(schema.SearchEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c searchEventCodec) Decode(data []byte) (any, error) {
	const op = "searchEventCodec.Decode"
	var s schema.SearchEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A recentSearchesCodec used for serde [schema.RecentSearchesV1]
// table values. Table values are not registered in the schema registry.
type recentSearchesCodec struct {
	avroSchema avro.Schema
}

func newRecentSearchesCodec() recentSearchesCodec {
	return recentSearchesCodec{schema.RecentSearchesV1Avro()}
}

func (c recentSearchesCodec) Encode(v any) ([]byte, error) {
	const op = "recentSearchesCodec.Encode"
	list, ok := v.(schema.RecentSearchesV1)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	data, err := schema.AvroEncodeFn(c.avroSchema)([]string(list))
	if err != nil {
		return nil, opErr(err, op)
	}
	return data, nil
}

func (c recentSearchesCodec) Decode(data []byte) (any, error) {
	const op = "recentSearchesCodec.Decode"
	var list []string
	err := schema.AvroDecodeFn(c.avroSchema)(data, &list)
	if err != nil {
		return nil, opErr(err, op)
	}
	return schema.RecentSearchesV1(list), nil
}

// A RecentSearchesProcessor folds search events from the input stream
// into the group table of recent searches keyed by client.
type RecentSearchesProcessor struct {
	opPrefix string
	capacity int
	proc     processor
}

func NewRecentSearchesProc(
	seedBrokers []string,
	inputStream string,
	group string,
	searchEventSerde Serde,
	capacity int,
) (*RecentSearchesProcessor, error) {
	const op = "NewRecentSearchesProc"

	p := &RecentSearchesProcessor{
		opPrefix: "RecentSearchesProcessor",
		capacity: capacity,
	}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newSearchEventCodec(searchEventSerde),
			p.processFn,
		),
		goka.Persist(newRecentSearchesCodec()),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return p, nil
}

func (p *RecentSearchesProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *RecentSearchesProcessor) Close() {
	p.proc.close()
}

func (p *RecentSearchesProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op), "key", ctx.Key())

	event, ok := msg.(schema.SearchEventV1)
	if !ok {
		log.Error("unexpected message type")
		return
	}

	current, _ := ctx.Value().(schema.RecentSearchesV1)
	next := p.push(current, event.Query)
	ctx.SetValue(next)
	log.Debug("recent searches updated", "nSearches", len(next))
}

func (p *RecentSearchesProcessor) push(
	current schema.RecentSearchesV1, query string,
) schema.RecentSearchesV1 {
	return domain.PushRecentSearch(current, query, p.capacity)
}
