package kafka

import (
	"context"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/pkg/schema"
)

// A SearchEventsEmitter emits submitted search queries to the stream
// consumed by [RecentSearchesProcessor].
type SearchEventsEmitter struct {
	opPrefix string
	ge       *goka.Emitter
}

func NewSearchEventsEmitter(
	seedBrokers []string, stream string, searchEventSerde Serde,
) (SearchEventsEmitter, error) {
	const op = "NewSearchEventsEmitter"

	ge, err := goka.NewEmitter(
		seedBrokers,
		goka.Stream(stream),
		newSearchEventCodec(searchEventSerde),
	)
	if err != nil {
		return SearchEventsEmitter{}, opErr(err, op)
	}
	return SearchEventsEmitter{"SearchEventsEmitter", ge}, nil
}

func (e SearchEventsEmitter) EmitSearch(
	ctx context.Context, key, query string,
) error {
	const op = "EmitSearch"

	if err := ctx.Err(); err != nil {
		return opErr(err, e.opPrefix, op)
	}

	v := schema.SearchEventV1{Key: key, Query: query}
	if err := e.ge.EmitSync(key, v); err != nil {
		return opErr(err, e.opPrefix, op)
	}
	return nil
}

func (e SearchEventsEmitter) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(e.opPrefix, op))

	log.Info("closing emitter...")
	if err := e.ge.Finish(); err != nil {
		log.Error("failed to finish gracefully", "err", err)
		return
	}
	log.Info("emitter is closed")
}
