package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.RecentSearchesStorage = (*RecentSearchesStorage)(nil)

type searchEmitter interface {
	EmitSearch(ctx context.Context, key, query string) error
	Close()
}

type tableGetter interface {
	Get(key string) (any, error)
}

// A RecentSearchesView serves reads of the recent searches group table.
type RecentSearchesView struct {
	opPrefix string
	gv       *goka.View
}

func NewRecentSearchesView(
	seedBrokers []string, group string,
) (*RecentSearchesView, error) {
	const op = "NewRecentSearchesView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		newRecentSearchesCodec(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &RecentSearchesView{"RecentSearchesView", gv}, nil
}

// Run blocks until ctx is done or the view fails.
func (v *RecentSearchesView) Run(ctx context.Context, stopFn context.CancelFunc) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	defer stopFn()

	log.Info("running")
	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
		return
	}
	log.Info("stopped")
}

func (v *RecentSearchesView) Get(key string) (any, error) {
	return v.gv.Get(key)
}

// A RecentSearchesStorage writes through the search events stream and
// reads from the group table view, so a write becomes visible once the
// processor has applied it.
type RecentSearchesStorage struct {
	opPrefix string
	emitter  searchEmitter
	view     tableGetter
}

func NewRecentSearchesStorage(
	emitter searchEmitter, view tableGetter,
) RecentSearchesStorage {
	return RecentSearchesStorage{
		opPrefix: "RecentSearchesStorage",
		emitter:  emitter,
		view:     view,
	}
}

func (s RecentSearchesStorage) AddRecentSearch(
	ctx context.Context, key, text string,
) error {
	const op = "AddRecentSearch"

	if err := s.emitter.EmitSearch(ctx, key, text); err != nil {
		return opErr(err, s.opPrefix, op)
	}
	return nil
}

func (s RecentSearchesStorage) ReadRecentSearches(
	ctx context.Context, key string,
) ([]string, error) {
	const op = "ReadRecentSearches"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, s.opPrefix, op)
	}

	v, err := s.view.Get(key)
	if err != nil {
		return nil, opErr(err, s.opPrefix, op)
	}
	if v == nil {
		return nil, nil
	}

	list, ok := v.(schema.RecentSearchesV1)
	if !ok {
		err := fmt.Errorf("%w: %T", ErrInvalidValueType, v)
		return nil, opErr(err, s.opPrefix, op)
	}
	return slices.Clone([]string(list)), nil
}

func (s RecentSearchesStorage) Close() {
	s.emitter.Close()
}
