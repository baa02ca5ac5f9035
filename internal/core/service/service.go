package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var (
	_ port.CatalogQuerier  = (*Service)(nil)
	_ port.ProductReader   = (*Service)(nil)
	_ port.SearchSuggester = (*Service)(nil)
	_ port.RecentSearcher  = (*Service)(nil)
	_ port.ProductsSender  = (*Service)(nil)
	_ port.ProductsSaver   = (*Service)(nil)
)

var (
	ErrNoSource      = errors.New("no products source")
	ErrNotConfigured = errors.New("component is not configured")
)

const (
	DefaultSuggestionsLimit = 6
	DefaultRelatedLimit     = 4
	DefaultSourceAttempts   = 3
	DefaultSourceBackoff    = 50 * time.Millisecond
)

type Config struct {
	SuggestionsLimit int
	RelatedLimit     int
	SourceAttempts   int
	SourceBackoff    time.Duration
}

func (c *Config) normalize() {
	if c.SuggestionsLimit <= 0 {
		c.SuggestionsLimit = DefaultSuggestionsLimit
	}
	if c.RelatedLimit <= 0 {
		c.RelatedLimit = DefaultRelatedLimit
	}
	if c.SourceAttempts <= 0 {
		c.SourceAttempts = DefaultSourceAttempts
	}
	if c.SourceBackoff <= 0 {
		c.SourceBackoff = DefaultSourceBackoff
	}
}

type Opt func(*Service)

func SourceOpt(s port.ProductsSource) Opt {
	return func(svc *Service) { svc.source = s }
}

// FallbackOpt sets the source used when the primary one fails or is empty.
func FallbackOpt(s port.ProductsSource) Opt {
	return func(svc *Service) { svc.fallback = s }
}

func StorageOpt(s port.ProductsStorage) Opt {
	return func(svc *Service) { svc.productsStorage = s }
}

func ProducerOpt(p port.ProductsProducer) Opt {
	return func(svc *Service) { svc.productsProducer = p }
}

func RecentSearchesOpt(
	s port.RecentSearchesStorage, proc port.RecentSearchesProcessor,
) Opt {
	return func(svc *Service) {
		svc.recentStorage = s
		svc.recentProc = proc
	}
}

type Service struct {
	engine           catalog.Engine
	cfg              Config
	source           port.ProductsSource
	fallback         port.ProductsSource
	productsStorage  port.ProductsStorage
	productsProducer port.ProductsProducer
	recentStorage    port.RecentSearchesStorage
	recentProc       port.RecentSearchesProcessor
}

func New(engine catalog.Engine, cfg Config, opts ...Opt) Service {
	cfg.normalize()
	s := Service{engine: engine, cfg: cfg}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Run runs the services components in separate goroutines.
//
// Blocks current goroutine while components is preparing to ready state.
func (s Service) Run(ctx context.Context, stopFn context.CancelFunc) {
	if s.recentProc == nil {
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go s.recentProc.Run(ctx, stopFn, &wg)
	wg.Wait()
}

func (s Service) Close() {
	if s.recentProc != nil {
		s.recentProc.Close()
	}
}

func (s Service) QueryCatalog(
	ctx context.Context, q domain.CatalogQuery,
) ([]domain.Product, error) {
	const op = "Service.QueryCatalog"

	ps, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.engine.Query(ps, q), nil
}

// SuggestProducts returns the first matches for the search box.
// Blank text yields no suggestions.
func (s Service) SuggestProducts(
	ctx context.Context, text string,
) ([]domain.Product, error) {
	const op = "Service.SuggestProducts"

	if strings.TrimSpace(text) == "" {
		return []domain.Product{}, nil
	}

	ps, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := domain.CatalogQuery{
		FreeText: text,
		Limit:    s.cfg.SuggestionsLimit,
	}
	return s.engine.Query(ps, q), nil
}

func (s Service) Product(
	ctx context.Context, productID string,
) (domain.Product, error) {
	const op = "Service.Product"

	ps, err := s.snapshot(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := findProduct(ps, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// RelatedProducts returns other products of the same category.
func (s Service) RelatedProducts(
	ctx context.Context, productID string,
) ([]domain.Product, error) {
	const op = "Service.RelatedProducts"

	ps, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := findProduct(ps, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := domain.CatalogQuery{
		CategoryIn: []string{p.Category},
		ExcludeIDs: []string{p.ID},
		Limit:      s.cfg.RelatedLimit,
	}
	return s.engine.Query(ps, q), nil
}

func (s Service) RememberSearch(
	ctx context.Context, clientID, text string,
) error {
	const op = "Service.RememberSearch"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if s.recentStorage == nil {
		return fmt.Errorf("%s: recent searches: %w", op, ErrNotConfigured)
	}

	key := domain.RecentSearchesKey(clientID)
	if err := s.recentStorage.AddRecentSearch(ctx, key, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) RecentSearches(
	ctx context.Context, clientID string,
) ([]string, error) {
	const op = "Service.RecentSearches"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.recentStorage == nil {
		return nil, fmt.Errorf("%s: recent searches: %w", op, ErrNotConfigured)
	}

	key := domain.RecentSearchesKey(clientID)
	list, err := s.recentStorage.ReadRecentSearches(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (s Service) SendProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SendProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.productsProducer == nil {
		return fmt.Errorf("%s: producer: %w", op, ErrNotConfigured)
	}

	err := s.productsProducer.ProduceProducts(ctx, ps)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) SaveProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SaveProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.productsStorage == nil {
		return fmt.Errorf("%s: storage: %w", op, ErrNotConfigured)
	}

	err := s.productsStorage.StoreProducts(ctx, ps)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// snapshot reads the catalog from the primary source and falls back to the
// bundled catalog when the primary one keeps failing or is empty.
func (s Service) snapshot(ctx context.Context) ([]domain.Product, error) {
	const op = "Service.snapshot"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.source == nil {
		return s.readFallback(ctx, op)
	}

	retryCfg := retry.RetryConfig{
		MaxAttempts: s.cfg.SourceAttempts,
		Backoff:     retry.ExponentialBackoff(s.cfg.SourceBackoff),
		ShouldRetry: func(err error) bool {
			return !errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		},
	}

	ps, err := retry.DoWithResult(ctx, retryCfg, func() ([]domain.Product, error) {
		return s.source.ReadProducts(ctx)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		if s.fallback == nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("products source is unavailable, using fallback", "err", err)
		return s.readFallback(ctx, op)
	}

	if len(ps) == 0 && s.fallback != nil {
		log.Info("products source is empty, using fallback")
		return s.readFallback(ctx, op)
	}
	return ps, nil
}

func (s Service) readFallback(
	ctx context.Context, op string,
) ([]domain.Product, error) {
	if s.fallback == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSource)
	}
	ps, err := s.fallback.ReadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: fallback: %w", op, err)
	}
	return ps, nil
}

func findProduct(ps []domain.Product, productID string) (domain.Product, error) {
	for _, p := range ps {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productID)
}
