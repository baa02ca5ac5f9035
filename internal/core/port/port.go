package port

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports.

type CatalogQuerier interface {
	QueryCatalog(context.Context, domain.CatalogQuery) ([]domain.Product, error)
}

type ProductReader interface {
	Product(ctx context.Context, productID string) (domain.Product, error)
	RelatedProducts(ctx context.Context, productID string) ([]domain.Product, error)
}

type SearchSuggester interface {
	SuggestProducts(ctx context.Context, text string) ([]domain.Product, error)
}

type RecentSearcher interface {
	RememberSearch(ctx context.Context, clientID, text string) error
	RecentSearches(ctx context.Context, clientID string) ([]string, error)
}

type ProductsSender interface {
	SendProducts(context.Context, []domain.Product) error
}

type ProductsSaver interface {
	SaveProducts(context.Context, []domain.Product) error
}

// Outbound ports.

type ProductsSource interface {
	ReadProducts(context.Context) ([]domain.Product, error)
}

type ProductsStorage interface {
	StoreProducts(context.Context, []domain.Product) error
}

type ProductsProducer interface {
	ProduceProducts(context.Context, []domain.Product) error
}

type RecentSearchesStorage interface {
	AddRecentSearch(ctx context.Context, key, text string) error
	ReadRecentSearches(ctx context.Context, key string) ([]string, error)
}

type RecentSearchesProcessor interface {
	runnerContextWg
	closer
}
