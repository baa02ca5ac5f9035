package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("unavailable")

type MockService struct {
	mock.Mock
}

func (m *MockService) QueryCatalog(
	ctx context.Context, q domain.CatalogQuery,
) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) Product(
	ctx context.Context, productID string,
) (domain.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

func (m *MockService) RelatedProducts(
	ctx context.Context, productID string,
) ([]domain.Product, error) {
	args := m.Called(ctx, productID)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) SuggestProducts(
	ctx context.Context, text string,
) ([]domain.Product, error) {
	args := m.Called(ctx, text)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockService) RememberSearch(
	ctx context.Context, clientID, text string,
) error {
	return m.Called(ctx, clientID, text).Error(0)
}

func (m *MockService) RecentSearches(
	ctx context.Context, clientID string,
) ([]string, error) {
	args := m.Called(ctx, clientID)
	list, _ := args.Get(0).([]string)
	return list, args.Error(1)
}

func (m *MockService) SendProducts(ctx context.Context, ps []domain.Product) error {
	return m.Called(ctx, ps).Error(0)
}

func newMux(s *MockService) http.Handler {
	mux := http.NewServeMux()
	httphandler.RegisterProducts(mux, s, s)
	httphandler.RegisterSearch(mux, s, s)
	httphandler.RegisterPublish(mux, s)
	return httphandler.RequestID(httphandler.AllowJSON(mux))
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func ptr[T any](v T) *T {
	return &v
}

func TestGetProducts(t *testing.T) {
	velvet := domain.Product{
		ID: "sf-001", Name: "Velvet Abaya", Category: "abayas", Price: 95,
		OriginalPrice: ptr(120.0), OnSale: true,
	}

	t.Run("FullQuery", func(t *testing.T) {
		s := new(MockService)
		want := domain.CatalogQuery{
			FreeText:    "velvet",
			CategoryIn:  []string{"abayas", "scarves", "bags"},
			PriceMin:    ptr(10.0),
			PriceMax:    ptr(200.5),
			OnlyNew:     true,
			OnlySale:    true,
			OnlyInStock: true,
			Sort:        domain.SortPriceAsc,
			Limit:       3,
		}
		s.On("QueryCatalog", mock.Anything, want).
			Return([]domain.Product{velvet}, nil).Once()

		target := "/v1/products?q=velvet&category=abayas,scarves&category=bags" +
			"&min_price=10&max_price=200.5&new=true&sale=1&in_stock=true" +
			"&sort=price-asc&limit=3"
		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "sf-001", got[0]["id"])
		assert.Equal(t, 120.0, got[0]["original_price"])
		assert.Equal(t, true, got[0]["on_sale"])
		assert.NotContains(t, got[0], "in_stock")
		s.AssertExpectations(t)
	})

	t.Run("EmptyResultIsArray", func(t *testing.T) {
		s := new(MockService)
		s.On("QueryCatalog", mock.Anything, domain.CatalogQuery{Sort: domain.SortFeatured}).
			Return([]domain.Product{}, nil).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("MalformedParams", func(t *testing.T) {
		for _, q := range []string{
			"min_price=cheap",
			"max_price=-1",
			"min_price=NaN",
			"new=maybe",
			"sale=yes",
			"in_stock=2",
			"sort=popular",
			"limit=-1",
			"limit=ten",
		} {
			t.Run(q, func(t *testing.T) {
				s := new(MockService)
				r := httptest.NewRequest(http.MethodGet, "/v1/products?"+q, nil)
				w := serve(newMux(s), r)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				s.AssertNotCalled(t, "QueryCatalog", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("ServiceError", func(t *testing.T) {
		s := new(MockService)
		s.On("QueryCatalog", mock.Anything, mock.Anything).
			Return(nil, errUnavailable).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s := new(MockService)
		s.On("Product", mock.Anything, "sf-001").
			Return(domain.Product{ID: "sf-001", Name: "Velvet Abaya"}, nil).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products/sf-001", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got httphandler.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Velvet Abaya", got.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := new(MockService)
		err := fmt.Errorf("Service.Product: %w", domain.ErrProductNotFound)
		s.On("Product", mock.Anything, "missing").Return(nil, err).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ServiceError", func(t *testing.T) {
		s := new(MockService)
		s.On("Product", mock.Anything, "sf-001").Return(nil, errUnavailable).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products/sf-001", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetRelated(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s := new(MockService)
		s.On("RelatedProducts", mock.Anything, "sf-001").
			Return([]domain.Product{{ID: "sf-004"}}, nil).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products/sf-001/related", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got []httphandler.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "sf-004", got[0].ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := new(MockService)
		s.On("RelatedProducts", mock.Anything, "missing").
			Return(nil, domain.ErrProductNotFound).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/products/missing/related", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostProducts(t *testing.T) {
	const body = `[{"id":"sf-010","name":"Linen Kaftan","category":"kaftans","price":70,"in_stock":false}]`

	t.Run("Accepted", func(t *testing.T) {
		s := new(MockService)
		want := []domain.Product{{
			ID: "sf-010", Name: "Linen Kaftan", Category: "kaftans",
			Price: 70, InStock: ptr(false),
		}}
		s.On("SendProducts", mock.Anything, want).Return(nil).Once()

		r := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusAccepted, w.Code)
		s.AssertExpectations(t)
	})

	t.Run("InvalidMediaType", func(t *testing.T) {
		s := new(MockService)
		r := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body))
		r.Header.Set("Content-Type", "text/plain")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		s := new(MockService)
		r := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"id":`))
		r.Header.Set("Content-Type", "application/json")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingID", func(t *testing.T) {
		s := new(MockService)
		r := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`[{"name":"x"}]`))
		r.Header.Set("Content-Type", "application/json")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.AssertNotCalled(t, "SendProducts", mock.Anything, mock.Anything)
	})

	t.Run("BrokerUnavailable", func(t *testing.T) {
		s := new(MockService)
		s.On("SendProducts", mock.Anything, mock.Anything).Return(errUnavailable).Once()

		r := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSearch(t *testing.T) {
	t.Run("Suggestions", func(t *testing.T) {
		s := new(MockService)
		s.On("SuggestProducts", mock.Anything, "abaya").
			Return([]domain.Product{{ID: "sf-001"}, {ID: "sf-003"}}, nil).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/search/suggestions?q=abaya", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got []httphandler.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("RememberRecent", func(t *testing.T) {
		s := new(MockService)
		s.On("RememberSearch", mock.Anything, "c1", "velvet").Return(nil).Once()

		r := httptest.NewRequest(http.MethodPost, "/v1/search/recent", strings.NewReader(`{"query":"velvet"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set(httphandler.HeaderClientID, "c1")
		w := serve(newMux(s), r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		s.AssertExpectations(t)
	})

	t.Run("ReadRecent", func(t *testing.T) {
		s := new(MockService)
		s.On("RecentSearches", mock.Anything, "").
			Return([]string{"velvet", "abaya"}, nil).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/search/recent", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `["velvet","abaya"]`, w.Body.String())
	})

	t.Run("RecentUnavailable", func(t *testing.T) {
		s := new(MockService)
		s.On("RecentSearches", mock.Anything, mock.Anything).
			Return(nil, errUnavailable).Once()

		w := serve(newMux(s), httptest.NewRequest(http.MethodGet, "/v1/search/recent", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	h := httphandler.RequestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Generated", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(w.Header().Get(httphandler.HeaderRequestID))
		assert.NoError(t, err)
	})

	t.Run("Propagated", func(t *testing.T) {
		id := uuid.NewString()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httphandler.HeaderRequestID, id)
		w := serve(h, r)
		assert.Equal(t, id, w.Header().Get(httphandler.HeaderRequestID))
	})

	t.Run("ReplacedWhenInvalid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httphandler.HeaderRequestID, "not-a-uuid")
		w := serve(h, r)
		assert.NotEqual(t, "not-a-uuid", w.Header().Get(httphandler.HeaderRequestID))
	})
}
