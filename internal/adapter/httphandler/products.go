package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET v1/products?q=&category=&min_price=&max_price=&new=&sale=&in_stock=&sort=&limit= (200 OK, 400 Bad request)
// GET v1/products/{id} (200 OK, 404 Not found)
// GET v1/products/{id}/related (200 OK, 404 Not found)
// POST v1/products JSON array (202 Accepted, 400 Bad request)

type ProductsHandler struct {
	querier port.CatalogQuerier
	reader  port.ProductReader
}

func RegisterProducts(
	mux *http.ServeMux, querier port.CatalogQuerier, reader port.ProductReader,
) {
	h := ProductsHandler{querier, reader}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/products/{id}/related", h.GetRelated)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	q, err := parseCatalogQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Debug("invalid query", "err", err)
		return
	}

	ps, err := h.querier.QueryCatalog(r.Context(), q)
	if err != nil {
		http.Error(w, "failed to query catalog", http.StatusServiceUnavailable)
		log.Error("failed to query catalog", "err", err)
		return
	}

	writeJSON(w, log, http.StatusOK, productsFromDomain(ps))
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.reader.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		writeReadError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, productFromDomain(p))
}

func (h ProductsHandler) GetRelated(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetRelated"
	log := slog.With("op", op)

	ps, err := h.reader.RelatedProducts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeReadError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, productsFromDomain(ps))
}

type PublishHandler struct {
	pSender port.ProductsSender
}

func RegisterPublish(mux *http.ServeMux, pSender port.ProductsSender) {
	h := PublishHandler{pSender}
	mux.HandleFunc("POST /v1/products", h.PostProducts)
}

func (h PublishHandler) PostProducts(w http.ResponseWriter, r *http.Request) {
	const op = "PublishHandler.PostProducts"
	log := slog.With("op", op)

	var ps []Product
	err := json.NewDecoder(r.Body).Decode(&ps)
	if err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	vs := make([]domain.Product, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			http.Error(w, "product id is required", http.StatusBadRequest)
			log.Warn("product without id", "index", i)
			return
		}
		vs[i] = p.toDomain()
	}

	err = h.pSender.SendProducts(r.Context(), vs)
	if err != nil {
		http.Error(
			w, "failed to accept products", http.StatusServiceUnavailable,
		)
		log.Error("failed to send products", "err", err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	if _, err = w.Write([]byte("Accepted")); err != nil {
		log.Error("failed to write response body", "err", err)
		return
	}

	log.Info("accepted", "nProducts", len(ps))
}

func writeReadError(w http.ResponseWriter, log *slog.Logger, err error) {
	if errors.Is(err, domain.ErrProductNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	http.Error(w, "failed to read catalog", http.StatusServiceUnavailable)
	log.Error("failed to read catalog", "err", err)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
