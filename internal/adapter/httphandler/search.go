package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

// GET v1/search/suggestions?q= (200 OK)
// GET v1/search/recent Headers X-Client-ID is opt (200 OK)
// POST v1/search/recent JSON {"query": string} Headers X-Client-ID is opt (204 No content, 400 Bad request)

const HeaderClientID = "X-Client-ID"

type SearchHandler struct {
	suggester port.SearchSuggester
	recent    port.RecentSearcher
}

func RegisterSearch(
	mux *http.ServeMux,
	suggester port.SearchSuggester,
	recent port.RecentSearcher,
) {
	h := SearchHandler{suggester, recent}
	mux.HandleFunc("GET /v1/search/suggestions", h.GetSuggestions)
	mux.HandleFunc("GET /v1/search/recent", h.GetRecent)
	mux.HandleFunc("POST /v1/search/recent", h.PostRecent)
}

func (h SearchHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetSuggestions"
	log := slog.With("op", op)

	ps, err := h.suggester.SuggestProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, "failed to suggest products", http.StatusServiceUnavailable)
		log.Error("failed to suggest products", "err", err)
		return
	}

	writeJSON(w, log, http.StatusOK, productsFromDomain(ps))
}

func (h SearchHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetRecent"
	log := slog.With("op", op)

	list, err := h.recent.RecentSearches(r.Context(), r.Header.Get(HeaderClientID))
	if err != nil {
		http.Error(w, "failed to read recent searches", http.StatusServiceUnavailable)
		log.Error("failed to read recent searches", "err", err)
		return
	}

	writeJSON(w, log, http.StatusOK, list)
}

func (h SearchHandler) PostRecent(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.PostRecent"
	log := slog.With("op", op)

	var req RecentSearchRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	err = h.recent.RememberSearch(
		r.Context(), r.Header.Get(HeaderClientID), req.Query,
	)
	if err != nil {
		http.Error(w, "failed to save recent search", http.StatusServiceUnavailable)
		log.Error("failed to save recent search", "err", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
