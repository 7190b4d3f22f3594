package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/query/services"
)

// SearchHandler handles product search HTTP requests
type SearchHandler struct {
	searcher services.Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher services.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchProducts handles GET /api/products/search. The query string is parsed
// permissively: malformed numbers and unknown keys degrade to absent filters,
// never to a 4xx. A retrieval failure is a 5xx with an error body, so the
// storefront can distinguish "search failed" from "no matches".
func (h *SearchHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	f := filters.ParseQuery(r.URL.Query())

	envelope, err := h.searcher.Search(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Str("query", r.URL.RawQuery).Msg("product search failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, envelope)
}
