package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

type stubSearcher struct {
	envelope *entities.SearchEnvelope
	err      error
	received []filters.SearchFilters
}

func (s *stubSearcher) Search(_ context.Context, f filters.SearchFilters) (*entities.SearchEnvelope, error) {
	s.received = append(s.received, f)
	if s.err != nil {
		return nil, s.err
	}
	return s.envelope, nil
}

func TestSearchProductsReturnsEnvelope(t *testing.T) {
	searcher := &stubSearcher{
		envelope: &entities.SearchEnvelope{
			Items: []entities.SearchResultItem{
				{ID: "p1", Title: "Ceramic Vase", Price: 45},
				{ID: "p2", Title: "Wool Blanket", Price: 80},
			},
			Total: 2,
		},
	}
	handler := NewSearchHandler(searcher)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?q=ceramic&category=home-decor&minPrice=30&sort=price_asc", nil)
	rec := httptest.NewRecorder()

	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope entities.SearchEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Len(t, envelope.Items, 2)
	assert.Equal(t, 2, envelope.Total)
	assert.Equal(t, "Ceramic Vase", envelope.Items[0].Title)

	require.Len(t, searcher.received, 1)
	got := searcher.received[0]
	assert.Equal(t, "ceramic", got.Text)
	assert.Equal(t, []string{"home-decor"}, got.CategoryIDs)
	require.NotNil(t, got.PriceMin)
	assert.Equal(t, 30.0, *got.PriceMin)
	assert.Equal(t, filters.SortPriceAsc, got.SortKey)
}

func TestSearchProductsEmptyResultIsStillOK(t *testing.T) {
	searcher := &stubSearcher{
		envelope: &entities.SearchEnvelope{Items: []entities.SearchResultItem{}, Total: 0},
	}
	handler := NewSearchHandler(searcher)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?q=nonexistent", nil)
	rec := httptest.NewRecorder()

	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope entities.SearchEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Empty(t, envelope.Items)
	assert.Zero(t, envelope.Total)
}

func TestSearchProductsFailureReturnsErrorBody(t *testing.T) {
	searcher := &stubSearcher{
		err: apperrors.NewExternalError("search engine unavailable", errors.New("connection refused")),
	}
	handler := NewSearchHandler(searcher)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?q=ceramic", nil)
	rec := httptest.NewRecorder()

	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "search engine unavailable", body["error"])
}

func TestSearchProductsInternalErrorIsOpaque(t *testing.T) {
	searcher := &stubSearcher{
		err: apperrors.NewInternalError("failed to map product p1", errors.New("bad timestamp")),
	}
	handler := NewSearchHandler(searcher)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search", nil)
	rec := httptest.NewRecorder()

	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "bad timestamp")
}

func TestSearchProductsMalformedParamsDegradeGracefully(t *testing.T) {
	searcher := &stubSearcher{
		envelope: &entities.SearchEnvelope{Items: []entities.SearchResultItem{}, Total: 0},
	}
	handler := NewSearchHandler(searcher)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?minPrice=cheap&sort=bogus&page=-2", nil)
	rec := httptest.NewRecorder()

	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, searcher.received, 1)
	got := searcher.received[0]
	assert.Nil(t, got.PriceMin)
	assert.Empty(t, got.SortKey)
	assert.Equal(t, filters.DefaultPage, got.EffectivePage())
}
