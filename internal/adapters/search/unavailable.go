package search

import (
	"context"

	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// UnavailableAdapter stands in for the full-text retrieval strategy when no
// search engine is configured. Text searches fail fast with an external
// error instead of degrading into a match-all structured scan that would
// ignore the query text.
type UnavailableAdapter struct{}

var _ repositories.RetrievalStrategy = (*UnavailableAdapter)(nil)

// NewUnavailableAdapter creates the stand-in full-text strategy
func NewUnavailableAdapter() *UnavailableAdapter {
	return &UnavailableAdapter{}
}

// Retrieve always fails with an external error.
func (a *UnavailableAdapter) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	return nil, apperrors.NewExternalError("full-text search is not available", nil)
}
