package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/language"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	"github.com/artisanmarket/backend/internal/infrastructure/observability"
)

// Retrieval strategy names used in metrics and spans.
const (
	strategyStructured = "structured"
	strategyFullText   = "full_text"
)

// Searcher is the search entry point contract. The debounced wrapper
// implements the same contract.
type Searcher interface {
	Search(ctx context.Context, f filters.SearchFilters) (*entities.SearchEnvelope, error)
}

// ProductSearchService orchestrates a search: pick a retrieval strategy, map
// the raw records, then run the refinement pass over the full filter set.
// Re-refining predicates a strategy already pushed down is intentional; it
// keeps semantics identical across strategies. A retrieval failure propagates
// unchanged, with no retry and no fallback to the other strategy, since
// falling back would silently change result semantics.
type ProductSearchService struct {
	structured     repositories.RetrievalStrategy
	fullText       repositories.RetrievalStrategy
	refiner        *Refiner
	hydrator       *ArtisanHydrator
	metrics        *observability.Metrics
	minQueryLength int
}

var _ Searcher = (*ProductSearchService)(nil)

// NewProductSearchService creates a new product search service
func NewProductSearchService(
	structured repositories.RetrievalStrategy,
	fullText repositories.RetrievalStrategy,
	metrics *observability.Metrics,
) *ProductSearchService {
	return &ProductSearchService{
		structured:     structured,
		fullText:       fullText,
		refiner:        NewRefiner(language.English),
		metrics:        metrics,
		minQueryLength: filters.MinTextQueryLength,
	}
}

// WithMinQueryLength overrides the shortest trimmed text query routed to the
// full-text strategy. Non-positive values keep the default.
func (s *ProductSearchService) WithMinQueryLength(n int) *ProductSearchService {
	if n > 0 {
		s.minQueryLength = n
	}
	return s
}

// WithArtisanHydrator enables batched artisan summary hydration on search
// results.
func (s *ProductSearchService) WithArtisanHydrator(h *ArtisanHydrator) *ProductSearchService {
	s.hydrator = h
	return s
}

// Search executes a product search and returns the refined envelope. Total
// always equals len(Items) because it is computed after refinement.
func (s *ProductSearchService) Search(ctx context.Context, f filters.SearchFilters) (*entities.SearchEnvelope, error) {
	ctx, span := observability.StartSpan(ctx, "ProductSearchService.Search")
	defer span.End()

	strategy, strategyName := s.selectStrategy(f)
	observability.SetSpanAttributes(span,
		attribute.String("search.strategy", strategyName),
		attribute.Int("search.page", f.EffectivePage()),
	)

	start := time.Now()
	records, err := strategy.Retrieve(ctx, f)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	items, err := MapRecords(records)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	items = s.refiner.Refine(items, f)

	if s.hydrator != nil {
		s.hydrator.Hydrate(ctx, items)
	}

	if s.metrics != nil {
		observability.RecordSearchMetric(ctx, s.metrics, strategyName, len(items), time.Since(start))
	}

	return &entities.SearchEnvelope{
		Items: items,
		Total: len(items),
	}, nil
}

// selectStrategy routes to full-text when a qualifying free-text query is
// present, else to the structured path.
func (s *ProductSearchService) selectStrategy(f filters.SearchFilters) (repositories.RetrievalStrategy, string) {
	if len([]rune(f.TrimmedText())) >= s.minQueryLength {
		return s.fullText, strategyFullText
	}
	return s.structured, strategyStructured
}
