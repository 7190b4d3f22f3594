package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/repositories"
)

// stubStrategy records whether it was invoked and returns canned records.
type stubStrategy struct {
	records []repositories.RawProductRecord
	err     error
	calls   int
}

func (s *stubStrategy) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func rawRecord(id, title, category string, price float64) repositories.RawProductRecord {
	return repositories.RawProductRecord{
		ID:         id,
		Title:      title,
		Price:      price,
		CategoryID: sql.NullString{String: category, Valid: category != ""},
		CreatedAt:  "2025-06-01T12:00:00Z",
	}
}

func TestSearchRoutesToStructuredWithoutText(t *testing.T) {
	structured := &stubStrategy{records: []repositories.RawProductRecord{rawRecord("p1", "Vase", "home-decor", 45)}}
	fullText := &stubStrategy{}
	service := NewProductSearchService(structured, fullText, nil)

	_, err := service.Search(context.Background(), filters.New())

	require.NoError(t, err)
	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 0, fullText.calls)
}

func TestSearchStrategySelectionBoundary(t *testing.T) {
	structured := &stubStrategy{}
	fullText := &stubStrategy{}
	service := NewProductSearchService(structured, fullText, nil)

	// A single character is too short to rank and stays structured.
	f := filters.New()
	f.Text = "a"
	_, err := service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 0, fullText.calls)

	f.Text = "ab"
	_, err = service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 1, fullText.calls)

	// Surrounding whitespace does not qualify a short query.
	f.Text = "  a  "
	_, err = service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, structured.calls)
}

func TestSearchMinQueryLengthConfigurable(t *testing.T) {
	structured := &stubStrategy{}
	fullText := &stubStrategy{}
	service := NewProductSearchService(structured, fullText, nil).WithMinQueryLength(5)

	f := filters.New()
	f.Text = "vase"
	_, err := service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 0, fullText.calls)

	f.Text = "vases"
	_, err = service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, fullText.calls)

	// Non-positive overrides keep the default threshold.
	service = NewProductSearchService(structured, fullText, nil).WithMinQueryLength(0)
	f.Text = "ab"
	_, err = service.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2, fullText.calls)
}

func TestSearchTotalEqualsItemCount(t *testing.T) {
	structured := &stubStrategy{records: []repositories.RawProductRecord{
		rawRecord("p1", "Vase", "home-decor", 45),
		rawRecord("p2", "Scarf", "women", 25),
		rawRecord("p3", "Bowl", "home-decor", 120),
	}}
	service := NewProductSearchService(structured, &stubStrategy{}, nil)

	f := filters.New()
	f.CategoryIDs = []string{"home-decor"}

	envelope, err := service.Search(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, len(envelope.Items), envelope.Total)
	assert.Equal(t, 2, envelope.Total)
}

func TestSearchRefinesAfterFullText(t *testing.T) {
	// The full-text path leaves price filtering partly to refinement; records
	// outside the bounds must not survive.
	fullText := &stubStrategy{records: []repositories.RawProductRecord{
		rawRecord("p1", "Ceramic Vase", "home-decor", 45),
		rawRecord("p2", "Vase Stand", "home-decor", 150),
	}}
	service := NewProductSearchService(&stubStrategy{}, fullText, nil)

	f := filters.New()
	f.Text = "vase"
	max := 100.0
	f.PriceMax = &max

	envelope, err := service.Search(context.Background(), f)

	require.NoError(t, err)
	require.Equal(t, 1, envelope.Total)
	assert.Equal(t, "p1", envelope.Items[0].ID)
}

func TestSearchPropagatesRetrievalFailureWithoutFallback(t *testing.T) {
	structured := &stubStrategy{}
	fullText := &stubStrategy{err: assert.AnError}
	service := NewProductSearchService(structured, fullText, nil)

	f := filters.New()
	f.Text = "vase"

	envelope, err := service.Search(context.Background(), f)

	assert.Error(t, err)
	assert.Nil(t, envelope)
	// A full-text failure is never masked by retrying the structured path.
	assert.Equal(t, 0, structured.calls)
}

func TestSearchPropagatesMappingFailure(t *testing.T) {
	structured := &stubStrategy{records: []repositories.RawProductRecord{
		{ID: "p1", Title: "Vase", Price: 45, CreatedAt: "garbage"},
	}}
	service := NewProductSearchService(structured, &stubStrategy{}, nil)

	envelope, err := service.Search(context.Background(), filters.New())

	assert.Error(t, err)
	assert.Nil(t, envelope)
}

func TestSearchConcreteScenarioPriceWindow(t *testing.T) {
	structured := &stubStrategy{records: []repositories.RawProductRecord{
		rawRecord("p1", "Silk Scarf", "women", 25),
		rawRecord("p2", "Ceramic Vase", "home-decor", 45),
		rawRecord("p3", "Wool Blanket", "home-decor", 80),
		rawRecord("p4", "Oak Bowl", "home-decor", 120),
		rawRecord("p5", "Linen Apron", "women", 95),
	}}
	service := NewProductSearchService(structured, &stubStrategy{}, nil)

	f := filters.New()
	f.CategoryIDs = []string{"home-decor"}
	min, max := 30.0, 100.0
	f.PriceMin = &min
	f.PriceMax = &max
	f.SortKey = filters.SortPriceAsc

	envelope, err := service.Search(context.Background(), f)

	require.NoError(t, err)
	require.Equal(t, 2, envelope.Total)
	assert.Equal(t, 45.0, envelope.Items[0].EffectivePrice())
	assert.Equal(t, 80.0, envelope.Items[1].EffectivePrice())
}

func TestSearchConcreteScenarioTextOnly(t *testing.T) {
	// The engine already narrowed candidates to the matching title.
	fullText := &stubStrategy{records: []repositories.RawProductRecord{
		rawRecord("p1", "Ceramic Vase", "home-decor", 45),
	}}
	service := NewProductSearchService(&stubStrategy{}, fullText, nil)

	f := filters.New()
	f.Text = "vase"

	envelope, err := service.Search(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Total)
	assert.Equal(t, "Ceramic Vase", envelope.Items[0].Title)
}
