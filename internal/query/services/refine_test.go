package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
)

func newTestRefiner() *Refiner {
	return NewRefiner(language.English)
}

func fixtureItems() []entities.SearchResultItem {
	discount := 65.0
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []entities.SearchResultItem{
		{ID: "p1", Title: "Ceramic Vase", CategoryID: "home-decor", Price: 45, Rating: 4.2, LeadTimeDays: 2, CreatedAt: base.AddDate(0, 0, 4)},
		{ID: "p2", Title: "Wool Blanket", CategoryID: "home-decor", Price: 80, DiscountPrice: &discount, Rating: 4.8, LeadTimeDays: 5, CreatedAt: base.AddDate(0, 0, 1)},
		{ID: "p3", Title: "Silk Scarf", CategoryID: "women", Price: 25, Rating: 3.9, LeadTimeDays: 9, CreatedAt: base.AddDate(0, 0, 3)},
		{ID: "p4", Title: "oak Bowl", CategoryID: "home-decor", Price: 120, Rating: 4.5, LeadTimeDays: 4, CreatedAt: base.AddDate(0, 0, 2)},
		{ID: "p5", Title: "Linen Apron", CategoryID: "women", Price: 95, Rating: 0, LeadTimeDays: 3, CreatedAt: base},
	}
}

func TestRefineNoFiltersPreservesOrder(t *testing.T) {
	items := fixtureItems()

	out := newTestRefiner().Refine(items, filters.New())

	require.Len(t, out, len(items))
	for i := range items {
		assert.Equal(t, items[i].ID, out[i].ID)
	}
}

func TestRefineCategoryMembership(t *testing.T) {
	f := filters.New()
	f.CategoryIDs = []string{"women"}

	out := newTestRefiner().Refine(fixtureItems(), f)

	require.Len(t, out, 2)
	assert.Equal(t, "p3", out[0].ID)
	assert.Equal(t, "p5", out[1].ID)
}

func TestRefinePriceBoundsUseEffectivePrice(t *testing.T) {
	f := filters.New()
	min, max := 30.0, 70.0
	f.PriceMin = &min
	f.PriceMax = &max

	out := newTestRefiner().Refine(fixtureItems(), f)

	// p2 qualifies through its discount price of 65.
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, "p2", out[1].ID)
}

func TestRefineMinRating(t *testing.T) {
	f := filters.New()
	rating := 4.5
	f.MinRating = &rating

	out := newTestRefiner().Refine(fixtureItems(), f)

	require.Len(t, out, 2)
	assert.Equal(t, "p2", out[0].ID)
	assert.Equal(t, "p4", out[1].ID)
}

func TestRefineDeliverySpeedWindows(t *testing.T) {
	refiner := newTestRefiner()

	express := filters.New()
	express.DeliverySpeed = filters.DeliveryExpress
	out := refiner.Refine(fixtureItems(), express)
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, "p5", out[1].ID)

	economy := filters.New()
	economy.DeliverySpeed = filters.DeliveryEconomy
	out = refiner.Refine(fixtureItems(), economy)
	require.Len(t, out, 1)
	assert.Equal(t, "p3", out[0].ID)
}

func TestRefineConjunction(t *testing.T) {
	f := filters.New()
	f.CategoryIDs = []string{"home-decor"}
	min := 30.0
	f.PriceMin = &min
	rating := 4.5
	f.MinRating = &rating

	out := newTestRefiner().Refine(fixtureItems(), f)

	for _, item := range out {
		assert.Equal(t, "home-decor", item.CategoryID)
		assert.GreaterOrEqual(t, item.EffectivePrice(), min)
		assert.GreaterOrEqual(t, item.Rating, rating)
	}
	require.Len(t, out, 2)
}

func TestRefineSortPriceAsc(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortPriceAsc

	out := newTestRefiner().Refine(fixtureItems(), f)

	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].EffectivePrice(), out[i].EffectivePrice())
	}
}

func TestRefineSortNewest(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortNewest

	out := newTestRefiner().Refine(fixtureItems(), f)

	for i := 1; i < len(out); i++ {
		assert.False(t, out[i-1].CreatedAt.Before(out[i].CreatedAt))
	}
	assert.Equal(t, "p1", out[0].ID)
}

func TestRefineSortRatingDescMissingAsZero(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortRatingDesc

	out := newTestRefiner().Refine(fixtureItems(), f)

	assert.Equal(t, "p2", out[0].ID)
	assert.Equal(t, "p5", out[len(out)-1].ID)
}

func TestRefineSortAlphaCaseInsensitive(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortAlphaAsc

	out := newTestRefiner().Refine(fixtureItems(), f)

	// Collation orders "oak Bowl" before "Silk Scarf" despite the lowercase o.
	titles := make([]string, 0, len(out))
	for _, item := range out {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Ceramic Vase", "Linen Apron", "oak Bowl", "Silk Scarf", "Wool Blanket"}, titles)
}

func TestRefineSortFeaturedPreservesRetrievalOrder(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortFeatured

	items := fixtureItems()
	out := newTestRefiner().Refine(items, f)

	for i := range items {
		assert.Equal(t, items[i].ID, out[i].ID)
	}
}

func TestRefineStableOnTies(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortPriceAsc

	items := []entities.SearchResultItem{
		{ID: "a", Price: 50},
		{ID: "b", Price: 50},
		{ID: "c", Price: 50},
	}

	out := newTestRefiner().Refine(items, f)

	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestRefineIdempotent(t *testing.T) {
	refiner := newTestRefiner()
	f := filters.New()
	f.CategoryIDs = []string{"home-decor"}
	f.SortKey = filters.SortPriceDesc

	once := refiner.Refine(fixtureItems(), f)
	twice := refiner.Refine(once, f)

	assert.Equal(t, once, twice)
}

func TestRefineDoesNotMutateInput(t *testing.T) {
	f := filters.New()
	f.SortKey = filters.SortPriceAsc

	items := fixtureItems()
	_ = newTestRefiner().Refine(items, f)

	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "p5", items[4].ID)
}
