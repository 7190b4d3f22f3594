package database

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/filters"
)

func floatPtr(v float64) *float64 { return &v }

func buildSQL(t *testing.T, f filters.SearchFilters) string {
	t.Helper()
	db := goqu.New("postgres", nil)
	query, _, err := buildStructuredQuery(db, f).ToSQL()
	require.NoError(t, err)
	return query
}

func TestStructuredQueryDefaults(t *testing.T) {
	query := buildSQL(t, filters.New())

	assert.Contains(t, query, `"products" AS "p"`)
	assert.Contains(t, query, `"p"."is_active" IS TRUE`)
	assert.Contains(t, query, `"p"."featured" DESC`)
	assert.Contains(t, query, "LIMIT")
	assert.NotContains(t, query, "category_id\" IN")
}

func TestStructuredQueryMembershipPredicates(t *testing.T) {
	f := filters.New()
	f.CategoryIDs = []string{"home-decor", "textile"}
	f.ArtisanIDs = []string{"a1"}

	query := buildSQL(t, f)

	assert.Contains(t, query, `"p"."category_id" IN`)
	assert.Contains(t, query, `"p"."artisan_id" IN`)
	assert.NotContains(t, query, `"p"."subcategory_id" IN`)
}

func TestStructuredQueryPriceBoundsUseEffectivePrice(t *testing.T) {
	f := filters.New()
	f.PriceMin = floatPtr(30)
	f.PriceMax = floatPtr(100)

	query := buildSQL(t, f)

	assert.Contains(t, query, "COALESCE(p.discount_price, p.price) >=")
	assert.Contains(t, query, "COALESCE(p.discount_price, p.price) <=")
}

func TestStructuredQueryDeliverySpeedWindows(t *testing.T) {
	f := filters.New()
	f.DeliverySpeed = filters.DeliveryStandard
	query := buildSQL(t, f)
	assert.Contains(t, query, `"p"."lead_time_days" >=`)
	assert.Contains(t, query, `"p"."lead_time_days" <=`)

	f.DeliverySpeed = filters.DeliveryEconomy
	query = buildSQL(t, f)
	assert.Contains(t, query, `"p"."lead_time_days" >=`)
	assert.NotContains(t, query, `"p"."lead_time_days" <=`)
}

func TestStructuredQuerySortPushdown(t *testing.T) {
	f := filters.New()

	f.SortKey = filters.SortPriceAsc
	assert.Contains(t, buildSQL(t, f), "COALESCE(p.discount_price, p.price) ASC")

	f.SortKey = filters.SortNewest
	assert.Contains(t, buildSQL(t, f), `"p"."created_at" DESC`)

	f.SortKey = filters.SortRatingDesc
	assert.Contains(t, buildSQL(t, f), `"p"."rating" DESC`)

	// Alphabetical ordering is locale-aware and applied in-process, so the
	// database keeps the default ordering.
	f.SortKey = filters.SortAlphaAsc
	assert.Contains(t, buildSQL(t, f), `"p"."featured" DESC`)
}

func TestStructuredQueryPagination(t *testing.T) {
	f := filters.New()
	f.Page = 3
	f.PageSize = 10

	query := buildSQL(t, f)

	assert.Contains(t, query, "LIMIT 10")
	assert.Contains(t, query, "OFFSET 20")
}
