package filters

import "strings"

// DefaultPage and DefaultPageSize are the canonical pagination defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// MinTextQueryLength is the default shortest trimmed free-text query routed
// to full-text retrieval. Shorter queries are too noisy to rank and are
// treated as absent.
const MinTextQueryLength = 2

// SortKey enumerates the supported result orderings.
type SortKey string

const (
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortNewest     SortKey = "newest"
	SortRatingDesc SortKey = "rating_desc"
	SortAlphaAsc   SortKey = "alpha_asc"
	SortAlphaDesc  SortKey = "alpha_desc"
	SortFeatured   SortKey = "featured"
)

// ParseSortKey validates a raw sort value against the closed enumeration.
// Unrecognized values are reported as invalid, not as errors; the caller
// falls back to the default ordering.
func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(raw) {
	case SortPriceAsc, SortPriceDesc, SortNewest, SortRatingDesc,
		SortAlphaAsc, SortAlphaDesc, SortFeatured:
		return SortKey(raw), true
	}
	return "", false
}

// DeliverySpeed enumerates the delivery lead-time buckets.
type DeliverySpeed string

const (
	DeliveryExpress  DeliverySpeed = "express"
	DeliveryStandard DeliverySpeed = "standard"
	DeliveryEconomy  DeliverySpeed = "economy"
)

// ParseDeliverySpeed validates a raw delivery speed value.
func ParseDeliverySpeed(raw string) (DeliverySpeed, bool) {
	switch DeliverySpeed(raw) {
	case DeliveryExpress, DeliveryStandard, DeliveryEconomy:
		return DeliverySpeed(raw), true
	}
	return "", false
}

// LeadTimeRange maps the delivery speed to its lead-time window in days.
// hasMax is false when the window is open-ended (economy: more than 7 days).
func (d DeliverySpeed) LeadTimeRange() (minDays, maxDays int, hasMax bool) {
	switch d {
	case DeliveryExpress:
		return 0, 3, true
	case DeliveryStandard:
		return 4, 7, true
	case DeliveryEconomy:
		return 8, 0, false
	}
	return 0, 0, false
}

// SearchFilters is the canonical query descriptor. It is the single internal
// representation of a search, independent of whether it arrived via the URL
// or was built programmatically. Construct fresh per search invocation.
type SearchFilters struct {
	Text           string
	CategoryIDs    []string
	SubcategoryIDs []string
	ArtisanIDs     []string
	PriceMin       *float64
	PriceMax       *float64
	MinRating      *float64
	DeliverySpeed  DeliverySpeed
	SortKey        SortKey
	Page           int
	PageSize       int
}

// New returns a SearchFilters with canonical pagination defaults.
func New() SearchFilters {
	return SearchFilters{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// TrimmedText returns the free-text query with surrounding whitespace
// removed.
func (f SearchFilters) TrimmedText() string {
	return strings.TrimSpace(f.Text)
}

// EffectivePage returns Page normalized to at least the default.
func (f SearchFilters) EffectivePage() int {
	if f.Page < 1 {
		return DefaultPage
	}
	return f.Page
}

// EffectivePageSize returns PageSize normalized to at least the default.
func (f SearchFilters) EffectivePageSize() int {
	if f.PageSize < 1 {
		return DefaultPageSize
	}
	return f.PageSize
}

// Offset returns the retrieval-level row offset for the current page.
func (f SearchFilters) Offset() int {
	return (f.EffectivePage() - 1) * f.EffectivePageSize()
}
