package services

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
)

// Refiner applies the client-side refinement pass: a pure, deterministic
// filter and sort over already-mapped items. It re-applies every predicate
// even when the retrieval strategy already pushed it down, so both strategies
// end up with identical semantics. Idempotent and stable over ties.
type Refiner struct {
	collator *collate.Collator
}

// NewRefiner creates a refiner with the storefront's collation locale.
func NewRefiner(tag language.Tag) *Refiner {
	return &Refiner{collator: collate.New(tag)}
}

// Refine filters then sorts the items according to f. The input slice is not
// mutated.
func (r *Refiner) Refine(items []entities.SearchResultItem, f filters.SearchFilters) []entities.SearchResultItem {
	out := make([]entities.SearchResultItem, 0, len(items))
	for _, item := range items {
		if matchesFilters(item, f) {
			out = append(out, item)
		}
	}
	r.sortItems(out, f.SortKey)
	return out
}

// matchesFilters is the conjunction of all active predicates. An empty id
// slice deactivates its membership predicate; it never means "match nothing".
func matchesFilters(item entities.SearchResultItem, f filters.SearchFilters) bool {
	if len(f.CategoryIDs) > 0 && !contains(f.CategoryIDs, item.CategoryID) {
		return false
	}
	if len(f.SubcategoryIDs) > 0 && !contains(f.SubcategoryIDs, item.SubcategoryID) {
		return false
	}
	if len(f.ArtisanIDs) > 0 && !contains(f.ArtisanIDs, item.ArtisanID) {
		return false
	}

	price := item.EffectivePrice()
	if f.PriceMin != nil && price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && price > *f.PriceMax {
		return false
	}

	if f.MinRating != nil && item.Rating < *f.MinRating {
		return false
	}

	if f.DeliverySpeed != "" {
		minDays, maxDays, hasMax := f.DeliverySpeed.LeadTimeRange()
		if item.LeadTimeDays < minDays {
			return false
		}
		if hasMax && item.LeadTimeDays > maxDays {
			return false
		}
	}

	return true
}

// sortItems orders in place per the sort key. SortFeatured and the absent key
// preserve retrieval order. Only stable sorts are used so equal keys keep
// their relative order.
func (r *Refiner) sortItems(items []entities.SearchResultItem, key filters.SortKey) {
	switch key {
	case filters.SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice() < items[j].EffectivePrice()
		})
	case filters.SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice() > items[j].EffectivePrice()
		})
	case filters.SortNewest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	case filters.SortRatingDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Rating > items[j].Rating
		})
	case filters.SortAlphaAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return r.collator.CompareString(items[i].Title, items[j].Title) < 0
		})
	case filters.SortAlphaDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return r.collator.CompareString(items[i].Title, items[j].Title) > 0
		})
	}
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
