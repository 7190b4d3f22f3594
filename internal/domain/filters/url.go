package filters

import (
	"net/url"
	"strconv"
)

// URL parameter names. Multi-valued filters use the repeated-key convention
// (category=a&category=b). This is the one wire format with compatibility
// requirements: bookmarked and shared storefront links depend on it.
const (
	paramText        = "q"
	paramCategory    = "category"
	paramSubcategory = "subcategory"
	paramArtisan     = "artisan"
	paramMinPrice    = "minPrice"
	paramMaxPrice    = "maxPrice"
	paramRating      = "rating"
	paramDelivery    = "delivery"
	paramSort        = "sort"
	paramPage        = "page"
	paramPageSize    = "pageSize"
)

// ParseQuery builds canonical SearchFilters from URL query parameters.
// Parsing is deliberately permissive: malformed numbers, unrecognized sort
// keys and unknown delivery speeds degrade to "no filter" rather than
// failing, so an outdated shared link still loads.
func ParseQuery(params url.Values) SearchFilters {
	f := New()

	f.Text = params.Get(paramText)
	f.CategoryIDs = collectValues(params[paramCategory])
	f.SubcategoryIDs = collectValues(params[paramSubcategory])
	f.ArtisanIDs = collectValues(params[paramArtisan])
	f.PriceMin = parseFloat(params.Get(paramMinPrice))
	f.PriceMax = parseFloat(params.Get(paramMaxPrice))
	f.MinRating = parseFloat(params.Get(paramRating))

	if speed, ok := ParseDeliverySpeed(params.Get(paramDelivery)); ok {
		f.DeliverySpeed = speed
	}
	if key, ok := ParseSortKey(params.Get(paramSort)); ok {
		f.SortKey = key
	}
	if page, err := strconv.Atoi(params.Get(paramPage)); err == nil && page >= 1 {
		f.Page = page
	}
	if size, err := strconv.Atoi(params.Get(paramPageSize)); err == nil && size >= 1 {
		f.PageSize = size
	}

	return f
}

// EncodeQuery serializes the filters back into URL query parameters. It is a
// right inverse of ParseQuery: every non-default field survives a round
// trip. Defaults (page 1, page size 20) are omitted to keep URLs minimal.
func (f SearchFilters) EncodeQuery() url.Values {
	params := url.Values{}

	if f.Text != "" {
		params.Set(paramText, f.Text)
	}
	for _, id := range f.CategoryIDs {
		params.Add(paramCategory, id)
	}
	for _, id := range f.SubcategoryIDs {
		params.Add(paramSubcategory, id)
	}
	for _, id := range f.ArtisanIDs {
		params.Add(paramArtisan, id)
	}
	if f.PriceMin != nil {
		params.Set(paramMinPrice, formatFloat(*f.PriceMin))
	}
	if f.PriceMax != nil {
		params.Set(paramMaxPrice, formatFloat(*f.PriceMax))
	}
	if f.MinRating != nil {
		params.Set(paramRating, formatFloat(*f.MinRating))
	}
	if f.DeliverySpeed != "" {
		params.Set(paramDelivery, string(f.DeliverySpeed))
	}
	if f.SortKey != "" {
		params.Set(paramSort, string(f.SortKey))
	}
	if page := f.EffectivePage(); page != DefaultPage {
		params.Set(paramPage, strconv.Itoa(page))
	}
	if size := f.EffectivePageSize(); size != DefaultPageSize {
		params.Set(paramPageSize, strconv.Itoa(size))
	}

	return params
}

// collectValues drops empty entries while preserving insertion order.
func collectValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
