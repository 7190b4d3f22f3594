package entities

import "time"

// SearchResultItem is the normalized product projection returned by the
// search pipeline. It is built fresh on every retrieval and never mutated
// afterwards; both retrieval paths produce the same shape.
type SearchResultItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           float64         `json:"price"`
	DiscountPrice   *float64        `json:"discount_price,omitempty"`
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	SubcategoryID   string          `json:"subcategory_id,omitempty"`
	SubcategoryName string          `json:"subcategory_name,omitempty"`
	ArtisanID       string          `json:"artisan_id"`
	Artisan         *ArtisanSummary `json:"artisan,omitempty"`
	Tags            []string        `json:"tags"`
	Images          []string        `json:"images"`
	Stock           int             `json:"stock"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"review_count"`
	Featured        bool            `json:"featured"`
	LeadTimeDays    int             `json:"lead_time_days"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EffectivePrice returns the discount price when one is set, else the list
// price.
func (i *SearchResultItem) EffectivePrice() float64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}

// SearchEnvelope is the uniform search response. Total is computed after the
// refinement pass, so it always equals len(Items); the storefront paginates
// on it.
type SearchEnvelope struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}
