package entities

import "time"

// Product represents a listed artisan good in the catalog.
type Product struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Price         float64    `json:"price" db:"price"`
	DiscountPrice *float64   `json:"discount_price,omitempty" db:"discount_price"`
	CategoryID    string     `json:"category_id" db:"category_id"`
	SubcategoryID string     `json:"subcategory_id,omitempty" db:"subcategory_id"`
	ArtisanID     string     `json:"artisan_id" db:"artisan_id"`
	Tags          []string   `json:"tags,omitempty" db:"-"`
	Images        []string   `json:"images,omitempty" db:"-"`
	Stock         int        `json:"stock" db:"stock"`
	Rating        float64    `json:"rating" db:"rating"`
	ReviewCount   int        `json:"review_count" db:"review_count"`
	Featured      bool       `json:"featured" db:"featured"`
	LeadTimeDays  int        `json:"lead_time_days" db:"lead_time_days"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectivePrice returns the discount price when one is set, else the list
// price. Price filters and price sorts operate on this value.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
