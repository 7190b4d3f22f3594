package entities

import "time"

// Artisan represents a seller profile on the marketplace.
type Artisan struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Bio         string    `json:"bio" db:"bio"`
	Location    string    `json:"location" db:"location"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ArtisanSummary is the embedded artisan projection carried on search
// results. Only profile fields the storefront renders inline are included.
type ArtisanSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Location  string  `json:"location,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Rating    float64 `json:"rating"`
}
