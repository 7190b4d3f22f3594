package repositories

import (
	"context"
	"database/sql"

	"github.com/artisanmarket/backend/internal/domain/filters"
)

// RetrievalStrategy is one of two interchangeable ways of obtaining raw
// candidate records for a search: the structured path (relational
// predicates) or the full-text path (search engine). The orchestrator picks
// one per invocation based on the query shape.
type RetrievalStrategy interface {
	Retrieve(ctx context.Context, f filters.SearchFilters) ([]RawProductRecord, error)
}

// RawProductRecord is the unnormalized record shape both retrieval
// strategies return. Optional columns stay nullable and CreatedAt stays a
// raw timestamp string; normalization into a view projection is the result
// mapper's job.
type RawProductRecord struct {
	ID            string
	Title         string
	Description   sql.NullString
	Price         float64
	DiscountPrice sql.NullFloat64
	CategoryID    sql.NullString
	SubcategoryID sql.NullString
	ArtisanID     sql.NullString
	Tags          []string
	Images        []string
	Stock         sql.NullInt64
	Rating        sql.NullFloat64
	ReviewCount   sql.NullInt64
	Featured      sql.NullBool
	LeadTimeDays  sql.NullInt64
	CreatedAt     string

	// Joined relation rows, present only when the retrieval path loaded
	// them.
	Category    *RawCategoryRecord
	Subcategory *RawCategoryRecord
	Artisan     *RawArtisanRecord
}

// RawCategoryRecord is the joined category/subcategory row shape.
type RawCategoryRecord struct {
	ID   string
	Name sql.NullString
	Slug sql.NullString
}

// RawArtisanRecord is the joined artisan row shape.
type RawArtisanRecord struct {
	ID        string
	Name      sql.NullString
	Location  sql.NullString
	AvatarURL sql.NullString
	Rating    sql.NullFloat64
}
