package services

import (
	"fmt"
	"time"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// createdAtLayouts are the timestamp encodings the retrieval paths produce:
// RFC3339 from the search index, text-cast timestamptz from Postgres.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// MapRecord normalizes a raw retrieval record into a SearchResultItem. Pure,
// no I/O. Missing optionals become zero values; absent relations stay nil. An
// unparsable creation timestamp is an error, never a silent default, because
// it signals corrupt upstream data.
func MapRecord(record repositories.RawProductRecord) (entities.SearchResultItem, error) {
	createdAt, err := parseCreatedAt(record.CreatedAt)
	if err != nil {
		return entities.SearchResultItem{}, apperrors.NewInternalError(
			fmt.Sprintf("failed to map product %s", record.ID), err)
	}

	item := entities.SearchResultItem{
		ID:           record.ID,
		Title:        record.Title,
		Description:  record.Description.String,
		Price:        record.Price,
		Tags:         emptyIfNil(record.Tags),
		Images:       emptyIfNil(record.Images),
		Stock:        int(record.Stock.Int64),
		Rating:       record.Rating.Float64,
		ReviewCount:  int(record.ReviewCount.Int64),
		Featured:     record.Featured.Bool,
		LeadTimeDays: int(record.LeadTimeDays.Int64),
		CreatedAt:    createdAt,
	}

	if record.DiscountPrice.Valid {
		discount := record.DiscountPrice.Float64
		item.DiscountPrice = &discount
	}
	if record.CategoryID.Valid {
		item.CategoryID = record.CategoryID.String
	}
	if record.SubcategoryID.Valid {
		item.SubcategoryID = record.SubcategoryID.String
	}
	if record.ArtisanID.Valid {
		item.ArtisanID = record.ArtisanID.String
	}

	if record.Category != nil {
		item.CategoryName = record.Category.Name.String
	}
	if record.Subcategory != nil {
		item.SubcategoryName = record.Subcategory.Name.String
	}
	if record.Artisan != nil {
		item.Artisan = &entities.ArtisanSummary{
			ID:        record.Artisan.ID,
			Name:      record.Artisan.Name.String,
			Location:  record.Artisan.Location.String,
			AvatarURL: record.Artisan.AvatarURL.String,
			Rating:    record.Artisan.Rating.Float64,
		}
	}

	return item, nil
}

// MapRecords maps a batch of raw records, failing on the first bad record so
// a corrupt row never silently shrinks the result set.
func MapRecords(records []repositories.RawProductRecord) ([]entities.SearchResultItem, error) {
	items := make([]entities.SearchResultItem, 0, len(records))
	for _, record := range records {
		item, err := MapRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseCreatedAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable created_at %q", raw)
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
