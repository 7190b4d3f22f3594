package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	"github.com/artisanmarket/backend/pkg/errors"
)

// ArtisanAdapter implements ArtisanRepository over PostgreSQL.
type ArtisanAdapter struct {
	db     *sql.DB
	goquDB *goqu.Database
}

// NewArtisanAdapter creates a new artisan adapter
func NewArtisanAdapter(db *sql.DB) repositories.ArtisanRepository {
	return &ArtisanAdapter{
		db:     db,
		goquDB: goqu.New("postgres", db),
	}
}

var artisanColumns = []interface{}{
	"id", "name", "bio", "location", "avatar_url",
	"rating", "review_count", "is_active", "created_at", "updated_at",
}

// Create creates a new artisan profile
func (a *ArtisanAdapter) Create(ctx context.Context, artisan *entities.Artisan) error {
	record := goqu.Record{
		"id":           artisan.ID,
		"name":         artisan.Name,
		"bio":          sql.NullString{String: artisan.Bio, Valid: artisan.Bio != ""},
		"location":     sql.NullString{String: artisan.Location, Valid: artisan.Location != ""},
		"avatar_url":   sql.NullString{String: artisan.AvatarURL, Valid: artisan.AvatarURL != ""},
		"rating":       artisan.Rating,
		"review_count": artisan.ReviewCount,
		"is_active":    artisan.IsActive,
		"created_at":   artisan.CreatedAt,
		"updated_at":   artisan.UpdatedAt,
	}

	query, args, err := a.goquDB.Insert("artisans").Rows(record).ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternalError("failed to create artisan", err)
	}

	return nil
}

// GetByID retrieves an artisan by ID
func (a *ArtisanAdapter) GetByID(ctx context.Context, id string) (*entities.Artisan, error) {
	query, args, err := a.goquDB.Select(artisanColumns...).
		From("artisans").
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build query", err)
	}

	artisan := &entities.Artisan{}
	var bio, location, avatarURL sql.NullString

	err = a.db.QueryRowContext(ctx, query, args...).Scan(
		&artisan.ID, &artisan.Name, &bio, &location, &avatarURL,
		&artisan.Rating, &artisan.ReviewCount, &artisan.IsActive,
		&artisan.CreatedAt, &artisan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("artisan with id %s not found", id))
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to get artisan", err)
	}

	artisan.Bio = bio.String
	artisan.Location = location.String
	artisan.AvatarURL = avatarURL.String

	return artisan, nil
}

// GetByIDs retrieves multiple artisans by their IDs
func (a *ArtisanAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Artisan, error) {
	if len(ids) == 0 {
		return []*entities.Artisan{}, nil
	}

	query, args, err := a.goquDB.Select(artisanColumns...).
		From("artisans").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to get artisans by ids", err)
	}
	defer rows.Close()

	return collectArtisans(rows)
}

// Update updates an artisan profile
func (a *ArtisanAdapter) Update(ctx context.Context, artisan *entities.Artisan) error {
	artisan.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":         artisan.Name,
		"bio":          sql.NullString{String: artisan.Bio, Valid: artisan.Bio != ""},
		"location":     sql.NullString{String: artisan.Location, Valid: artisan.Location != ""},
		"avatar_url":   sql.NullString{String: artisan.AvatarURL, Valid: artisan.AvatarURL != ""},
		"rating":       artisan.Rating,
		"review_count": artisan.ReviewCount,
		"is_active":    artisan.IsActive,
		"updated_at":   artisan.UpdatedAt,
	}

	query, args, err := a.goquDB.Update("artisans").
		Set(record).
		Where(goqu.Ex{"id": artisan.ID}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to update artisan", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("artisan with id %s not found", artisan.ID))
	}

	return nil
}

// Delete soft deletes an artisan profile
func (a *ArtisanAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.goquDB.Update("artisans").
		Set(goqu.Record{"is_active": false, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to delete artisan", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("artisan with id %s not found", id))
	}

	return nil
}

// List retrieves artisans with filters
func (a *ArtisanAdapter) List(ctx context.Context, filter repositories.ArtisanFilter) ([]*entities.Artisan, error) {
	ds := a.goquDB.Select(artisanColumns...).From("artisans")

	if filter.Location != "" {
		ds = ds.Where(goqu.I("location").ILike(fmt.Sprintf("%%%s%%", filter.Location)))
	}
	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}

	ds = ds.Order(goqu.I("name").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list artisans", err)
	}
	defer rows.Close()

	return collectArtisans(rows)
}

func collectArtisans(rows *sql.Rows) ([]*entities.Artisan, error) {
	var artisans []*entities.Artisan
	for rows.Next() {
		artisan := &entities.Artisan{}
		var bio, location, avatarURL sql.NullString

		err := rows.Scan(
			&artisan.ID, &artisan.Name, &bio, &location, &avatarURL,
			&artisan.Rating, &artisan.ReviewCount, &artisan.IsActive,
			&artisan.CreatedAt, &artisan.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan artisan", err)
		}

		artisan.Bio = bio.String
		artisan.Location = location.String
		artisan.AvatarURL = avatarURL.String

		artisans = append(artisans, artisan)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("error iterating artisans", err)
	}

	return artisans, nil
}
