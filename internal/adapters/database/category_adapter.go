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

// CategoryAdapter implements CategoryRepository over PostgreSQL.
type CategoryAdapter struct {
	db     *sql.DB
	goquDB *goqu.Database
}

// NewCategoryAdapter creates a new category adapter
func NewCategoryAdapter(db *sql.DB) repositories.CategoryRepository {
	return &CategoryAdapter{
		db:     db,
		goquDB: goqu.New("postgres", db),
	}
}

// Create creates a new category
func (a *CategoryAdapter) Create(ctx context.Context, category *entities.Category) error {
	record := goqu.Record{
		"id":         category.ID,
		"name":       category.Name,
		"slug":       category.Slug,
		"is_active":  category.IsActive,
		"created_at": category.CreatedAt,
		"updated_at": category.UpdatedAt,
	}

	query, args, err := a.goquDB.Insert("categories").Rows(record).ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternalError("failed to create category", err)
	}

	return nil
}

// GetByID retrieves a category by ID
func (a *CategoryAdapter) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	query, args, err := a.goquDB.Select("id", "name", "slug", "is_active", "created_at", "updated_at").
		From("categories").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build query", err)
	}

	category := &entities.Category{}
	err = a.db.QueryRowContext(ctx, query, args...).Scan(
		&category.ID, &category.Name, &category.Slug,
		&category.IsActive, &category.CreatedAt, &category.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category with id %s not found", id))
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to get category", err)
	}

	return category, nil
}

// List retrieves all active categories
func (a *CategoryAdapter) List(ctx context.Context) ([]*entities.Category, error) {
	query, args, err := a.goquDB.Select("id", "name", "slug", "is_active", "created_at", "updated_at").
		From("categories").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list categories", err)
	}
	defer rows.Close()

	var categories []*entities.Category
	for rows.Next() {
		category := &entities.Category{}
		err := rows.Scan(
			&category.ID, &category.Name, &category.Slug,
			&category.IsActive, &category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan category", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("error iterating categories", err)
	}

	return categories, nil
}

// Update updates a category
func (a *CategoryAdapter) Update(ctx context.Context, category *entities.Category) error {
	category.UpdatedAt = time.Now()

	query, args, err := a.goquDB.Update("categories").
		Set(goqu.Record{
			"name":       category.Name,
			"slug":       category.Slug,
			"is_active":  category.IsActive,
			"updated_at": category.UpdatedAt,
		}).
		Where(goqu.Ex{"id": category.ID}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to update category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("category with id %s not found", category.ID))
	}

	return nil
}

// Delete soft deletes a category
func (a *CategoryAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.goquDB.Update("categories").
		Set(goqu.Record{"is_active": false, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to delete category", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("category with id %s not found", id))
	}

	return nil
}

// CreateSubcategory creates a subcategory under a category
func (a *CategoryAdapter) CreateSubcategory(ctx context.Context, subcategory *entities.Subcategory) error {
	record := goqu.Record{
		"id":          subcategory.ID,
		"category_id": subcategory.CategoryID,
		"name":        subcategory.Name,
		"slug":        subcategory.Slug,
		"is_active":   subcategory.IsActive,
		"created_at":  subcategory.CreatedAt,
		"updated_at":  subcategory.UpdatedAt,
	}

	query, args, err := a.goquDB.Insert("subcategories").Rows(record).ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternalError("failed to create subcategory", err)
	}

	return nil
}

// ListSubcategories retrieves active subcategories for a category
func (a *CategoryAdapter) ListSubcategories(ctx context.Context, categoryID string) ([]*entities.Subcategory, error) {
	query, args, err := a.goquDB.Select("id", "category_id", "name", "slug", "is_active", "created_at", "updated_at").
		From("subcategories").
		Where(goqu.Ex{"category_id": categoryID, "is_active": true}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list subcategories", err)
	}
	defer rows.Close()

	var subcategories []*entities.Subcategory
	for rows.Next() {
		subcategory := &entities.Subcategory{}
		err := rows.Scan(
			&subcategory.ID, &subcategory.CategoryID, &subcategory.Name, &subcategory.Slug,
			&subcategory.IsActive, &subcategory.CreatedAt, &subcategory.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan subcategory", err)
		}
		subcategories = append(subcategories, subcategory)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("error iterating subcategories", err)
	}

	return subcategories, nil
}

// DeleteSubcategory soft deletes a subcategory
func (a *CategoryAdapter) DeleteSubcategory(ctx context.Context, id string) error {
	query, args, err := a.goquDB.Update("subcategories").
		Set(goqu.Record{"is_active": false, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return errors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError("failed to delete subcategory", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("subcategory with id %s not found", id))
	}

	return nil
}
