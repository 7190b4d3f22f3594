package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// CategoryService handles business logic for the category tree
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create validates and persists a new category
func (s *CategoryService) Create(ctx context.Context, category *entities.Category) error {
	if category == nil || category.Name == "" {
		return apperrors.NewValidationError("category name is required")
	}

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.IsActive = true

	return s.repo.Create(ctx, category)
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all active categories
func (s *CategoryService) List(ctx context.Context) ([]*entities.Category, error) {
	return s.repo.List(ctx)
}

// Update persists category changes
func (s *CategoryService) Update(ctx context.Context, category *entities.Category) error {
	if category == nil || category.Name == "" {
		return apperrors.NewValidationError("category name is required")
	}
	category.UpdatedAt = time.Now()
	return s.repo.Update(ctx, category)
}

// Delete soft-deletes a category
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CreateSubcategory validates and persists a new subcategory
func (s *CategoryService) CreateSubcategory(ctx context.Context, subcategory *entities.Subcategory) error {
	if subcategory == nil || subcategory.Name == "" {
		return apperrors.NewValidationError("subcategory name is required")
	}
	if subcategory.CategoryID == "" {
		return apperrors.NewValidationError("subcategory parent category is required")
	}

	if subcategory.ID == "" {
		subcategory.ID = uuid.New().String()
	}
	if subcategory.Slug == "" {
		subcategory.Slug = slugify(subcategory.Name)
	}
	now := time.Now()
	subcategory.CreatedAt = now
	subcategory.UpdatedAt = now
	subcategory.IsActive = true

	return s.repo.CreateSubcategory(ctx, subcategory)
}

// ListSubcategories retrieves the subcategories of a category
func (s *CategoryService) ListSubcategories(ctx context.Context, categoryID string) ([]*entities.Subcategory, error) {
	return s.repo.ListSubcategories(ctx, categoryID)
}

// DeleteSubcategory soft-deletes a subcategory
func (s *CategoryService) DeleteSubcategory(ctx context.Context, id string) error {
	return s.repo.DeleteSubcategory(ctx, id)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
