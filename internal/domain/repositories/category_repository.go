package repositories

import (
	"context"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

// CategoryRepository defines persistence for the category tree.
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, id string) (*entities.Category, error)
	List(ctx context.Context) ([]*entities.Category, error)
	Update(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, subcategory *entities.Subcategory) error
	ListSubcategories(ctx context.Context, categoryID string) ([]*entities.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error
}
