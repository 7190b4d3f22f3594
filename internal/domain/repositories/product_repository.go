package repositories

import (
	"context"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

// ProductFilter narrows catalog listings (admin/artisan back-office reads).
type ProductFilter struct {
	CategoryID string
	ArtisanID  string
	IsActive   *bool
	Limit      int
	Offset     int
}

// ProductRepository defines catalog persistence for products.
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id string) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entities.Product, error)

	// Retrieve is the structured retrieval strategy: relational predicates,
	// sort pushdown and offset/limit pagination at the data-store level.
	RetrievalStrategy
}

// ProductSearchRepository defines the full-text index over products.
type ProductSearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, product *entities.Product) error
	BulkIndex(ctx context.Context, products []*entities.Product) error
	Delete(ctx context.Context, id string) error

	// Retrieve is the full-text retrieval strategy. Delivery-speed
	// filtering is not applied here; the refinement pass covers it.
	RetrievalStrategy
}
