package repositories

import (
	"context"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

// ArtisanFilter narrows artisan listings.
type ArtisanFilter struct {
	Location string
	IsActive *bool
	Limit    int
	Offset   int
}

// ArtisanRepository defines persistence for artisan profiles.
type ArtisanRepository interface {
	Create(ctx context.Context, artisan *entities.Artisan) error
	GetByID(ctx context.Context, id string) (*entities.Artisan, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Artisan, error)
	Update(ctx context.Context, artisan *entities.Artisan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ArtisanFilter) ([]*entities.Artisan, error)
}
