package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// ArtisanService handles business logic for artisan profiles
type ArtisanService struct {
	repo repositories.ArtisanRepository
}

// NewArtisanService creates a new artisan service
func NewArtisanService(repo repositories.ArtisanRepository) *ArtisanService {
	return &ArtisanService{repo: repo}
}

// Create validates and persists a new artisan profile
func (s *ArtisanService) Create(ctx context.Context, artisan *entities.Artisan) error {
	if artisan == nil || artisan.Name == "" {
		return apperrors.NewValidationError("artisan name is required")
	}

	if artisan.ID == "" {
		artisan.ID = uuid.New().String()
	}
	now := time.Now()
	artisan.CreatedAt = now
	artisan.UpdatedAt = now
	artisan.IsActive = true

	return s.repo.Create(ctx, artisan)
}

// GetByID retrieves an artisan by ID
func (s *ArtisanService) GetByID(ctx context.Context, id string) (*entities.Artisan, error) {
	return s.repo.GetByID(ctx, id)
}

// Update persists artisan profile changes
func (s *ArtisanService) Update(ctx context.Context, artisan *entities.Artisan) error {
	if artisan == nil || artisan.Name == "" {
		return apperrors.NewValidationError("artisan name is required")
	}
	artisan.UpdatedAt = time.Now()
	return s.repo.Update(ctx, artisan)
}

// Delete soft-deletes an artisan profile
func (s *ArtisanService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List retrieves artisans matching the filter
func (s *ArtisanService) List(ctx context.Context, filter repositories.ArtisanFilter) ([]*entities.Artisan, error) {
	return s.repo.List(ctx, filter)
}
