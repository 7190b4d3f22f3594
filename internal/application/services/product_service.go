package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/providers"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

// ProductService handles business logic for catalog products. Writes go to
// the database first; the search index and the event bus follow with eventual
// consistency, so an index failure never fails the write.
type ProductService struct {
	repo       repositories.ProductRepository
	searchRepo repositories.ProductSearchRepository
	eventBus   providers.EventBus
}

// NewProductService creates a new product service
func NewProductService(
	repo repositories.ProductRepository,
	searchRepo repositories.ProductSearchRepository,
	eventBus providers.EventBus,
) *ProductService {
	return &ProductService{
		repo:       repo,
		searchRepo: searchRepo,
		eventBus:   eventBus,
	}
}

// Create validates and persists a new product, then indexes it
func (s *ProductService) Create(ctx context.Context, product *entities.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsActive = true

	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	s.syncIndex(ctx, product)
	s.publishEvent(ctx, product, entities.ProductEventTypeCreated)
	return nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Update validates and persists product changes, then refreshes the index
func (s *ProductService) Update(ctx context.Context, product *entities.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.syncIndex(ctx, product)
	s.publishEvent(ctx, product, entities.ProductEventTypeUpdated)
	return nil
}

// Delete soft-deletes a product and removes it from the index
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("failed to delete product from index")
		}
	}

	s.publishEvent(ctx, product, entities.ProductEventTypeDeleted)
	return nil
}

// List retrieves products matching the filter
func (s *ProductService) List(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProductService) syncIndex(ctx context.Context, product *entities.Product) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, product); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("failed to index product")
	}
}

func (s *ProductService) publishEvent(ctx context.Context, product *entities.Product, eventType entities.ProductEventType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewProductEvent(product, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelProductUpdates, event); err != nil {
		log.Warn().Err(err).Str("product_id", event.ProductID).Msg("failed to publish product event")
	}
	// Per-product channel feeds product-detail streams.
	if err := s.eventBus.Publish(ctx, providers.GetProductChannel(event.ProductID), event); err != nil {
		log.Warn().Err(err).Str("product_id", event.ProductID).Msg("failed to publish product channel event")
	}
}

func validateProduct(product *entities.Product) error {
	if product == nil {
		return apperrors.NewValidationError("product is required")
	}
	if product.Title == "" {
		return apperrors.NewValidationError("product title is required")
	}
	if product.Price <= 0 {
		return apperrors.NewValidationError("product price must be positive")
	}
	if product.DiscountPrice != nil && *product.DiscountPrice > product.Price {
		return apperrors.NewValidationError("discount price cannot exceed list price")
	}
	if product.ArtisanID == "" {
		return apperrors.NewValidationError("product artisan is required")
	}
	if product.CategoryID == "" {
		return apperrors.NewValidationError("product category is required")
	}
	if product.LeadTimeDays < 0 {
		return apperrors.NewValidationError("lead time cannot be negative")
	}
	return nil
}
