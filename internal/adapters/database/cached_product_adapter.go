package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/filters"
	"github.com/artisanmarket/backend/internal/domain/providers"
	"github.com/artisanmarket/backend/internal/domain/repositories"
)

// CachedProductAdapter wraps a ProductRepository with read-through caching.
// Writes invalidate the product's cache entry; Retrieve is passed through
// untouched since search responses are cached at the HTTP layer with their
// own TTL.
type CachedProductAdapter struct {
	adapter repositories.ProductRepository
	cache   providers.CacheProvider
}

// NewCachedProductAdapter creates a new cached product adapter
func NewCachedProductAdapter(adapter repositories.ProductRepository, cache providers.CacheProvider) repositories.ProductRepository {
	return &CachedProductAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	productByIDTTL = 300
)

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// GetByID retrieves a product by ID with caching
func (a *CachedProductAdapter) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	cacheKey := productCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var product entities.Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return &product, nil
		}
		log.Warn().Str("product_id", id).Msg("failed to unmarshal cached product")
	}

	product, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache off the request path so a slow Redis never delays the response.
	go func() {
		if data, err := json.Marshal(product); err == nil {
			if err := a.cache.Set(context.Background(), cacheKey, data, productByIDTTL); err != nil {
				log.Warn().Err(err).Str("product_id", id).Msg("failed to cache product")
			}
		}
	}()

	return product, nil
}

// Create creates a product
func (a *CachedProductAdapter) Create(ctx context.Context, product *entities.Product) error {
	return a.adapter.Create(ctx, product)
}

// Update updates a product and invalidates its cache entry
func (a *CachedProductAdapter) Update(ctx context.Context, product *entities.Product) error {
	if err := a.adapter.Update(ctx, product); err != nil {
		return err
	}
	a.invalidate(ctx, product.ID)
	return nil
}

// Delete deletes a product and invalidates its cache entry
func (a *CachedProductAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

// List retrieves products, bypassing the cache
func (a *CachedProductAdapter) List(ctx context.Context, filter repositories.ProductFilter) ([]*entities.Product, error) {
	return a.adapter.List(ctx, filter)
}

// Retrieve executes the structured retrieval strategy, bypassing the cache
func (a *CachedProductAdapter) Retrieve(ctx context.Context, f filters.SearchFilters) ([]repositories.RawProductRecord, error) {
	return a.adapter.Retrieve(ctx, f)
}

func (a *CachedProductAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, productCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("product_id", id).Msg("failed to invalidate product cache")
	}
}
