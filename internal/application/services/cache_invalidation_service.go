package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/providers"
)

// CacheInvalidationService listens for product catalog events and invalidates
// the affected response caches. Search result caches are left to expire on
// their short TTLs; invalidating them on every catalog write would stampede
// the cache for no visible freshness gain.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for product events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelProductUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to product updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.ProductEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the cache entries tied to one product.
func (s *CacheInvalidationService) handleEvent(event *entities.ProductEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Debug().Str("event_id", event.ID).Str("product_id", event.ProductID).
		Str("event_type", string(event.EventType)).Msg("processing cache invalidation")

	if err := s.InvalidateProductCache(ctx, event.ProductID); err != nil {
		log.Warn().Err(err).Str("product_id", event.ProductID).
			Msg("failed to invalidate product cache")
	}
}

// InvalidateProductCache invalidates cached responses for a specific product
func (s *CacheInvalidationService) InvalidateProductCache(ctx context.Context, productID string) error {
	patterns := []string{
		fmt.Sprintf("product:%s", productID),
		fmt.Sprintf("http:cache:*products/%s*", productID),
	}
	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}

// InvalidateSearchCaches drops all cached search responses. Only meant for
// maintenance or bulk catalog imports.
func (s *CacheInvalidationService) InvalidateSearchCaches(ctx context.Context) error {
	pattern := "http:cache:*search*"
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
	}
	log.Info().Str("pattern", pattern).Msg("invalidated search caches")
	return nil
}
