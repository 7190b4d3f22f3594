package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

// fakeCache records pattern deletions.
type fakeCache struct {
	mu       sync.Mutex
	deleted  []string
	patterns []string
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, assert.AnError }
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func (c *fakeCache) seenPatterns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.patterns...)
}

// subscribableBus delivers published events to its subscriber channel.
type subscribableBus struct {
	ch chan *entities.ProductEvent
}

func newSubscribableBus() *subscribableBus {
	return &subscribableBus{ch: make(chan *entities.ProductEvent, 10)}
}

func (b *subscribableBus) Publish(ctx context.Context, channel string, event *entities.ProductEvent) error {
	b.ch <- event
	return nil
}

func (b *subscribableBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ProductEvent, error) {
	return b.ch, nil
}

func (b *subscribableBus) Unsubscribe(ctx context.Context, channel string) error { return nil }
func (b *subscribableBus) Close() error                                          { return nil }

func TestInvalidateProductCachePatterns(t *testing.T) {
	cache := &fakeCache{}
	service := NewCacheInvalidationService(cache, newSubscribableBus())

	err := service.InvalidateProductCache(context.Background(), "prod-1")

	require.NoError(t, err)
	patterns := cache.seenPatterns()
	assert.Contains(t, patterns, "product:prod-1")
	assert.Contains(t, patterns, "http:cache:*products/prod-1*")
}

func TestCacheInvalidationReactsToEvents(t *testing.T) {
	cache := &fakeCache{}
	bus := newSubscribableBus()
	service := NewCacheInvalidationService(cache, bus)

	require.NoError(t, service.Start())
	defer service.Stop()

	event := entities.NewProductEvent(&entities.Product{ID: "prod-9"}, entities.ProductEventTypeUpdated)
	require.NoError(t, bus.Publish(context.Background(), "products:updates", event))

	assert.Eventually(t, func() bool {
		for _, p := range cache.seenPatterns() {
			if p == "product:prod-9" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestInvalidateSearchCaches(t *testing.T) {
	cache := &fakeCache{}
	service := NewCacheInvalidationService(cache, newSubscribableBus())

	require.NoError(t, service.InvalidateSearchCaches(context.Background()))

	assert.Equal(t, []string{"http:cache:*search*"}, cache.seenPatterns())
}
