package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/providers"
)

// channelEventBus is an in-memory EventBus for stream tests.
type channelEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.ProductEvent
}

func newChannelEventBus() *channelEventBus {
	return &channelEventBus{subscribers: make(map[string][]chan *entities.ProductEvent)}
}

func (b *channelEventBus) Publish(_ context.Context, channel string, event *entities.ProductEvent) error {
	b.mu.RLock()
	channels := append([]chan *entities.ProductEvent(nil), b.subscribers[channel]...)
	b.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *channelEventBus) Subscribe(_ context.Context, channel string) (<-chan *entities.ProductEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.ProductEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *channelEventBus) Unsubscribe(_ context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, channel)
	return nil
}

func (b *channelEventBus) Close() error { return nil }

func streamRequest(t *testing.T, target string) (*http.Request, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(ctx), cancel
}

func TestStreamProductUpdatesEstablishesConnection(t *testing.T) {
	handler := NewSSEHandler(newChannelEventBus())

	req, cancel := streamRequest(t, "/api/stream/products/p1")
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.StreamProductUpdates(rec, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after cancel")
	}

	result := rec.Result()
	assert.Equal(t, "text/event-stream", result.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", result.Header.Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "event: connected")
}

func TestStreamProductUpdatesDeliversEvents(t *testing.T) {
	bus := newChannelEventBus()
	handler := NewSSEHandler(bus)

	req, cancel := streamRequest(t, "/api/stream/products/p2")
	req.SetPathValue("id", "p2")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.StreamProductUpdates(rec, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	event := entities.NewProductEvent(&entities.Product{
		ID: "p2", ArtisanID: "a1", CategoryID: "home-decor",
	}, entities.ProductEventTypeUpdated)
	require.NoError(t, bus.Publish(context.Background(), providers.GetProductChannel("p2"), event))

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after cancel")
	}

	assert.Contains(t, rec.Body.String(), "event: updated")
	assert.Contains(t, rec.Body.String(), `"product_id":"p2"`)
}

func TestStreamProductUpdatesRequiresID(t *testing.T) {
	handler := NewSSEHandler(newChannelEventBus())

	req := httptest.NewRequest(http.MethodGet, "/api/stream/products/", nil)
	rec := httptest.NewRecorder()

	handler.StreamProductUpdates(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamCatalogUpdatesFiltersByCategory(t *testing.T) {
	bus := newChannelEventBus()
	handler := NewSSEHandler(bus)

	req, cancel := streamRequest(t, "/api/stream/products?category=home-decor")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.StreamCatalogUpdates(rec, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	matching := entities.NewProductEvent(&entities.Product{
		ID: "p1", ArtisanID: "a1", CategoryID: "home-decor",
	}, entities.ProductEventTypeCreated)
	other := entities.NewProductEvent(&entities.Product{
		ID: "p2", ArtisanID: "a2", CategoryID: "jewelry",
	}, entities.ProductEventTypeCreated)

	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelProductUpdates, matching))
	require.NoError(t, bus.Publish(context.Background(), providers.EventChannelProductUpdates, other))

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after cancel")
	}

	body := rec.Body.String()
	assert.Contains(t, body, `"product_id":"p1"`)
	assert.NotContains(t, body, `"product_id":"p2"`)
}

func TestSSEHandlerClientCount(t *testing.T) {
	handler := NewSSEHandler(newChannelEventBus())

	assert.Zero(t, handler.GetClientCount())

	req, cancel := streamRequest(t, "/api/stream/products/p1")
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()

	go handler.StreamProductUpdates(rec, req)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, handler.GetClientCount())

	cancel()
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, handler.GetClientCount())
}
