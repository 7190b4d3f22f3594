package providers

import (
	"context"

	"github.com/artisanmarket/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to catalog
// change events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ProductEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProductEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel names.
const (
	// EventChannelProductUpdates carries all product catalog changes.
	EventChannelProductUpdates = "products:updates"

	// EventChannelProductPrefix is the prefix for product-specific channels.
	EventChannelProductPrefix = "products:"
)

// GetProductChannel returns the event channel for a single product.
func GetProductChannel(productID string) string {
	return EventChannelProductPrefix + productID
}
