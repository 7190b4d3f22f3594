package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ProductEventType represents the type of product catalog event
type ProductEventType string

const (
	ProductEventTypeCreated ProductEventType = "created"
	ProductEventTypeUpdated ProductEventType = "updated"
	ProductEventTypeDeleted ProductEventType = "deleted"
)

// ProductEvent is published on the event bus whenever the catalog changes,
// so the search index and response caches can react.
type ProductEvent struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	ArtisanID  string           `json:"artisan_id,omitempty"`
	CategoryID string           `json:"category_id,omitempty"`
	EventType  ProductEventType `json:"event_type"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewProductEvent creates a new product event
func NewProductEvent(product *Product, eventType ProductEventType) *ProductEvent {
	event := &ProductEvent{
		ID:        generateEventID(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
	if product != nil {
		event.ProductID = product.ID
		event.ArtisanID = product.ArtisanID
		event.CategoryID = product.CategoryID
	}
	return event
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
