package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/providers"
)

// SSEHandler streams catalog change events to storefront clients over
// Server-Sent Events. A product page subscribes to its product channel;
// listing pages subscribe to the catalog stream, optionally narrowed to a
// category or artisan.
type SSEHandler struct {
	eventBus providers.EventBus
	clients  map[string]map[chan *entities.ProductEvent]bool
	mu       sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		clients:  make(map[string]map[chan *entities.ProductEvent]bool),
	}
}

// StreamProductUpdates handles SSE connections for a single product.
// GET /api/stream/products/{id}
func (h *SSEHandler) StreamProductUpdates(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "product ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	setStreamHeaders(w)

	clientChan := make(chan *entities.ProductEvent, 10)
	channel := providers.GetProductChannel(productID)

	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to channel")
		return
	}

	h.sendEvent(w, "connected", map[string]interface{}{
		"product_id": productID,
		"timestamp":  time.Now(),
	})
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan, nil)

	h.streamLoop(w, r, flusher, clientChan)
	log.Debug().Str("product_id", productID).Msg("client disconnected from product stream")
}

// StreamCatalogUpdates handles SSE connections for catalog-wide updates.
// GET /api/stream/products?category=X&artisan=Y
func (h *SSEHandler) StreamCatalogUpdates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	categoryID := query.Get("category")
	artisanID := query.Get("artisan")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	setStreamHeaders(w)

	clientChan := make(chan *entities.ProductEvent, 50)
	channel := providers.EventChannelProductUpdates

	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to channel")
		return
	}

	h.sendEvent(w, "connected", map[string]interface{}{
		"category":  categoryID,
		"artisan":   artisanID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	filter := func(event *entities.ProductEvent) bool {
		if categoryID != "" && event.CategoryID != categoryID {
			return false
		}
		if artisanID != "" && event.ArtisanID != artisanID {
			return false
		}
		return true
	}
	go h.forwardEvents(r.Context(), eventChan, clientChan, filter)

	h.streamLoop(w, r, flusher, clientChan)
	log.Debug().Str("category", categoryID).Str("artisan", artisanID).
		Msg("client disconnected from catalog stream")
}

// streamLoop delivers events and heartbeats until the client goes away.
func (h *SSEHandler) streamLoop(w http.ResponseWriter, r *http.Request, flusher http.Flusher, clientChan <-chan *entities.ProductEvent) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// forwardEvents pipes bus events into the client channel. A full client
// channel drops the event rather than blocking the bus reader.
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.ProductEvent, clientChan chan<- *entities.ProductEvent, keep func(*entities.ProductEvent) bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			if keep != nil && !keep(event) {
				continue
			}
			select {
			case clientChan <- event:
			default:
			}
		}
	}
}

func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.ProductEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.ProductEvent]bool)
	}
	h.clients[channel][clientChan] = true
	log.Debug().Str("channel", channel).Int("total", len(h.clients[channel])).Msg("stream client registered")
}

func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.ProductEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stream event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// GetClientCount returns the number of connected stream clients.
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
