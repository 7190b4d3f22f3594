package routes

import (
	"net/http"

	"github.com/artisanmarket/backend/internal/api/handlers"
	"github.com/artisanmarket/backend/internal/api/middleware"
	"github.com/artisanmarket/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler   *handlers.SearchHandler
	productHandler  *handlers.ProductHandler
	artisanHandler  *handlers.ArtisanHandler
	categoryHandler *handlers.CategoryHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	productHandler *handlers.ProductHandler,
	artisanHandler *handlers.ArtisanHandler,
	categoryHandler *handlers.CategoryHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		searchHandler:   searchHandler,
		productHandler:  productHandler,
		artisanHandler:  artisanHandler,
		categoryHandler: categoryHandler,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoint
	r.mux.HandleFunc("GET /api/products/search", r.searchHandler.SearchProducts)

	// Product catalog endpoints
	r.mux.HandleFunc("GET /api/products", r.productHandler.ListProducts)
	r.mux.HandleFunc("GET /api/products/{id}", r.productHandler.GetProduct)
	r.mux.HandleFunc("POST /api/products", r.productHandler.CreateProduct)
	r.mux.HandleFunc("PUT /api/products/{id}", r.productHandler.UpdateProduct)
	r.mux.HandleFunc("DELETE /api/products/{id}", r.productHandler.DeleteProduct)

	// Artisan endpoints
	r.mux.HandleFunc("GET /api/artisans", r.artisanHandler.ListArtisans)
	r.mux.HandleFunc("GET /api/artisans/{id}", r.artisanHandler.GetArtisan)
	r.mux.HandleFunc("POST /api/artisans", r.artisanHandler.CreateArtisan)
	r.mux.HandleFunc("PUT /api/artisans/{id}", r.artisanHandler.UpdateArtisan)
	r.mux.HandleFunc("DELETE /api/artisans/{id}", r.artisanHandler.DeleteArtisan)

	// Category endpoints
	r.mux.HandleFunc("GET /api/categories", r.categoryHandler.ListCategories)
	r.mux.HandleFunc("GET /api/categories/{id}", r.categoryHandler.GetCategory)
	r.mux.HandleFunc("POST /api/categories", r.categoryHandler.CreateCategory)
	r.mux.HandleFunc("GET /api/categories/{id}/subcategories", r.categoryHandler.ListSubcategories)
	r.mux.HandleFunc("POST /api/categories/{id}/subcategories", r.categoryHandler.CreateSubcategory)

	// Middleware apply in reverse order (last wraps first). CORS is
	// outermost so cached responses also carry CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
