package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/artisanmarket/backend/internal/application/services"
	"github.com/artisanmarket/backend/internal/domain/entities"
)

// CategoryHandler handles category tree HTTP requests
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategory handles GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	if categoryID == "" {
		respondWithError(w, http.StatusBadRequest, "category ID is required")
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), categoryID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category entities.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.categoryService.Create(r.Context(), &category); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, category)
}

// ListSubcategories handles GET /api/categories/{id}/subcategories
func (h *CategoryHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	if categoryID == "" {
		respondWithError(w, http.StatusBadRequest, "category ID is required")
		return
	}

	subcategories, err := h.categoryService.ListSubcategories(r.Context(), categoryID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subcategories": subcategories,
		"count":         len(subcategories),
	})
}

// CreateSubcategory handles POST /api/categories/{id}/subcategories
func (h *CategoryHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	if categoryID == "" {
		respondWithError(w, http.StatusBadRequest, "category ID is required")
		return
	}

	var subcategory entities.Subcategory
	if err := json.NewDecoder(r.Body).Decode(&subcategory); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	subcategory.CategoryID = categoryID

	if err := h.categoryService.CreateSubcategory(r.Context(), &subcategory); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, subcategory)
}
