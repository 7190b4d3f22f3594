package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/artisanmarket/backend/internal/application/services"
	"github.com/artisanmarket/backend/internal/domain/entities"
	"github.com/artisanmarket/backend/internal/domain/repositories"
)

// ArtisanHandler handles artisan profile HTTP requests
type ArtisanHandler struct {
	artisanService *services.ArtisanService
}

// NewArtisanHandler creates a new artisan handler
func NewArtisanHandler(artisanService *services.ArtisanService) *ArtisanHandler {
	return &ArtisanHandler{artisanService: artisanService}
}

// GetArtisan handles GET /api/artisans/{id}
func (h *ArtisanHandler) GetArtisan(w http.ResponseWriter, r *http.Request) {
	artisanID := r.PathValue("id")
	if artisanID == "" {
		respondWithError(w, http.StatusBadRequest, "artisan ID is required")
		return
	}

	artisan, err := h.artisanService.GetByID(r.Context(), artisanID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, artisan)
}

// ListArtisans handles GET /api/artisans
func (h *ArtisanHandler) ListArtisans(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.ArtisanFilter{
		Location: query.Get("location"),
		Limit:    30,
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	artisans, err := h.artisanService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"artisans": artisans,
		"count":    len(artisans),
	})
}

// CreateArtisan handles POST /api/artisans
func (h *ArtisanHandler) CreateArtisan(w http.ResponseWriter, r *http.Request) {
	var artisan entities.Artisan
	if err := json.NewDecoder(r.Body).Decode(&artisan); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.artisanService.Create(r.Context(), &artisan); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, artisan)
}

// UpdateArtisan handles PUT /api/artisans/{id}
func (h *ArtisanHandler) UpdateArtisan(w http.ResponseWriter, r *http.Request) {
	artisanID := r.PathValue("id")
	if artisanID == "" {
		respondWithError(w, http.StatusBadRequest, "artisan ID is required")
		return
	}

	var artisan entities.Artisan
	if err := json.NewDecoder(r.Body).Decode(&artisan); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	artisan.ID = artisanID

	if err := h.artisanService.Update(r.Context(), &artisan); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, artisan)
}

// DeleteArtisan handles DELETE /api/artisans/{id}
func (h *ArtisanHandler) DeleteArtisan(w http.ResponseWriter, r *http.Request) {
	artisanID := r.PathValue("id")
	if artisanID == "" {
		respondWithError(w, http.StatusBadRequest, "artisan ID is required")
		return
	}

	if err := h.artisanService.Delete(r.Context(), artisanID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
