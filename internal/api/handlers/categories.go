package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/middleware"
	"github.com/dkruglov/pennyflow/internal/ingest"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	categories ingest.CategoryRepository
	log        zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(categories ingest.CategoryRepository, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		categories: categories,
		log:        log,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	categories, err := h.categories.ListCategories(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}
