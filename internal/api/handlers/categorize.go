package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/middleware"
	"github.com/dkruglov/pennyflow/internal/categorize"
	"github.com/dkruglov/pennyflow/internal/ingest"
)

// CategorizeHandler exposes the categorization engine directly, so clients
// can preview categories without importing anything.
type CategorizeHandler struct {
	engine     *categorize.Engine
	categories ingest.CategoryRepository
	log        zerolog.Logger
}

// NewCategorizeHandler creates a new categorize handler.
func NewCategorizeHandler(engine *categorize.Engine, categories ingest.CategoryRepository, log zerolog.Logger) *CategorizeHandler {
	return &CategorizeHandler{
		engine:     engine,
		categories: categories,
		log:        log,
	}
}

// CategorizeBatch handles POST /api/categorize
func (h *CategorizeHandler) CategorizeBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		UserID       string             `json:"user_id"`
		Transactions []categorize.Input `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "transactions is required")
		return
	}

	categories, err := h.categories.ListCategories(ctx, req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	results := h.engine.CategorizeBatch(ctx, req.Transactions, categories, req.UserID)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
