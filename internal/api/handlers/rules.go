package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/middleware"
	"github.com/dkruglov/pennyflow/internal/learning"
)

// RulesHandler handles learned rule endpoints.
type RulesHandler struct {
	learner *learning.Store
	log     zerolog.Logger
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(learner *learning.Store, log zerolog.Logger) *RulesHandler {
	return &RulesHandler{
		learner: learner,
		log:     log,
	}
}

// ListRules handles GET /api/rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rules, err := h.learner.ListRules(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list rules")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list rules")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// DeleteRule handles DELETE /api/rules/{rule_id}
func (h *RulesHandler) DeleteRule(w http.ResponseWriter, r *http.Request, ruleID string) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.learner.DeleteRule(r.Context(), req.UserID, ruleID); err != nil {
		h.log.Error().Err(err).Str("rule_id", ruleID).Msg("Failed to delete rule")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete rule")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"rule_id": ruleID,
		"status":  "deleted",
	})
}
