package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/middleware"
	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/learning"
)

// TransactionStore is the transaction persistence surface the handlers need.
// Both storage backends implement it.
type TransactionStore interface {
	ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error)
	UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error
}

// TransactionsHandler handles transaction endpoints. Category edits feed the
// learning store so future imports categorize the same merchant correctly.
type TransactionsHandler struct {
	store   TransactionStore
	learner *learning.Store
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, learner *learning.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store:   store,
		learner: learner,
		log:     log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" || endDate == "" {
		middleware.WriteError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	records, err := h.store.ListTransactionsByDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": records,
		"count":        len(records),
	})
}

// UpdateCategory handles PUT /api/transactions/{transaction_id}/category
func (h *TransactionsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()

	var req struct {
		UserID     string `json:"user_id"`
		CategoryID string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.CategoryID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id and category_id are required")
		return
	}

	tx, err := h.store.GetTransaction(ctx, req.UserID, transactionID)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to fetch transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch transaction")
		return
	}
	if tx == nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if err := h.store.UpdateTransactionCategory(ctx, req.UserID, transactionID, req.CategoryID); err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	// Learning is best-effort: a failed rule write never fails the edit.
	correction := learning.Correction{Merchant: tx.Merchant, Description: tx.Description}
	if err := h.learner.LearnFromCorrection(ctx, req.UserID, correction, req.CategoryID); err != nil {
		h.log.Warn().Err(err).
			Str("transaction_id", transactionID).
			Msg("Failed to learn from correction")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"transaction_id": transactionID,
		"category_id":    req.CategoryID,
		"status":         "updated",
	})
}

// bulkUpdate is one entry of a recategorize request.
type bulkUpdate struct {
	TransactionID string `json:"transaction_id"`
	CategoryID    string `json:"category_id"`
}

// bulkResult reports the outcome for one entry of a recategorize request.
type bulkResult struct {
	TransactionID string `json:"transaction_id"`
	CategoryID    string `json:"category_id"`
	Updated       bool   `json:"updated"`
	Error         string `json:"error,omitempty"`
}

// BulkRecategorize handles POST /api/transactions/recategorize
// Updates are applied sequentially; learning runs concurrently afterwards
// and failures there are logged, never surfaced.
func (h *TransactionsHandler) BulkRecategorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		UserID  string       `json:"user_id"`
		Updates []bulkUpdate `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Updates) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "updates is required")
		return
	}

	results := make([]bulkResult, len(req.Updates))
	var corrections []struct {
		correction learning.Correction
		categoryID string
	}

	for i, u := range req.Updates {
		results[i] = bulkResult{TransactionID: u.TransactionID, CategoryID: u.CategoryID}

		if u.TransactionID == "" || u.CategoryID == "" {
			results[i].Error = "transaction_id and category_id are required"
			continue
		}

		tx, err := h.store.GetTransaction(ctx, req.UserID, u.TransactionID)
		if err != nil {
			results[i].Error = "failed to fetch transaction"
			continue
		}
		if tx == nil {
			results[i].Error = "transaction not found"
			continue
		}

		if err := h.store.UpdateTransactionCategory(ctx, req.UserID, u.TransactionID, u.CategoryID); err != nil {
			h.log.Error().Err(err).Str("transaction_id", u.TransactionID).Msg("Failed to update category")
			results[i].Error = "failed to update category"
			continue
		}

		results[i].Updated = true
		corrections = append(corrections, struct {
			correction learning.Correction
			categoryID string
		}{
			correction: learning.Correction{Merchant: tx.Merchant, Description: tx.Description},
			categoryID: u.CategoryID,
		})
	}

	var wg sync.WaitGroup
	for _, c := range corrections {
		wg.Add(1)
		go func(correction learning.Correction, categoryID string) {
			defer wg.Done()
			if err := h.learner.LearnFromCorrection(ctx, req.UserID, correction, categoryID); err != nil {
				h.log.Warn().Err(err).
					Str("user_id", req.UserID).
					Msg("Failed to learn from bulk correction")
			}
		}(c.correction, c.categoryID)
	}
	wg.Wait()

	updated := 0
	for _, res := range results {
		if res.Updated {
			updated++
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"updated": updated,
		"total":   len(results),
	})
}
