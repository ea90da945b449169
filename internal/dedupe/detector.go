package dedupe

import (
	"context"
	"fmt"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/logger"
)

// TransactionReader is the slice of the transaction repository the detector
// needs: the user's existing transactions within an inclusive date range.
type TransactionReader interface {
	ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error)
}

// Match pairs an incoming transaction with the persisted record it collides
// with. Two distinct incoming transactions sharing a hash both match the same
// existing record.
type Match struct {
	Transaction domain.ParsedTransaction `json:"transaction"`
	ExistingID  string                   `json:"existing_id"`
	Hash        string                   `json:"hash"`
}

// Result is the outcome of cross-referencing a batch against the store.
type Result struct {
	Matches []Match
	Hashes  map[string]bool // every colliding hash
}

// Detector cross-references incoming batches against persisted transactions.
type Detector struct {
	repo TransactionReader
}

// NewDetector creates a detector backed by the given repository.
func NewDetector(repo TransactionReader) *Detector {
	return &Detector{repo: repo}
}

// FindDuplicates hashes the incoming batch, loads the user's existing
// transactions spanning the batch's date range, and returns every collision.
// An empty batch short-circuits without touching the store.
func (d *Detector) FindDuplicates(ctx context.Context, txs []domain.ParsedTransaction, userID string) (*Result, error) {
	result := &Result{Hashes: make(map[string]bool)}
	if len(txs) == 0 {
		return result, nil
	}

	minDate, maxDate := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date < minDate {
			minDate = tx.Date
		}
		if tx.Date > maxDate {
			maxDate = tx.Date
		}
	}

	existing, err := d.repo.ListTransactionsByDateRange(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("FindDuplicates: listing existing transactions: %w", err)
	}

	existingByHash := make(map[string]string, len(existing))
	for _, rec := range existing {
		h := HashRecord(rec)
		if _, ok := existingByHash[h]; !ok {
			existingByHash[h] = rec.ID
		}
	}

	for _, tx := range txs {
		h := Hash(tx)
		existingID, ok := existingByHash[h]
		if !ok {
			continue
		}
		result.Matches = append(result.Matches, Match{
			Transaction: tx,
			ExistingID:  existingID,
			Hash:        h,
		})
		result.Hashes[h] = true
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("user_id", userID).
		Int("incoming", len(txs)).
		Int("existing", len(existing)).
		Int("duplicates", len(result.Matches)).
		Msg("Duplicate detection finished")

	return result, nil
}
