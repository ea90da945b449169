package ingest

import (
	"context"

	"github.com/dkruglov/pennyflow/internal/domain"
)

// TransactionRepository is the transaction persistence surface the pipeline
// needs. Implemented by the bigquery and postgres backends.
type TransactionRepository interface {
	InsertTransactions(ctx context.Context, records []domain.TransactionRecord) error
	ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error)
}

// ImportRunRepository persists the lifecycle of batch imports.
type ImportRunRepository interface {
	InsertImportRun(ctx context.Context, run *domain.ImportRun) error
	UpdateImportRun(ctx context.Context, run *domain.ImportRun) error
	GetImportRun(ctx context.Context, runID string) (*domain.ImportRun, error)
}

// CategoryRepository reads a user's category catalog. The categorization
// engine never fetches categories itself; the pipeline loads them once per
// batch and hands them over.
type CategoryRepository interface {
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
}
