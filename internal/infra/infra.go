// Package infra selects and constructs the persistence backend.
package infra

import (
	"context"
	"fmt"

	"github.com/dkruglov/pennyflow/internal/config"
	"github.com/dkruglov/pennyflow/internal/domain"
	infraBQ "github.com/dkruglov/pennyflow/internal/infra/bigquery"
	infraPG "github.com/dkruglov/pennyflow/internal/infra/postgres"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/learning"
)

// Store is the full persistence surface, implemented by both backends.
type Store interface {
	ingest.TransactionRepository
	ingest.ImportRunRepository
	ingest.CategoryRepository
	learning.RuleRepository

	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error)
	UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error

	Close() error
}

// NewStore constructs the backend named by the configuration.
func NewStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendBigQuery:
		infraBQ.Configure(cfg.GCPProject, cfg.BQDataset)
		repo, err := infraBQ.NewRepository(ctx)
		if err != nil {
			return nil, fmt.Errorf("NewStore: bigquery backend: %w", err)
		}
		return repo, nil
	case config.BackendPostgres:
		pool, err := infraPG.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("NewStore: postgres backend: %w", err)
		}
		return infraPG.NewRepository(pool), nil
	default:
		return nil, fmt.Errorf("NewStore: unknown backend %q", cfg.StoreBackend)
	}
}
