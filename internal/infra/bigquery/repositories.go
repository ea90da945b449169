package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/learning"
)

// Repository is the BigQuery-backed implementation of every persistence
// interface the service needs. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type Repository struct {
	client *bigquery.Client
}

// NewRepository creates a Repository with a shared BigQuery client.
func NewRepository(ctx context.Context) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransactions delegates to InsertTransactionsWithClient with the shared client.
func (r *Repository) InsertTransactions(ctx context.Context, records []domain.TransactionRecord) error {
	return InsertTransactionsWithClient(ctx, r.client, records)
}

// ListTransactionsByDateRange delegates to ListTransactionsByDateRangeWithClient with the shared client.
func (r *Repository) ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	return ListTransactionsByDateRangeWithClient(ctx, r.client, userID, startDate, endDate)
}

// GetTransaction delegates to GetTransactionWithClient with the shared client.
func (r *Repository) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error) {
	return GetTransactionWithClient(ctx, r.client, userID, transactionID)
}

// UpdateTransactionCategory delegates to UpdateTransactionCategoryWithClient with the shared client.
func (r *Repository) UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error {
	return UpdateTransactionCategoryWithClient(ctx, r.client, userID, transactionID, categoryID)
}

// ListCategories delegates to ListCategoriesWithClient with the shared client.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return ListCategoriesWithClient(ctx, r.client, userID)
}

// InsertImportRun delegates to InsertImportRunWithClient with the shared client.
func (r *Repository) InsertImportRun(ctx context.Context, run *domain.ImportRun) error {
	return InsertImportRunWithClient(ctx, r.client, run)
}

// UpdateImportRun delegates to UpdateImportRunWithClient with the shared client.
func (r *Repository) UpdateImportRun(ctx context.Context, run *domain.ImportRun) error {
	return UpdateImportRunWithClient(ctx, r.client, run)
}

// GetImportRun delegates to GetImportRunWithClient with the shared client.
func (r *Repository) GetImportRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	return GetImportRunWithClient(ctx, r.client, runID)
}

// ListRulesByUser delegates to ListRulesByUserWithClient with the shared client.
func (r *Repository) ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	return ListRulesByUserWithClient(ctx, r.client, userID)
}

// FindRuleByPattern delegates to FindRuleByPatternWithClient with the shared client.
func (r *Repository) FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error) {
	return FindRuleByPatternWithClient(ctx, r.client, userID, pattern)
}

// FindRuleByPatternAndCategory delegates to FindRuleByPatternAndCategoryWithClient with the shared client.
func (r *Repository) FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	return FindRuleByPatternAndCategoryWithClient(ctx, r.client, userID, pattern, categoryID)
}

// InsertRule delegates to InsertRuleWithClient with the shared client.
func (r *Repository) InsertRule(ctx context.Context, rule *domain.LearnedRule) error {
	return InsertRuleWithClient(ctx, r.client, rule)
}

// UpdateRule delegates to UpdateRuleWithClient with the shared client.
func (r *Repository) UpdateRule(ctx context.Context, rule *domain.LearnedRule) error {
	return UpdateRuleWithClient(ctx, r.client, rule)
}

// DeleteRule delegates to DeleteRuleWithClient with the shared client.
func (r *Repository) DeleteRule(ctx context.Context, ruleID string) error {
	return DeleteRuleWithClient(ctx, r.client, ruleID)
}

// Ensure Repository implements the persistence interfaces.
var _ ingest.TransactionRepository = (*Repository)(nil)
var _ ingest.ImportRunRepository = (*Repository)(nil)
var _ ingest.CategoryRepository = (*Repository)(nil)
var _ learning.RuleRepository = (*Repository)(nil)
