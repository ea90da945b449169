package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/learning"
)

const dateFormat = "2006-01-02"

// Repository is the PostgreSQL-backed implementation of every persistence
// interface the service needs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an existing connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// InsertTransactions inserts a batch of transaction records in one
// transaction so a failed batch leaves nothing behind.
func (r *Repository) InsertTransactions(ctx context.Context, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("InsertTransactions: beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO transactions (id, user_id, import_run_id, transaction_date, amount_cents, type, merchant, description, category_id, is_duplicate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for i := range records {
		rec := &records[i]
		date, err := time.Parse(dateFormat, rec.Date)
		if err != nil {
			return fmt.Errorf("InsertTransactions: parsing date %q: %w", rec.Date, err)
		}
		var categoryID *string
		if rec.CategoryID != "" {
			categoryID = &rec.CategoryID
		}
		if _, err := tx.Exec(ctx, query,
			rec.ID, rec.UserID, rec.ImportRunID, date, rec.AmountCents,
			string(rec.Type), rec.Merchant, rec.Description, categoryID,
			rec.IsDuplicate, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("InsertTransactions: inserting row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("InsertTransactions: committing: %w", err)
	}
	return nil
}

// ListTransactionsByDateRange returns a user's transactions within the
// specified ISO date range, inclusive on both ends.
func (r *Repository) ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	query := `
		SELECT id, user_id, import_run_id, transaction_date, amount_cents, type, merchant, description, category_id, is_duplicate, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
		ORDER BY transaction_date, created_at
	`
	rows, err := r.pool.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: query: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetTransaction returns one transaction owned by the user, or nil.
func (r *Repository) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error) {
	query := `
		SELECT id, user_id, import_run_id, transaction_date, amount_cents, type, merchant, description, category_id, is_duplicate, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND id = $2
	`
	rows, err := r.pool.Query(ctx, query, userID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("GetTransaction: %w", err)
		}
		return nil, nil
	}
	rec, err := scanTransaction(rows)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return &rec, nil
}

// UpdateTransactionCategory sets the category of one transaction.
func (r *Repository) UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error {
	query := `
		UPDATE transactions
		SET category_id = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = $3
	`
	cmd, err := r.pool.Exec(ctx, query, categoryID, userID, transactionID)
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: exec: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("UpdateTransactionCategory: transaction not found: %s", transactionID)
	}
	return nil
}

// ListCategories returns a user's active categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	query := `
		SELECT id, name
		FROM categories
		WHERE user_id = $1 AND is_active
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("ListCategories: scanning row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// InsertImportRun inserts a new import run record.
func (r *Repository) InsertImportRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (id, user_id, filename, detected_format, total_rows, imported_count, duplicate_count, error_count, status, error_message, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID, run.UserID, run.Filename, run.DetectedFormat,
		run.TotalRows, run.ImportedCount, run.DuplicateCount, run.ErrorCount,
		string(run.Status), run.ErrorMessage, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertImportRun: exec: %w", err)
	}
	return nil
}

// UpdateImportRun updates the mutable fields of an import run.
func (r *Repository) UpdateImportRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		UPDATE import_runs
		SET detected_format = $1, total_rows = $2, imported_count = $3, duplicate_count = $4,
		    error_count = $5, status = $6, error_message = $7, finished_at = $8
		WHERE id = $9
	`
	var finished *time.Time
	if !run.FinishedAt.IsZero() {
		finished = &run.FinishedAt
	}
	cmd, err := r.pool.Exec(ctx, query,
		run.DetectedFormat, run.TotalRows, run.ImportedCount, run.DuplicateCount,
		run.ErrorCount, string(run.Status), run.ErrorMessage, finished, run.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateImportRun: exec: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("UpdateImportRun: run not found: %s", run.ID)
	}
	return nil
}

// GetImportRun retrieves an import run by ID.
func (r *Repository) GetImportRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	query := `
		SELECT id, user_id, filename, detected_format, total_rows, imported_count, duplicate_count, error_count, status, error_message, started_at, finished_at
		FROM import_runs
		WHERE id = $1
	`
	var (
		run      domain.ImportRun
		status   string
		finished *time.Time
	)
	err := r.pool.QueryRow(ctx, query, runID).Scan(
		&run.ID, &run.UserID, &run.Filename, &run.DetectedFormat,
		&run.TotalRows, &run.ImportedCount, &run.DuplicateCount, &run.ErrorCount,
		&status, &run.ErrorMessage, &run.StartedAt, &finished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetImportRun: run not found: %s", runID)
		}
		return nil, fmt.Errorf("GetImportRun: scanning row: %w", err)
	}
	run.Status = domain.ImportRunStatus(status)
	if finished != nil {
		run.FinishedAt = *finished
	}
	return &run, nil
}

// ListRulesByUser returns all of a user's learned rules ordered by confidence
// descending, then most recently updated first.
func (r *Repository) ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	query := `
		SELECT id, user_id, merchant_pattern, category_id, confidence, created_at, updated_at
		FROM learned_rules
		WHERE user_id = $1
		ORDER BY confidence DESC, COALESCE(updated_at, created_at) DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListRulesByUser: query: %w", err)
	}
	defer rows.Close()

	var rules []domain.LearnedRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRulesByUser: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// FindRuleByPattern returns the user's most recently updated rule for an
// exact normalized pattern regardless of category, or nil.
func (r *Repository) FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error) {
	query := `
		SELECT id, user_id, merchant_pattern, category_id, confidence, created_at, updated_at
		FROM learned_rules
		WHERE user_id = $1 AND merchant_pattern = $2
		ORDER BY COALESCE(updated_at, created_at) DESC
		LIMIT 1
	`
	return r.findRule(ctx, query, userID, pattern)
}

// FindRuleByPatternAndCategory returns the rule for the exact
// (user, pattern, category) triple, or nil.
func (r *Repository) FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	query := `
		SELECT id, user_id, merchant_pattern, category_id, confidence, created_at, updated_at
		FROM learned_rules
		WHERE user_id = $1 AND merchant_pattern = $2 AND category_id = $3
		LIMIT 1
	`
	return r.findRule(ctx, query, userID, pattern, categoryID)
}

// InsertRule inserts a new learned rule.
func (r *Repository) InsertRule(ctx context.Context, rule *domain.LearnedRule) error {
	query := `
		INSERT INTO learned_rules (id, user_id, merchant_pattern, category_id, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		rule.ID, rule.UserID, rule.MerchantPattern, rule.CategoryID, rule.Confidence, rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertRule: exec: %w", err)
	}
	return nil
}

// UpdateRule updates the category, confidence and updated timestamp of an
// existing learned rule.
func (r *Repository) UpdateRule(ctx context.Context, rule *domain.LearnedRule) error {
	query := `
		UPDATE learned_rules
		SET category_id = $1, confidence = $2, updated_at = NOW()
		WHERE id = $3
	`
	cmd, err := r.pool.Exec(ctx, query, rule.CategoryID, rule.Confidence, rule.ID)
	if err != nil {
		return fmt.Errorf("UpdateRule: exec: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("UpdateRule: rule not found: %s", rule.ID)
	}
	return nil
}

// DeleteRule removes a learned rule by ID.
func (r *Repository) DeleteRule(ctx context.Context, ruleID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM learned_rules WHERE id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("DeleteRule: exec: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("DeleteRule: rule not found: %s", ruleID)
	}
	return nil
}

func (r *Repository) findRule(ctx context.Context, query string, args ...any) (*domain.LearnedRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("findRule: query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("findRule: %w", err)
		}
		return nil, nil
	}
	rule, err := scanRule(rows)
	if err != nil {
		return nil, fmt.Errorf("findRule: %w", err)
	}
	return &rule, nil
}

func scanTransaction(rows pgx.Rows) (domain.TransactionRecord, error) {
	var (
		rec        domain.TransactionRecord
		date       time.Time
		txType     string
		categoryID *string
		updatedAt  *time.Time
	)
	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.ImportRunID, &date, &rec.AmountCents,
		&txType, &rec.Merchant, &rec.Description, &categoryID,
		&rec.IsDuplicate, &rec.CreatedAt, &updatedAt,
	)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("scanning transaction: %w", err)
	}
	rec.Date = date.Format(dateFormat)
	rec.Type = domain.TransactionType(txType)
	if categoryID != nil {
		rec.CategoryID = *categoryID
	}
	if updatedAt != nil {
		rec.UpdatedAt = *updatedAt
	}
	return rec, nil
}

func scanRule(rows pgx.Rows) (domain.LearnedRule, error) {
	var (
		rule      domain.LearnedRule
		updatedAt *time.Time
	)
	err := rows.Scan(
		&rule.ID, &rule.UserID, &rule.MerchantPattern, &rule.CategoryID,
		&rule.Confidence, &rule.CreatedAt, &updatedAt,
	)
	if err != nil {
		return domain.LearnedRule{}, fmt.Errorf("scanning rule: %w", err)
	}
	if updatedAt != nil {
		rule.UpdatedAt = *updatedAt
	}
	return rule, nil
}

// Ensure Repository implements the persistence interfaces.
var _ ingest.TransactionRepository = (*Repository)(nil)
var _ ingest.ImportRunRepository = (*Repository)(nil)
var _ ingest.CategoryRepository = (*Repository)(nil)
var _ learning.RuleRepository = (*Repository)(nil)
