// Package bigquery is the BigQuery persistence backend. Each operation comes
// in two forms: a standalone function that creates its own client, and a
// WithClient variant for callers that hold a shared client.
package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dkruglov/pennyflow/internal/domain"
)

var (
	projectID = "pennyflow-dev"
	datasetID = "pennyflow"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"
	learnedRulesTable = "learned_rules"
	importRunsTable   = "import_runs"

	dateFormat = "2006-01-02"
)

// Configure overrides the default project and dataset. Call once at startup,
// before any repository is constructed.
func Configure(project, dataset string) {
	if project != "" {
		projectID = project
	}
	if dataset != "" {
		datasetID = dataset
	}
}

// TransactionRow represents a transaction record in BigQuery.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID      string `bigquery:"user_id"`       // REQUIRED
	ImportRunID string `bigquery:"import_run_id"` // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	AmountCents int64  `bigquery:"amount_cents"` // REQUIRED
	Type        string `bigquery:"type"`         // REQUIRED debit|credit

	Merchant    string `bigquery:"merchant"`    // REQUIRED
	Description string `bigquery:"description"` // NULLABLE

	CategoryID bigquery.NullString `bigquery:"category_id"` // NULLABLE

	IsDuplicate bool `bigquery:"is_duplicate"`

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

// CategoryRow represents a category record in BigQuery.
type CategoryRow struct {
	CategoryID   string `bigquery:"category_id"`
	UserID       string `bigquery:"user_id"`
	CategoryName string `bigquery:"category_name"`

	IsActive bigquery.NullBool `bigquery:"is_active"`

	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"`
}

// LearnedRuleRow represents a learned categorization rule in BigQuery.
type LearnedRuleRow struct {
	RuleID          string `bigquery:"rule_id"`
	UserID          string `bigquery:"user_id"`
	MerchantPattern string `bigquery:"merchant_pattern"`
	CategoryID      string `bigquery:"category_id"`
	Confidence      int64  `bigquery:"confidence"`

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

// ImportRunRow represents an import run record in BigQuery.
type ImportRunRow struct {
	ImportRunID    string `bigquery:"import_run_id"`
	UserID         string `bigquery:"user_id"`
	Filename       string `bigquery:"filename"`
	DetectedFormat string `bigquery:"detected_format"`

	TotalRows      int64 `bigquery:"total_rows"`
	ImportedCount  int64 `bigquery:"imported_count"`
	DuplicateCount int64 `bigquery:"duplicate_count"`
	ErrorCount     int64 `bigquery:"error_count"`

	Status       string `bigquery:"status"`
	ErrorMessage string `bigquery:"error_message"`

	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`
}

func transactionRowFromRecord(rec *domain.TransactionRecord) (*TransactionRow, error) {
	date, err := civil.ParseDate(rec.Date)
	if err != nil {
		return nil, fmt.Errorf("transactionRowFromRecord: parsing date %q: %w", rec.Date, err)
	}

	row := &TransactionRow{
		TransactionID:   rec.ID,
		UserID:          rec.UserID,
		ImportRunID:     rec.ImportRunID,
		TransactionDate: date,
		AmountCents:     rec.AmountCents,
		Type:            string(rec.Type),
		Merchant:        rec.Merchant,
		Description:     rec.Description,
		IsDuplicate:     rec.IsDuplicate,
		CreatedTS:       rec.CreatedAt,
	}
	if rec.CategoryID != "" {
		row.CategoryID = bigquery.NullString{StringVal: rec.CategoryID, Valid: true}
	}
	if !rec.UpdatedAt.IsZero() {
		row.UpdatedTS = bigquery.NullTimestamp{Timestamp: rec.UpdatedAt, Valid: true}
	}
	return row, nil
}

func (r *TransactionRow) toRecord() domain.TransactionRecord {
	rec := domain.TransactionRecord{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		ImportRunID: r.ImportRunID,
		Date:        r.TransactionDate.String(),
		AmountCents: r.AmountCents,
		Merchant:    r.Merchant,
		Description: r.Description,
		Type:        domain.TransactionType(r.Type),
		IsDuplicate: r.IsDuplicate,
		CreatedAt:   r.CreatedTS,
	}
	if r.CategoryID.Valid {
		rec.CategoryID = r.CategoryID.StringVal
	}
	if r.UpdatedTS.Valid {
		rec.UpdatedAt = r.UpdatedTS.Timestamp
	}
	return rec
}

func (r *LearnedRuleRow) toRule() domain.LearnedRule {
	rule := domain.LearnedRule{
		ID:              r.RuleID,
		UserID:          r.UserID,
		MerchantPattern: r.MerchantPattern,
		CategoryID:      r.CategoryID,
		Confidence:      int(r.Confidence),
		CreatedAt:       r.CreatedTS,
	}
	if r.UpdatedTS.Valid {
		rule.UpdatedAt = r.UpdatedTS.Timestamp
	}
	return rule
}

func (r *ImportRunRow) toRun() domain.ImportRun {
	run := domain.ImportRun{
		ID:             r.ImportRunID,
		UserID:         r.UserID,
		Filename:       r.Filename,
		DetectedFormat: r.DetectedFormat,
		TotalRows:      int(r.TotalRows),
		ImportedCount:  int(r.ImportedCount),
		DuplicateCount: int(r.DuplicateCount),
		ErrorCount:     int(r.ErrorCount),
		Status:         domain.ImportRunStatus(r.Status),
		ErrorMessage:   r.ErrorMessage,
		StartedAt:      r.StartedTS,
	}
	if r.FinishedTS.Valid {
		run.FinishedAt = r.FinishedTS.Timestamp
	}
	return run
}
