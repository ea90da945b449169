// Package ingest runs the end-to-end CSV import pipeline: parse, duplicate
// detection, categorization, persistence. Every batch is tracked as an
// ImportRun so partial failures stay visible.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkruglov/pennyflow/internal/categorize"
	"github.com/dkruglov/pennyflow/internal/csvparse"
	"github.com/dkruglov/pennyflow/internal/dedupe"
	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/logger"
)

// Service orchestrates one import batch at a time. Safe for concurrent use;
// all state lives in the repositories.
type Service struct {
	transactions TransactionRepository
	runs         ImportRunRepository
	categories   CategoryRepository
	detector     *dedupe.Detector
	engine       *categorize.Engine
}

// NewService wires the pipeline. The duplicate detector reads through the
// same transaction repository records are written to.
func NewService(transactions TransactionRepository, runs ImportRunRepository, categories CategoryRepository, engine *categorize.Engine) *Service {
	return &Service{
		transactions: transactions,
		runs:         runs,
		categories:   categories,
		detector:     dedupe.NewDetector(transactions),
		engine:       engine,
	}
}

// Options control one import batch.
type Options struct {
	UserID         string
	Filename       string
	SkipDuplicates bool
}

// Result is everything a caller needs to report an import back to the user:
// the run record, per-row parse errors, and the duplicates that were found
// (which are reported, never silently dropped).
type Result struct {
	Run        *domain.ImportRun        `json:"run"`
	Parse      domain.ParseResult       `json:"parse"`
	Duplicates []dedupe.Match           `json:"duplicates"`
	Imported   []domain.TransactionRecord `json:"imported"`
}

// ImportCSV runs the full pipeline over raw CSV content. Row-level parse
// errors do not fail the run; only store failures mark it FAILED.
func (s *Service) ImportCSV(ctx context.Context, content []byte, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)
	if opts.UserID == "" {
		return nil, fmt.Errorf("ImportCSV: user id is required")
	}

	run := &domain.ImportRun{
		ID:        uuid.New().String(),
		UserID:    opts.UserID,
		Filename:  opts.Filename,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.InsertImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("ImportCSV: creating import run: %w", err)
	}

	log.Info().
		Str("run_id", run.ID).
		Str("user_id", opts.UserID).
		Str("filename", opts.Filename).
		Msg("Starting CSV import")

	parse := csvparse.Parse(ctx, content, opts.Filename)
	run.DetectedFormat = parse.DetectedFormat
	run.TotalRows = parse.TotalRows
	run.ErrorCount = parse.ErrorCount

	dup, err := s.detector.FindDuplicates(ctx, parse.Transactions, opts.UserID)
	if err != nil {
		s.markRunFailed(ctx, run, err)
		return nil, fmt.Errorf("ImportCSV: duplicate detection: %w", err)
	}
	run.DuplicateCount = len(dup.Matches)

	kept := dedupe.Filter(parse.Transactions, dup.Hashes, opts.SkipDuplicates)

	categories, err := s.categories.ListCategories(ctx, opts.UserID)
	if err != nil {
		s.markRunFailed(ctx, run, err)
		return nil, fmt.Errorf("ImportCSV: loading categories: %w", err)
	}

	inputs := make([]categorize.Input, len(kept))
	for i, tx := range kept {
		inputs[i] = categorize.Input{Merchant: tx.Merchant, Description: tx.Description}
	}
	categorized := s.engine.CategorizeBatch(ctx, inputs, categories, opts.UserID)

	now := time.Now().UTC()
	records := make([]domain.TransactionRecord, len(kept))
	for i, tx := range kept {
		records[i] = domain.TransactionRecord{
			ID:          uuid.New().String(),
			UserID:      opts.UserID,
			ImportRunID: run.ID,
			Date:        tx.Date,
			AmountCents: tx.AmountCents,
			Merchant:    tx.Merchant,
			Description: tx.Description,
			Type:        tx.Type,
			CategoryID:  categorized[i].Result.CategoryID,
			IsDuplicate: tx.IsDuplicate,
			CreatedAt:   now,
		}
	}

	if err := s.transactions.InsertTransactions(ctx, records); err != nil {
		s.markRunFailed(ctx, run, err)
		return nil, fmt.Errorf("ImportCSV: inserting transactions: %w", err)
	}

	run.ImportedCount = len(records)
	run.Status = domain.RunStatusSuccess
	run.FinishedAt = time.Now().UTC()
	if err := s.runs.UpdateImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("ImportCSV: finalizing import run: %w", err)
	}

	log.Info().
		Str("run_id", run.ID).
		Str("format", run.DetectedFormat).
		Int("imported", run.ImportedCount).
		Int("duplicates", run.DuplicateCount).
		Int("errors", run.ErrorCount).
		Msg("CSV import finished")

	return &Result{
		Run:        run,
		Parse:      parse,
		Duplicates: dup.Matches,
		Imported:   records,
	}, nil
}

// GetRun returns the persisted state of one import run.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	return s.runs.GetImportRun(ctx, runID)
}

// markRunFailed records the failure on the run. Best effort: a second store
// failure here is logged and swallowed so the original error surfaces.
func (s *Service) markRunFailed(ctx context.Context, run *domain.ImportRun, cause error) {
	run.Status = domain.RunStatusFailed
	run.ErrorMessage = cause.Error()
	run.FinishedAt = time.Now().UTC()
	if err := s.runs.UpdateImportRun(ctx, run); err != nil {
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("run_id", run.ID).
			Msg("Failed to record import run failure")
	}
}
