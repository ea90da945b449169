package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dkruglov/pennyflow/internal/domain"
)

// InsertImportRun inserts a new import run record.
func InsertImportRun(ctx context.Context, run *domain.ImportRun) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertImportRun: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertImportRunWithClient(ctx, client, run)
}

// InsertImportRunWithClient inserts a new import run record using the
// provided BigQuery client.
func InsertImportRunWithClient(ctx context.Context, client *bigquery.Client, run *domain.ImportRun) error {
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			import_run_id,
			user_id,
			filename,
			detected_format,
			total_rows,
			imported_count,
			duplicate_count,
			error_count,
			status,
			error_message,
			started_ts
		)
		VALUES (
			@import_run_id,
			@user_id,
			@filename,
			@detected_format,
			@total_rows,
			@imported_count,
			@duplicate_count,
			@error_count,
			@status,
			@error_message,
			@started_ts
		)
	`, datasetID, importRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "import_run_id", Value: run.ID},
		{Name: "user_id", Value: run.UserID},
		{Name: "filename", Value: run.Filename},
		{Name: "detected_format", Value: run.DetectedFormat},
		{Name: "total_rows", Value: int64(run.TotalRows)},
		{Name: "imported_count", Value: int64(run.ImportedCount)},
		{Name: "duplicate_count", Value: int64(run.DuplicateCount)},
		{Name: "error_count", Value: int64(run.ErrorCount)},
		{Name: "status", Value: string(run.Status)},
		{Name: "error_message", Value: run.ErrorMessage},
		{Name: "started_ts", Value: started},
	}

	return runDML(ctx, q, "InsertImportRun")
}

// UpdateImportRun updates the mutable fields of an import run.
func UpdateImportRun(ctx context.Context, run *domain.ImportRun) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("UpdateImportRun: bigquery client: %w", err)
	}
	defer client.Close()

	return UpdateImportRunWithClient(ctx, client, run)
}

// UpdateImportRunWithClient updates the mutable fields of an import run
// using the provided BigQuery client.
func UpdateImportRunWithClient(ctx context.Context, client *bigquery.Client, run *domain.ImportRun) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET detected_format = @detected_format,
		    total_rows = @total_rows,
		    imported_count = @imported_count,
		    duplicate_count = @duplicate_count,
		    error_count = @error_count,
		    status = @status,
		    error_message = @error_message,
		    finished_ts = @finished_ts
		WHERE import_run_id = @import_run_id
	`, datasetID, importRunsTable))

	var finished interface{}
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt
	} else {
		finished = bigquery.NullTimestamp{}
	}

	q.Parameters = []bigquery.QueryParameter{
		{Name: "detected_format", Value: run.DetectedFormat},
		{Name: "total_rows", Value: int64(run.TotalRows)},
		{Name: "imported_count", Value: int64(run.ImportedCount)},
		{Name: "duplicate_count", Value: int64(run.DuplicateCount)},
		{Name: "error_count", Value: int64(run.ErrorCount)},
		{Name: "status", Value: string(run.Status)},
		{Name: "error_message", Value: run.ErrorMessage},
		{Name: "finished_ts", Value: finished},
		{Name: "import_run_id", Value: run.ID},
	}

	return runDML(ctx, q, "UpdateImportRun")
}

// GetImportRun retrieves an import run by ID.
func GetImportRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("GetImportRun: bigquery client: %w", err)
	}
	defer client.Close()

	return GetImportRunWithClient(ctx, client, runID)
}

// GetImportRunWithClient retrieves an import run by ID using the provided
// BigQuery client.
func GetImportRunWithClient(ctx context.Context, client *bigquery.Client, runID string) (*domain.ImportRun, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			import_run_id,
			user_id,
			filename,
			detected_format,
			total_rows,
			imported_count,
			duplicate_count,
			error_count,
			status,
			error_message,
			started_ts,
			finished_ts
		FROM %s.%s
		WHERE import_run_id = @import_run_id
		LIMIT 1
	`, datasetID, importRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "import_run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetImportRun: query read: %w", err)
	}

	var r ImportRunRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, fmt.Errorf("GetImportRun: run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("GetImportRun: iter next: %w", err)
	}

	run := r.toRun()
	return &run, nil
}
