package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dkruglov/pennyflow/internal/domain"
)

// InsertTransactions inserts a batch of transaction records.
func InsertTransactions(ctx context.Context, records []domain.TransactionRecord) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertTransactions: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertTransactionsWithClient(ctx, client, records)
}

// InsertTransactionsWithClient inserts a batch of transaction records using
// the provided BigQuery client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*TransactionRow, len(records))
	for i := range records {
		row, err := transactionRowFromRecord(&records[i])
		if err != nil {
			return fmt.Errorf("InsertTransactions: %w", err)
		}
		rows[i] = row
	}

	// Use fully qualified table name to avoid project ID issues
	table := client.DatasetInProject(projectID, datasetID).Table(transactionsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// ListTransactionsByDateRange queries a user's transactions within the
// specified ISO date range, inclusive on both ends.
func ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: bigquery client: %w", err)
	}
	defer client.Close()

	return ListTransactionsByDateRangeWithClient(ctx, client, userID, startDate, endDate)
}

// ListTransactionsByDateRangeWithClient queries a user's transactions within
// the specified ISO date range using the provided BigQuery client.
func ListTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			import_run_id,
			transaction_date,
			amount_cents,
			type,
			merchant,
			description,
			category_id,
			is_duplicate,
			created_ts,
			updated_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, created_ts
	`, datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: startDate},
		{Name: "end_date", Value: endDate},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: query read: %w", err)
	}

	var records []domain.TransactionRecord
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: iter next: %w", err)
		}
		records = append(records, r.toRecord())
	}

	return records, nil
}

// GetTransaction retrieves a single transaction owned by the user.
func GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: bigquery client: %w", err)
	}
	defer client.Close()

	return GetTransactionWithClient(ctx, client, userID, transactionID)
}

// GetTransactionWithClient retrieves a single transaction owned by the user
// using the provided BigQuery client. Returns nil when no row matches.
func GetTransactionWithClient(ctx context.Context, client *bigquery.Client, userID, transactionID string) (*domain.TransactionRecord, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			import_run_id,
			transaction_date,
			amount_cents,
			type,
			merchant,
			description,
			category_id,
			is_duplicate,
			created_ts,
			updated_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND transaction_id = @transaction_id
		LIMIT 1
	`, datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: query read: %w", err)
	}

	var r TransactionRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: iter next: %w", err)
	}

	rec := r.toRecord()
	return &rec, nil
}

// UpdateTransactionCategory sets the category of one transaction.
func UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: bigquery client: %w", err)
	}
	defer client.Close()

	return UpdateTransactionCategoryWithClient(ctx, client, userID, transactionID, categoryID)
}

// UpdateTransactionCategoryWithClient sets the category of one transaction
// using the provided BigQuery client.
func UpdateTransactionCategoryWithClient(ctx context.Context, client *bigquery.Client, userID, transactionID, categoryID string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET category_id = @category_id,
		    updated_ts = @updated_ts
		WHERE user_id = @user_id
		  AND transaction_id = @transaction_id
	`, datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: categoryID},
		{Name: "updated_ts", Value: time.Now()},
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("UpdateTransactionCategory: job error: %w", err)
	}

	return nil
}
