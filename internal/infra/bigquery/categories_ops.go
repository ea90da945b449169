package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dkruglov/pennyflow/internal/domain"
)

// ListCategories returns a user's active categories ordered by name.
func ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: bigquery client: %w", err)
	}
	defer client.Close()

	return ListCategoriesWithClient(ctx, client, userID)
}

// ListCategoriesWithClient returns a user's active categories ordered by name
// using the provided BigQuery client.
func ListCategoriesWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]domain.Category, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  category_id,
		  user_id,
		  category_name,
		  is_active
		FROM %s.%s
		WHERE user_id = @user_id
		  AND (is_active IS NULL OR is_active = TRUE)
		ORDER BY category_name
	`, datasetID, categoriesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	var categories []domain.Category
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		categories = append(categories, domain.Category{ID: r.CategoryID, Name: r.CategoryName})
	}

	return categories, nil
}
