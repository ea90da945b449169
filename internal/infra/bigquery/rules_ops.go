package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dkruglov/pennyflow/internal/domain"
)

const ruleColumns = `
	rule_id,
	user_id,
	merchant_pattern,
	category_id,
	confidence,
	created_ts,
	updated_ts`

// ListRulesByUser returns all of a user's learned rules ordered by confidence
// descending, then most recently updated first.
func ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListRulesByUser: bigquery client: %w", err)
	}
	defer client.Close()

	return ListRulesByUserWithClient(ctx, client, userID)
}

// ListRulesByUserWithClient returns all of a user's learned rules using the
// provided BigQuery client.
func ListRulesByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]domain.LearnedRule, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY confidence DESC, COALESCE(updated_ts, created_ts) DESC
	`, ruleColumns, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	return queryRules(ctx, q, "ListRulesByUser")
}

// FindRuleByPattern returns the user's most recently updated rule for an
// exact normalized pattern regardless of category, or nil.
func FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("FindRuleByPattern: bigquery client: %w", err)
	}
	defer client.Close()

	return FindRuleByPatternWithClient(ctx, client, userID, pattern)
}

// FindRuleByPatternWithClient returns the user's most recently updated rule
// for an exact normalized pattern using the provided BigQuery client.
func FindRuleByPatternWithClient(ctx context.Context, client *bigquery.Client, userID, pattern string) (*domain.LearnedRule, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE user_id = @user_id
		  AND merchant_pattern = @merchant_pattern
		ORDER BY COALESCE(updated_ts, created_ts) DESC
		LIMIT 1
	`, ruleColumns, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "merchant_pattern", Value: pattern},
	}

	rules, err := queryRules(ctx, q, "FindRuleByPattern")
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// FindRuleByPatternAndCategory returns the rule for the exact
// (user, pattern, category) triple, or nil.
func FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("FindRuleByPatternAndCategory: bigquery client: %w", err)
	}
	defer client.Close()

	return FindRuleByPatternAndCategoryWithClient(ctx, client, userID, pattern, categoryID)
}

// FindRuleByPatternAndCategoryWithClient returns the rule for the exact
// (user, pattern, category) triple using the provided BigQuery client.
func FindRuleByPatternAndCategoryWithClient(ctx context.Context, client *bigquery.Client, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s.%s
		WHERE user_id = @user_id
		  AND merchant_pattern = @merchant_pattern
		  AND category_id = @category_id
		LIMIT 1
	`, ruleColumns, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "merchant_pattern", Value: pattern},
		{Name: "category_id", Value: categoryID},
	}

	rules, err := queryRules(ctx, q, "FindRuleByPatternAndCategory")
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// InsertRule inserts a new learned rule.
func InsertRule(ctx context.Context, rule *domain.LearnedRule) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertRule: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertRuleWithClient(ctx, client, rule)
}

// InsertRuleWithClient inserts a new learned rule using the provided
// BigQuery client.
func InsertRuleWithClient(ctx context.Context, client *bigquery.Client, rule *domain.LearnedRule) error {
	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			rule_id,
			user_id,
			merchant_pattern,
			category_id,
			confidence,
			created_ts
		)
		VALUES (
			@rule_id,
			@user_id,
			@merchant_pattern,
			@category_id,
			@confidence,
			@created_ts
		)
	`, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "rule_id", Value: rule.ID},
		{Name: "user_id", Value: rule.UserID},
		{Name: "merchant_pattern", Value: rule.MerchantPattern},
		{Name: "category_id", Value: rule.CategoryID},
		{Name: "confidence", Value: int64(rule.Confidence)},
		{Name: "created_ts", Value: rule.CreatedAt},
	}

	return runDML(ctx, q, "InsertRule")
}

// UpdateRule updates the category, confidence and updated timestamp of an
// existing learned rule.
func UpdateRule(ctx context.Context, rule *domain.LearnedRule) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("UpdateRule: bigquery client: %w", err)
	}
	defer client.Close()

	return UpdateRuleWithClient(ctx, client, rule)
}

// UpdateRuleWithClient updates an existing learned rule using the provided
// BigQuery client.
func UpdateRuleWithClient(ctx context.Context, client *bigquery.Client, rule *domain.LearnedRule) error {
	updated := rule.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET category_id = @category_id,
		    confidence = @confidence,
		    updated_ts = @updated_ts
		WHERE rule_id = @rule_id
	`, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: rule.CategoryID},
		{Name: "confidence", Value: int64(rule.Confidence)},
		{Name: "updated_ts", Value: updated},
		{Name: "rule_id", Value: rule.ID},
	}

	return runDML(ctx, q, "UpdateRule")
}

// DeleteRule removes a learned rule by ID.
func DeleteRule(ctx context.Context, ruleID string) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("DeleteRule: bigquery client: %w", err)
	}
	defer client.Close()

	return DeleteRuleWithClient(ctx, client, ruleID)
}

// DeleteRuleWithClient removes a learned rule by ID using the provided
// BigQuery client.
func DeleteRuleWithClient(ctx context.Context, client *bigquery.Client, ruleID string) error {
	q := client.Query(fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE rule_id = @rule_id
	`, datasetID, learnedRulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "rule_id", Value: ruleID},
	}

	return runDML(ctx, q, "DeleteRule")
}

func queryRules(ctx context.Context, q *bigquery.Query, op string) ([]domain.LearnedRule, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rules []domain.LearnedRule
	for {
		var r LearnedRuleRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		rules = append(rules, r.toRule())
	}

	return rules, nil
}

func runDML(ctx context.Context, q *bigquery.Query, op string) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: running query: %w", op, err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: waiting for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}

	return nil
}
