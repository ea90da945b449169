package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage learned categorization rules",
	}

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesDeleteCommand())

	return cmd
}

func newRulesListCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's learned rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runRulesList(userID string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	rules, err := e.learner.ListRules(e.ctx, userID)
	if err != nil {
		return fmt.Errorf("listing rules: %w", err)
	}

	if len(rules) == 0 {
		fmt.Println("No learned rules")
		return nil
	}

	for _, r := range rules {
		fmt.Printf("%s  %-40s -> %s (confidence %d)\n", r.ID, r.MerchantPattern, r.CategoryID, r.Confidence)
	}

	return nil
}

func newRulesDeleteCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a learned rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesDelete(userID, args[0])
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runRulesDelete(userID, ruleID string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.learner.DeleteRule(e.ctx, userID, ruleID); err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	fmt.Printf("Deleted rule %s\n", ruleID)
	return nil
}
