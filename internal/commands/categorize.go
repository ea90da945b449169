package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkruglov/pennyflow/internal/categorize"
)

func newCategorizeCommand() *cobra.Command {
	var userID string
	var description string

	cmd := &cobra.Command{
		Use:   "categorize <merchant>",
		Short: "Preview the category for a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategorize(args[0], description, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID whose learned rules and categories to use (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&description, "description", "", "raw transaction description")

	return cmd
}

func runCategorize(merchant, description, userID string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	categories, err := e.store.ListCategories(e.ctx, userID)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	result := e.engine.Categorize(e.ctx, categorize.Input{
		Merchant:    merchant,
		Description: description,
	}, categories, userID)

	if result.CategoryID == "" {
		fmt.Printf("No category (%s)\n", result.MatchReason)
		return nil
	}

	name := result.CategoryID
	for _, c := range categories {
		if c.ID == result.CategoryID {
			name = c.Name
			break
		}
	}

	fmt.Printf("Category:   %s\n", name)
	fmt.Printf("Confidence: %d\n", result.Confidence)
	fmt.Printf("Source:     %s\n", result.MatchSource)
	fmt.Printf("Reason:     %s\n", result.MatchReason)

	return nil
}
