package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkruglov/pennyflow/internal/ingest"
)

func newImportCommand() *cobra.Command {
	var userID string
	var skipDuplicates bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], userID, skipDuplicates)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID to import for (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "drop duplicate rows instead of importing them flagged")

	return cmd
}

func runImport(path, userID string, skipDuplicates bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	result, err := e.service.ImportCSV(e.ctx, content, ingest.Options{
		UserID:         userID,
		Filename:       filepath.Base(path),
		SkipDuplicates: skipDuplicates,
	})
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	run := result.Run
	fmt.Printf("Import run %s (%s)\n", run.ID, run.Status)
	fmt.Printf("  format:     %s\n", run.DetectedFormat)
	fmt.Printf("  rows:       %d\n", run.TotalRows)
	fmt.Printf("  imported:   %d\n", run.ImportedCount)
	fmt.Printf("  duplicates: %d\n", run.DuplicateCount)
	fmt.Printf("  errors:     %d\n", run.ErrorCount)

	for _, pe := range result.Parse.Errors {
		if pe.Column != "" {
			fmt.Printf("  row %d [%s]: %s\n", pe.Row, pe.Column, pe.Message)
		} else {
			fmt.Printf("  row %d: %s\n", pe.Row, pe.Message)
		}
	}

	return nil
}
