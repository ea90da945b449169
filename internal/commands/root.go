// Package commands implements the pennyflow CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkruglov/pennyflow/internal/categorize"
	"github.com/dkruglov/pennyflow/internal/config"
	"github.com/dkruglov/pennyflow/internal/infra"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/learning"
	"github.com/dkruglov/pennyflow/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pennyflow",
		Short: "Bank CSV import and categorization",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newCategorizeCommand())
	rootCmd.AddCommand(newRulesCommand())

	return rootCmd
}

// env bundles the wired-up service layer for one command invocation.
type env struct {
	ctx     context.Context
	store   infra.Store
	learner *learning.Store
	engine  *categorize.Engine
	service *ingest.Service
}

func (e *env) close() {
	e.learner.Close()
	_ = e.store.Close()
}

func setup() (*env, error) {
	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	store, err := infra.NewStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	learner, err := learning.NewStore(store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating learning store: %w", err)
	}

	engine := categorize.NewEngine(learner)

	return &env{
		ctx:     ctx,
		store:   store,
		learner: learner,
		engine:  engine,
		service: ingest.NewService(store, store, store, engine),
	}, nil
}
