package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkruglov/pennyflow/internal/api"
	"github.com/dkruglov/pennyflow/internal/api/handlers"
	"github.com/dkruglov/pennyflow/internal/categorize"
	"github.com/dkruglov/pennyflow/internal/config"
	"github.com/dkruglov/pennyflow/internal/gcs"
	"github.com/dkruglov/pennyflow/internal/infra"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/jobs"
	"github.com/dkruglov/pennyflow/internal/jobs/inmemory"
	"github.com/dkruglov/pennyflow/internal/learning"
	"github.com/dkruglov/pennyflow/internal/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - imports will run synchronously")
	}

	ctx := logger.WithContext(context.Background(), log)

	store, err := infra.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store")
	}
	defer store.Close()

	learner, err := learning.NewStore(store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create learning store")
	}
	defer learner.Close()

	engine := categorize.NewEngine(learner)
	service := ingest.NewService(store, store, store, engine)
	storage := gcs.NewClient()

	// Job infrastructure for async imports
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.WorkerCount, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportCSVJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("user_id", importJob.UserID).
			Str("gcs_uri", importJob.GCSURI).
			Msg("Processing import job")

		content, err := storage.FetchCSV(ctx, importJob.GCSURI)
		if err != nil {
			return fmt.Errorf("fetching CSV: %w", err)
		}

		result, err := service.ImportCSV(ctx, content, ingest.Options{
			UserID:         importJob.UserID,
			Filename:       importJob.Filename,
			SkipDuplicates: importJob.SkipDuplicates,
		})
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", importJob.JobID).
				Msg("Import job failed")
			return err
		}

		importJob.ImportRunID = result.Run.ID
		log.Info().
			Str("job_id", importJob.JobID).
			Str("run_id", result.Run.ID).
			Int("imported", result.Run.ImportedCount).
			Msg("Import job completed")

		return nil
	}

	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start import workers")
	}

	router := api.NewRouter(api.Handlers{
		Imports:      handlers.NewImportsHandler(service, jobQueue, storage, cfg.GCSBucket, log),
		Transactions: handlers.NewTransactionsHandler(store, learner, log),
		Categorize:   handlers.NewCategorizeHandler(engine, store, log),
		Rules:        handlers.NewRulesHandler(learner, log),
		Categories:   handlers.NewCategoriesHandler(store, log),
		Jobs:         handlers.NewJobsHandler(jobStore, log),
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
