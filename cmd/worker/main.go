package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

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

	service := ingest.NewService(store, store, store, categorize.NewEngine(learner))
	storage := gcs.NewClient()

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.WorkerCount, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
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
			Int("duplicates", result.Run.DuplicateCount).
			Msg("Import job completed")

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
