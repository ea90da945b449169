package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/dkruglov/pennyflow/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ImportCSVJob{
		JobID:  "job-1",
		UserID: "u1",
		GCSURI: "gs://bucket/uploads/file.csv",
		Status: jobs.JobStatusPending,
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.UserID != "u1" || got.Status != jobs.JobStatusPending {
		t.Errorf("unexpected job: %+v", got)
	}

	// Mutating the returned copy must not affect the stored job.
	got.Status = jobs.JobStatusFailed
	again, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job was mutated through a returned copy")
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.ImportCSVJob{}); err == nil {
		t.Error("expected error for job without ID")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestStoreListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.ImportCSVJob{
		{JobID: "a", UserID: "u1", Status: jobs.JobStatusPending},
		{JobID: "b", UserID: "u1", Status: jobs.JobStatusCompleted},
		{JobID: "c", UserID: "u2", Status: jobs.JobStatusPending},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	byUser, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("expected 2 jobs for u1, got %d", len(byUser))
	}

	pending, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "u1", Status: jobs.JobStatusPending})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(pending) != 1 || pending[0].JobID != "a" {
		t.Errorf("expected job a, got %+v", pending)
	}
}

func TestQueuePublishAndProcess(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	ctx := context.Background()

	processed := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		processed <- job.GetID()
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ImportCSVJob{UserID: "u1", GCSURI: "gs://bucket/f.csv"}
	if err := queue.PublishImportCSV(ctx, job); err != nil {
		t.Fatalf("PublishImportCSV failed: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("expected job ID to be generated")
	}
	if job.MaxRetries != 3 {
		t.Errorf("expected default max retries 3, got %d", job.MaxRetries)
	}

	select {
	case id := <-processed:
		if id != job.JobID {
			t.Errorf("processed wrong job: %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}

	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	saved, err := store.GetJob(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if saved.Status != jobs.JobStatusCompleted {
		t.Errorf("expected completed status, got %s", saved.Status)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, nil)
	if err := queue.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	err := queue.PublishImportCSV(context.Background(), &jobs.ImportCSVJob{})
	if err == nil {
		t.Error("expected error publishing to closed queue")
	}
}
