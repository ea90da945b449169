// Package handlers contains the HTTP handlers for the pennyflow API.
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkruglov/pennyflow/internal/api/middleware"
	"github.com/dkruglov/pennyflow/internal/gcs"
	"github.com/dkruglov/pennyflow/internal/ingest"
	"github.com/dkruglov/pennyflow/internal/jobs"
)

// Uploads larger than this are rejected before parsing.
const maxUploadBytes = 32 << 20

// ImportsHandler handles CSV import endpoints. When a bucket and publisher
// are configured, uploads are staged in GCS and imported asynchronously by
// the worker; otherwise the import runs inline in the request.
type ImportsHandler struct {
	service   *ingest.Service
	publisher jobs.Publisher
	storage   gcs.StorageService
	bucket    string
	log       zerolog.Logger
}

// NewImportsHandler creates a new imports handler. publisher and storage may
// be nil when async imports are disabled.
func NewImportsHandler(service *ingest.Service, publisher jobs.Publisher, storage gcs.StorageService, bucket string, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		service:   service,
		publisher: publisher,
		storage:   storage,
		bucket:    bucket,
		log:       log,
	}
}

// UploadCSV handles POST /api/imports
func (h *ImportsHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	skipDuplicates, _ := strconv.ParseBool(r.FormValue("skip_duplicates"))

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	if len(content) > maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	// Async path: stage the file in GCS and hand it to the worker.
	if h.bucket != "" && h.publisher != nil && h.storage != nil {
		objectName := fmt.Sprintf("uploads/%s/%s", time.Now().Format("2006/01/02"), uuid.New().String()+"-"+header.Filename)
		gcsURI, err := h.storage.UploadCSV(ctx, h.bucket, objectName, content)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to upload CSV to GCS")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to stage uploaded file")
			return
		}

		job := &jobs.ImportCSVJob{
			UserID:         userID,
			GCSURI:         gcsURI,
			Filename:       header.Filename,
			SkipDuplicates: skipDuplicates,
		}
		if err := h.publisher.PublishImportCSV(ctx, job); err != nil {
			h.log.Error().Err(err).Msg("Failed to enqueue import job")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import")
			return
		}

		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
			"job_id":  job.JobID,
			"gcs_uri": gcsURI,
			"status":  string(job.Status),
		})
		return
	}

	// Sync path: run the pipeline inline.
	result, err := h.service.ImportCSV(ctx, content, ingest.Options{
		UserID:         userID,
		Filename:       header.Filename,
		SkipDuplicates: skipDuplicates,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Import failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// GetImportRun handles GET /api/imports/{run_id}
func (h *ImportsHandler) GetImportRun(w http.ResponseWriter, r *http.Request, runID string) {
	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Import run not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, run)
}
