// Package gcs handles Cloud Storage access for uploaded CSV files. Worker
// jobs reference uploads by gs:// URI rather than passing file bytes
// through the queue.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadCSV uploads CSV content to a storage bucket under the given object name
	// and returns the gs:// URI of the created object.
	UploadCSV(ctx context.Context, bucketName, objectName string, content []byte) (string, error)

	// FetchCSV downloads file bytes from the given storage URI.
	FetchCSV(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilename extracts the filename from a storage URI.
	ExtractFilename(uri string) string
}

// Client is the concrete implementation of StorageService that talks to
// Google Cloud Storage. It assumes Application Default Credentials are
// configured (gcloud auth application-default login).
type Client struct{}

// NewClient creates a new storage client wrapper.
func NewClient() *Client {
	return &Client{}
}

// UploadCSV uploads CSV content to a GCS bucket under the given object name.
func (c *Client) UploadCSV(ctx context.Context, bucketName, objectName string, content []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadCSV: creating storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := client.Bucket(bucketName).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = "text/csv"
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadCSV: writing object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadCSV: finalizing upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}

// FetchCSV downloads the file bytes from the given GCS URI.
func (c *Client) FetchCSV(ctx context.Context, gcsURI string) ([]byte, error) {
	// gcsURI example: gs://my-bucket/uploads/file.csv
	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	bucketName := parts[0]
	objectPath := parts[1]

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchCSV: creating storage client: %w", err)
	}
	defer storageClient.Close()

	rc, err := storageClient.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchCSV: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchCSV: reading bytes: %w", err)
	}

	return data, nil
}

// ExtractFilename extracts the filename from a GCS URI.
// e.g., "gs://bucket/uploads/file.csv" → "file.csv"
func (c *Client) ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

var _ StorageService = (*Client)(nil)
