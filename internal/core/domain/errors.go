package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown publisher or store type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrSourceMissing indicates the export file or media directory is absent.
	// It is the only pipeline error that aborts a run, and it is raised before any write.
	ErrSourceMissing = errors.New("source missing")

	// ErrRecordUnparseable indicates an export block did not match the expected shape.
	// The block is skipped.
	ErrRecordUnparseable = errors.New("record unparseable")

	// ErrMediaMissing indicates a referenced photo was not found on disk.
	// The image reference is dropped.
	ErrMediaMissing = errors.New("media missing")

	// ErrUploadFailed indicates remote storage rejected or failed an upload.
	// The locally served path is kept instead.
	ErrUploadFailed = errors.New("upload failed")

	// ErrThrottled indicates remote storage asked the client to slow down.
	// Uploads back off before the next attempt.
	ErrThrottled = errors.New("throttled")

	// ErrExtractionAmbiguous indicates an extractor found more than one candidate.
	// The first match by precedence is taken.
	ErrExtractionAmbiguous = errors.New("extraction ambiguous")

	// ErrPublisherUnavailable indicates remote storage is not configured.
	// Images stay on their local public paths.
	ErrPublisherUnavailable = errors.New("publisher unavailable")

	// ErrCatalogMissing indicates a refine pass was asked to run without a catalog.
	ErrCatalogMissing = errors.New("catalog missing")
)
