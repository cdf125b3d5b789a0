package models

import "errors"

// Error taxonomy for the indexing and retrieval engine. Callers classify
// failures with errors.Is; lower layers wrap these with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrUnsupportedFormat is returned when a file's extension is not in the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed is returned when a format extractor fails on the
	// raw bytes.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmptyContent is returned when extraction yields no usable text.
	ErrEmptyContent = errors.New("no text content found in document")

	// ErrInvalidConfiguration is returned for misconfigured components,
	// e.g. a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrStorage is returned when the vector index or the file store fails
	// a write. Uploads interrupted between the two stores surface this and
	// leave the already-written file in place for retry.
	ErrStorage = errors.New("storage failure")

	// ErrNotFound is returned by lookup and delete when no chunk metadata
	// matches the document identity, or the stored file is missing.
	ErrNotFound = errors.New("document not found")
)
