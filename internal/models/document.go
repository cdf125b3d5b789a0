// Package models defines core data structures for documents, chunks, and search results.
package models

import "time"

// Document describes one uploaded file as seen by callers of the list surface.
// It is reconstructed by grouping chunk metadata in the vector index; the
// catalog contributes UploadedAt and SizeBytes when a row exists.
type Document struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	ChunkCount int       `json:"chunk_count"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// ChunkMetadata is attached to every chunk record in the vector index.
// StoredFilePath is filled in by the consistency manager before indexing;
// it is the bridge between the index and the original-file store.
type ChunkMetadata struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	ChunkIndex     int    `json:"chunk_index"`
	FileType       string `json:"file_type"`
	ChunkLength    int    `json:"chunk_length"`
	StoredFilePath string `json:"stored_file_path,omitempty"`
}

// ChunkRecord is one indexable chunk: text, embedding, and metadata.
// Records are immutable after ingestion and deleted only as a batch per document.
type ChunkRecord struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Embedding []float64     `json:"-"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// IngestResult is the output of the ingestion pipeline: the full chunk batch
// for one document, before any persistence.
type IngestResult struct {
	DocumentID      string
	Filename        string
	FileType        string
	Chunks          []*ChunkRecord
	TotalChunks     int
	TotalCharacters int
}

// UploadResult is returned to callers after a successful upload.
// PagesProcessed always equals TotalChunks.
type UploadResult struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	PagesProcessed int    `json:"pages_processed"`
	TotalChunks    int    `json:"total_chunks"`
	FileType       string `json:"file_type"`
}

// StoredFileInfo is the result of lookup-by-identity: the on-disk location of
// the original bytes for a document that is present in the vector index.
type StoredFileInfo struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Path       string `json:"path"`
}
