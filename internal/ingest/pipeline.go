package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/marukodo/bunsho/internal/embedding"
	"github.com/marukodo/bunsho/internal/identity"
	"github.com/marukodo/bunsho/internal/models"
)

// TextExtractor extracts plain text from raw file bytes. ext includes the
// leading dot. Implementations must fail distinguishably when the bytes
// yield no usable text.
type TextExtractor interface {
	ExtractBytes(content []byte, ext string) (string, error)
}

// SupportedFormats is the fixed set of accepted file extensions.
var SupportedFormats = []string{".pdf", ".txt", ".docx", ".xlsx"}

// FormatSupported reports whether ext (with leading dot, any case) is accepted.
func FormatSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedFormats {
		if s == ext {
			return true
		}
	}
	return false
}

// Pipeline runs the ingestion stages: validate, extract, clean, chunk,
// derive identity, embed. It produces an in-memory chunk batch and performs
// no persistence, so it is independently testable; writing the batch to the
// index and the file store is the consistency manager's job.
type Pipeline struct {
	extractor TextExtractor
	chunker   *Chunker
	embedder  embedding.Embedder
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(extractor TextExtractor, chunker *Chunker, embedder embedding.Embedder) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
	}
}

// Embedder exposes the pipeline's embedder for query-time use and health probes.
func (p *Pipeline) Embedder() embedding.Embedder { return p.embedder }

// Ingest processes one uploaded file into an embedded chunk batch.
// Every stage is fail-fast: an error at any stage aborts the whole batch and
// no partial chunk set is ever produced.
func (p *Pipeline) Ingest(ctx context.Context, content []byte, filename string) (*models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !FormatSupported(ext) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", models.ErrUnsupportedFormat, ext, strings.Join(SupportedFormats, ", "))
	}

	text, err := p.extractor.ExtractBytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrExtractionFailed, filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptyContent, filename)
	}

	cleaned := Clean(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %s (nothing left after cleaning)", models.ErrEmptyContent, filename)
	}

	chunks := p.chunker.Chunk(cleaned)
	fileType := strings.TrimPrefix(ext, ".")

	// Identity is derived from the extracted text, not the raw bytes, so a
	// byte-for-byte re-upload maps to the same document.
	docID := identity.DocumentID(filename, []byte(text))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]*models.ChunkRecord, len(chunks))
	for i, chunkText := range chunks {
		records[i] = &models.ChunkRecord{
			ID:        identity.ChunkID(docID, i),
			Text:      chunkText,
			Embedding: embeddings[i],
			Metadata: models.ChunkMetadata{
				DocumentID:  docID,
				Filename:    filename,
				ChunkIndex:  i,
				FileType:    fileType,
				ChunkLength: utf8.RuneCountInString(chunkText),
			},
		}
	}

	return &models.IngestResult{
		DocumentID:      docID,
		Filename:        filename,
		FileType:        fileType,
		Chunks:          records,
		TotalChunks:     len(records),
		TotalCharacters: utf8.RuneCountInString(text),
	}, nil
}
