// Package docstore coordinates the vector index and the original-file store
// so that the two stay consistent under uploads and deletes.
package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/marukodo/bunsho/internal/catalog"
	"github.com/marukodo/bunsho/internal/ingest"
	"github.com/marukodo/bunsho/internal/keyword"
	"github.com/marukodo/bunsho/internal/models"
	"github.com/marukodo/bunsho/internal/store"
	"github.com/marukodo/bunsho/internal/vector"
)

// EmbeddingMethod labels the vectorization scheme in stats output.
const EmbeddingMethod = "deterministic-hash"

// Manager owns the upload, lookup, delete, list, stats, and health
// operations. The vector index is the source of truth for document
// membership; the file store holds the original bytes; the keyword index
// and catalog are best-effort secondaries that never fail a primary
// operation.
type Manager struct {
	pipeline     *ingest.Pipeline
	vectorIndex  vector.Index
	fileStore    *store.FileStore
	keywordIndex keyword.Index
	catalog      *catalog.Catalog
	collection   string
	logger       *zap.Logger
}

// NewManager wires the stores together. keywordIndex and cat may be nil.
func NewManager(
	pipeline *ingest.Pipeline,
	vectorIndex vector.Index,
	fileStore *store.FileStore,
	keywordIndex keyword.Index,
	cat *catalog.Catalog,
	collection string,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		pipeline:     pipeline,
		vectorIndex:  vectorIndex,
		fileStore:    fileStore,
		keywordIndex: keywordIndex,
		catalog:      cat,
		collection:   collection,
		logger:       logger,
	}
}

// Upload ingests a file and persists it to both stores. The original bytes
// are written to the file store first; the chunks carry the stored path in
// their metadata so lookup and delete can find the file later. If indexing
// fails after the file was written, the file is left in place so a retry of
// the same content overwrites it.
func (m *Manager) Upload(ctx context.Context, content []byte, filename string) (*models.UploadResult, error) {
	result, err := m.pipeline.Ingest(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	storedPath, err := m.fileStore.Save(result.DocumentID, filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: save original file: %v", models.ErrStorage, err)
	}
	for _, chunk := range result.Chunks {
		chunk.Metadata.StoredFilePath = storedPath
	}

	if err := m.vectorIndex.Upsert(ctx, result.Chunks); err != nil {
		m.logger.Error("vector index upsert failed, stored file left for retry",
			zap.String("document_id", result.DocumentID),
			zap.String("stored_path", storedPath),
			zap.Error(err))
		return nil, fmt.Errorf("%w: index document: %v", models.ErrStorage, err)
	}

	if m.keywordIndex != nil {
		if err := m.keywordIndex.IndexChunks(ctx, result.Chunks); err != nil {
			m.logger.Warn("keyword indexing failed",
				zap.String("document_id", result.DocumentID), zap.Error(err))
		}
	}
	if m.catalog != nil {
		entry := &catalog.Entry{
			DocumentID:      result.DocumentID,
			Filename:        result.Filename,
			FileType:        result.FileType,
			StoredPath:      storedPath,
			TotalChunks:     result.TotalChunks,
			TotalCharacters: result.TotalCharacters,
			SizeBytes:       int64(len(content)),
		}
		if err := m.catalog.Record(ctx, entry); err != nil {
			m.logger.Warn("catalog record failed",
				zap.String("document_id", result.DocumentID), zap.Error(err))
		}
	}

	m.logger.Info("document uploaded",
		zap.String("document_id", result.DocumentID),
		zap.String("filename", result.Filename),
		zap.Int("chunks", result.TotalChunks))

	return &models.UploadResult{
		DocumentID:     result.DocumentID,
		Filename:       result.Filename,
		PagesProcessed: result.TotalChunks,
		TotalChunks:    result.TotalChunks,
		FileType:       result.FileType,
	}, nil
}

// Lookup resolves a document identity to the location of its original file.
// The document must be present in the vector index and its stored file must
// exist on disk; otherwise ErrNotFound is returned.
func (m *Manager) Lookup(ctx context.Context, documentID string) (*models.StoredFileInfo, error) {
	chunks, err := m.vectorIndex.Get(ctx, vector.ByDocument(documentID))
	if err != nil {
		return nil, fmt.Errorf("read vector index: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, documentID)
	}

	meta := chunks[0].Metadata
	if meta.StoredFilePath == "" || !m.fileStore.Exists(meta.StoredFilePath) {
		return nil, fmt.Errorf("%w: original file for document %s", models.ErrNotFound, documentID)
	}
	return &models.StoredFileInfo{
		DocumentID: documentID,
		Filename:   meta.Filename,
		FileType:   meta.FileType,
		Path:       meta.StoredFilePath,
	}, nil
}

// ReadOriginal returns the original bytes for a document identity.
func (m *Manager) ReadOriginal(ctx context.Context, documentID string) (*models.StoredFileInfo, []byte, error) {
	info, err := m.Lookup(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	content, err := m.fileStore.Read(info.Path)
	if err != nil {
		return nil, nil, err
	}
	return info, content, nil
}

// Delete removes a document from the vector index and, best effort, from the
// file store, keyword index, and catalog. The stored path is resolved before
// the index delete because the index is the only place that knows it.
// Success is defined by the index delete alone; a failed file removal is
// logged and does not fail the operation.
func (m *Manager) Delete(ctx context.Context, documentID string) error {
	var storedPath string
	if chunks, err := m.vectorIndex.Get(ctx, vector.ByDocument(documentID)); err != nil {
		m.logger.Warn("stored path resolution failed, file may be orphaned",
			zap.String("document_id", documentID), zap.Error(err))
	} else if len(chunks) > 0 {
		storedPath = chunks[0].Metadata.StoredFilePath
	}

	removed, err := m.vectorIndex.Delete(ctx, vector.ByDocument(documentID))
	if err != nil {
		return fmt.Errorf("%w: delete from index: %v", models.ErrStorage, err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: document %s", models.ErrNotFound, documentID)
	}

	if m.keywordIndex != nil {
		if err := m.keywordIndex.DeleteDocument(ctx, documentID); err != nil {
			m.logger.Warn("keyword index delete failed",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}
	if storedPath != "" {
		if err := m.fileStore.Delete(storedPath); err != nil {
			m.logger.Warn("stored file delete failed",
				zap.String("document_id", documentID),
				zap.String("stored_path", storedPath),
				zap.Error(err))
		}
	}
	if m.catalog != nil {
		if err := m.catalog.Remove(ctx, documentID); err != nil {
			m.logger.Warn("catalog delete failed",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}

	m.logger.Info("document deleted",
		zap.String("document_id", documentID),
		zap.Int("chunks_removed", removed))
	return nil
}

// List returns one entry per indexed document, reconstructed by grouping
// chunk metadata. Catalog rows, when present, contribute upload time and
// original size. Output is sorted by filename for stable display.
func (m *Manager) List(ctx context.Context) ([]*models.Document, error) {
	chunks, err := m.vectorIndex.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("read vector index: %w", err)
	}

	byID := make(map[string]*models.Document)
	for _, chunk := range chunks {
		doc, ok := byID[chunk.Metadata.DocumentID]
		if !ok {
			doc = &models.Document{
				DocumentID: chunk.Metadata.DocumentID,
				Filename:   chunk.Metadata.Filename,
				FileType:   chunk.Metadata.FileType,
			}
			byID[chunk.Metadata.DocumentID] = doc
		}
		doc.ChunkCount++
	}

	if m.catalog != nil {
		if entries, err := m.catalog.List(ctx); err != nil {
			m.logger.Warn("catalog list failed", zap.Error(err))
		} else {
			for _, e := range entries {
				if doc, ok := byID[e.DocumentID]; ok {
					doc.SizeBytes = e.SizeBytes
					doc.UploadedAt = e.UploadedAt
				}
			}
		}
	}

	docs := make([]*models.Document, 0, len(byID))
	for _, doc := range byID {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Filename != docs[j].Filename {
			return docs[i].Filename < docs[j].Filename
		}
		return docs[i].DocumentID < docs[j].DocumentID
	})
	return docs, nil
}

// Stats summarizes the collection.
func (m *Manager) Stats(ctx context.Context) (*models.CollectionStats, error) {
	docs, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	totalChunks, err := m.vectorIndex.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	breakdown := make(map[string]int)
	for _, doc := range docs {
		breakdown[strings.ToLower(doc.FileType)]++
	}

	var totalSize int64
	if m.catalog != nil {
		if n, err := m.catalog.TotalSizeBytes(ctx); err != nil {
			m.logger.Warn("catalog size lookup failed", zap.Error(err))
		} else {
			totalSize = n
		}
	}
	if totalSize == 0 {
		if n, err := m.fileStore.UsageBytes(); err == nil {
			totalSize = n
		}
	}

	return &models.CollectionStats{
		TotalChunks:       totalChunks,
		TotalDocuments:    len(docs),
		TotalSizeBytes:    totalSize,
		CollectionName:    m.collection,
		StoragePath:       m.fileStore.Root(),
		EmbeddingMethod:   EmbeddingMethod,
		SupportedFormats:  ingest.SupportedFormats,
		FileTypeBreakdown: breakdown,
	}, nil
}

// Health probes the vector index and reports embedding dimensionality and
// the accepted formats.
func (m *Manager) Health(ctx context.Context) *models.HealthStatus {
	status := &models.HealthStatus{
		Status:           "healthy",
		SupportedFormats: ingest.SupportedFormats,
	}

	count, err := m.vectorIndex.Count(ctx)
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	status.IndexAccessible = true
	status.DocumentCount = count

	probe, err := m.pipeline.Embedder().Embed(ctx, "test")
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	status.EmbeddingDimension = len(probe)
	return status
}
