// Package keyword provides the supplementary exact-term chunk index.
// It is fed best-effort on upload and delete and is never consulted by the
// similarity search path.
package keyword

import (
	"context"

	"github.com/marukodo/bunsho/internal/models"
)

// Index defines keyword search over chunk text.
type Index interface {
	IndexChunks(ctx context.Context, chunks []*models.ChunkRecord) error
	Search(ctx context.Context, query string, limit int) ([]*models.KeywordResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
	Close() error
}
