// Package vector provides the chunk vector index: similarity queries over
// embeddings, filterable by document identity.
package vector

import (
	"context"

	"github.com/marukodo/bunsho/internal/models"
)

// Filter restricts index operations to chunks of the given documents.
// A nil filter (or one with no IDs) matches everything; one ID is an
// equality match; multiple IDs are set membership.
type Filter struct {
	DocumentIDs []string
}

// ByDocument returns a filter matching a single document identity.
func ByDocument(documentID string) *Filter {
	return &Filter{DocumentIDs: []string{documentID}}
}

// Matches reports whether metadata passes the filter.
func (f *Filter) Matches(meta models.ChunkMetadata) bool {
	if f == nil || len(f.DocumentIDs) == 0 {
		return true
	}
	for _, id := range f.DocumentIDs {
		if meta.DocumentID == id {
			return true
		}
	}
	return false
}

// QueryResult is one raw similarity hit from the index. Distance is cosine
// distance: 0 for identical vectors, 2 for opposite (vectors are unit-norm).
type QueryResult struct {
	ID       string
	Text     string
	Metadata models.ChunkMetadata
	Distance float64
}

// Index defines chunk storage and similarity search. Implementations must
// make Upsert insert-or-replace by chunk ID so repeated ingestion of the
// same document never duplicates chunks, and must be safe for concurrent
// upserts, queries, and deletes.
type Index interface {
	Upsert(ctx context.Context, records []*models.ChunkRecord) error
	Query(ctx context.Context, vector []float64, k int, filter *Filter) ([]*QueryResult, error)
	Get(ctx context.Context, filter *Filter) ([]*models.ChunkRecord, error)
	Delete(ctx context.Context, filter *Filter) (int, error)
	Count(ctx context.Context) (int, error)
	Save(path string) error
	Load(path string) error
	Close() error
}
