package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marukodo/bunsho/internal/models"
)

func rec(id, docID string, vec []float64) *models.ChunkRecord {
	return &models.ChunkRecord{
		ID:        id,
		Text:      "text of " + id,
		Embedding: vec,
		Metadata:  models.ChunkMetadata{DocumentID: docID, ChunkIndex: 0},
	}
}

func TestMemoryIndex_upsertAndQuery(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	err = idx.Upsert(ctx, []*models.ChunkRecord{
		rec("a_chunk_0", "a", []float64{1, 0}),
		rec("b_chunk_0", "b", []float64{0, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}
	results, err := idx.Query(ctx, []float64{1, 0}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].ID != "a_chunk_0" {
		t.Errorf("closest = %s", results[0].ID)
	}
	if results[0].Distance > 1e-12 {
		t.Errorf("identical vector distance = %v", results[0].Distance)
	}
	if results[1].Distance < results[0].Distance {
		t.Error("results not ordered by distance")
	}
}

func TestMemoryIndex_upsertReplacesByID(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []*models.ChunkRecord{rec("a_chunk_0", "a", []float64{1, 0})})
	_ = idx.Upsert(ctx, []*models.ChunkRecord{rec("a_chunk_0", "a", []float64{0, 1})})
	n, _ := idx.Count(ctx)
	if n != 1 {
		t.Fatalf("count after re-upsert = %d, want 1", n)
	}
	results, _ := idx.Query(ctx, []float64{0, 1}, 1, nil)
	if results[0].Distance > 1e-12 {
		t.Errorf("record was not replaced: distance %v", results[0].Distance)
	}
}

func TestMemoryIndex_dimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()
	if err := idx.Upsert(ctx, []*models.ChunkRecord{rec("x", "d", []float64{1, 0})}); err == nil {
		t.Error("expected upsert dimension error")
	}
	if _, err := idx.Query(ctx, []float64{1}, 1, nil); err == nil {
		t.Error("expected query dimension error")
	}
}

func TestMemoryIndex_upsertIsAtomic(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	err := idx.Upsert(ctx, []*models.ChunkRecord{
		rec("good_chunk_0", "d", []float64{1, 0}),
		rec("bad_chunk_0", "d", []float64{1, 0, 0}),
	})
	if err == nil {
		t.Fatal("expected dimension error")
	}
	n, _ := idx.Count(ctx)
	if n != 0 {
		t.Errorf("failed batch left %d records behind", n)
	}
}

func TestMemoryIndex_filter(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []*models.ChunkRecord{
		rec("a_chunk_0", "docA", []float64{1, 0}),
		rec("b_chunk_0", "docB", []float64{1, 0}),
		rec("c_chunk_0", "docC", []float64{1, 0}),
	})
	results, err := idx.Query(ctx, []float64{1, 0}, 10, ByDocument("docA"))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Metadata.DocumentID != "docA" {
			t.Errorf("filtered query returned %s", r.Metadata.DocumentID)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}

	multi, err := idx.Query(ctx, []float64{1, 0}, 10, &Filter{DocumentIDs: []string{"docA", "docC"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(multi) != 2 {
		t.Errorf("set filter got %d results, want 2", len(multi))
	}
}

func TestMemoryIndex_deleteByFilter(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []*models.ChunkRecord{
		rec("a_chunk_0", "docA", []float64{1, 0}),
		rec("a_chunk_1", "docA", []float64{0, 1}),
		rec("b_chunk_0", "docB", []float64{1, 0}),
	})
	removed, err := idx.Delete(ctx, ByDocument("docA"))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	n, _ := idx.Count(ctx)
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	results, _ := idx.Query(ctx, []float64{1, 0}, 10, ByDocument("docA"))
	if len(results) != 0 {
		t.Errorf("docA should be gone, got %d hits", len(results))
	}
	// Remaining record still queryable after internal reindex.
	results, _ = idx.Query(ctx, []float64{1, 0}, 10, nil)
	if len(results) != 1 || results[0].ID != "b_chunk_0" {
		t.Errorf("unexpected survivors: %v", results)
	}
}

func TestMemoryIndex_get(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []*models.ChunkRecord{
		rec("a_chunk_0", "docA", []float64{1, 0}),
		rec("b_chunk_0", "docB", []float64{0, 1}),
	})
	all, err := idx.Get(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records", len(all))
	}
	only, _ := idx.Get(ctx, ByDocument("docB"))
	if len(only) != 1 || only[0].ID != "b_chunk_0" {
		t.Errorf("filtered get: %v", only)
	}
}

func TestMemoryIndex_saveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index", "chunks.idx")
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []*models.ChunkRecord{
		rec("a_chunk_0", "docA", []float64{0.6, 0.8}),
	})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	n, _ := loaded.Count(ctx)
	if n != 1 {
		t.Fatalf("count after load = %d", n)
	}
	results, _ := loaded.Query(ctx, []float64{0.6, 0.8}, 1, nil)
	if len(results) != 1 || results[0].ID != "a_chunk_0" {
		t.Fatalf("unexpected results: %v", results)
	}
	if results[0].Metadata.DocumentID != "docA" {
		t.Errorf("metadata lost in round trip: %+v", results[0].Metadata)
	}
	if results[0].Text != "text of a_chunk_0" {
		t.Errorf("text lost in round trip: %q", results[0].Text)
	}
}

func TestMemoryIndex_loadMissingFile(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	if err := idx.Load(filepath.Join(t.TempDir(), "nope.idx")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}
