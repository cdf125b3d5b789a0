package vector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/marukodo/bunsho/internal/models"
)

// MemoryIndex is an in-process vector index using brute-force cosine search.
// Records, text, and metadata live together so the index is the single place
// a chunk exists; Save/Load persist snapshots between runs.
type MemoryIndex struct {
	dimensions int
	records    []*models.ChunkRecord
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", models.ErrInvalidConfiguration)
	}
	return &MemoryIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Upsert inserts records, replacing any existing record with the same ID.
// The batch is validated up front; on a dimension mismatch nothing is written.
func (m *MemoryIndex) Upsert(ctx context.Context, records []*models.ChunkRecord) error {
	for _, rec := range records {
		if len(rec.Embedding) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, expected %d", rec.ID, len(rec.Embedding), m.dimensions)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		stored := &models.ChunkRecord{
			ID:        rec.ID,
			Text:      rec.Text,
			Embedding: append([]float64(nil), rec.Embedding...),
			Metadata:  rec.Metadata,
		}
		if pos, ok := m.byID[rec.ID]; ok {
			m.records[pos] = stored
			continue
		}
		m.byID[rec.ID] = len(m.records)
		m.records = append(m.records, stored)
	}
	return nil
}

// Query returns the k nearest records by cosine distance, optionally
// restricted by filter. Distance is 1 - dot(query, record); with unit
// vectors on both sides that ranges over [0, 2].
func (m *MemoryIndex) Query(ctx context.Context, vector []float64, k int, filter *Filter) ([]*QueryResult, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	results := make([]*QueryResult, 0, len(m.records))
	for _, rec := range m.records {
		if !filter.Matches(rec.Metadata) {
			continue
		}
		var dot float64
		for i := range vector {
			dot += vector[i] * rec.Embedding[i]
		}
		results = append(results, &QueryResult{
			ID:       rec.ID,
			Text:     rec.Text,
			Metadata: rec.Metadata,
			Distance: 1 - dot,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Get returns copies of all records matching the filter, in insertion order.
func (m *MemoryIndex) Get(ctx context.Context, filter *Filter) ([]*models.ChunkRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.ChunkRecord
	for _, rec := range m.records {
		if !filter.Matches(rec.Metadata) {
			continue
		}
		out = append(out, &models.ChunkRecord{
			ID:        rec.ID,
			Text:      rec.Text,
			Embedding: append([]float64(nil), rec.Embedding...),
			Metadata:  rec.Metadata,
		})
	}
	return out, nil
}

// Delete removes all records matching the filter and returns how many were
// removed. A nil filter clears the index.
func (m *MemoryIndex) Delete(ctx context.Context, filter *Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	removed := 0
	for _, rec := range m.records {
		if filter.Matches(rec.Metadata) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	m.byID = make(map[string]int, len(m.records))
	for i, rec := range m.records {
		m.byID[rec.ID] = i
	}
	return removed, nil
}

// Count returns the number of records in the index.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Snapshot format: dimensions (uint32), record count (uint32), then per
// record: id length + bytes, text length + bytes, metadata JSON length +
// bytes, vector as dimensions*8 little-endian float64 bits.

// Save persists the index to path, creating parent directories as needed.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.records))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, rec := range m.records {
		metaJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", rec.ID, err)
		}
		for _, blob := range [][]byte{[]byte(rec.ID), []byte(rec.Text), metaJSON} {
			if err := binary.Write(f, binary.LittleEndian, uint32(len(blob))); err != nil {
				return fmt.Errorf("write length: %w", err)
			}
			if _, err := f.Write(blob); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
		if _, err := f.Write(float64SliceToBytes(rec.Embedding)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads a snapshot from path and replaces the in-memory contents.
// A missing file is not an error; the index is left empty.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	records := make([]*models.ChunkRecord, 0, n)
	byID := make(map[string]int, n)
	vecBuf := make([]byte, m.dimensions*8)
	for i := uint32(0); i < n; i++ {
		var blobs [3][]byte
		for j := range blobs {
			var l uint32
			if err := binary.Read(f, binary.LittleEndian, &l); err != nil {
				return fmt.Errorf("read length: %w", err)
			}
			blobs[j] = make([]byte, l)
			if _, err := io.ReadFull(f, blobs[j]); err != nil {
				return fmt.Errorf("read record: %w", err)
			}
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		var meta models.ChunkMetadata
		if err := json.Unmarshal(blobs[2], &meta); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		rec := &models.ChunkRecord{
			ID:        string(blobs[0]),
			Text:      string(blobs[1]),
			Embedding: bytesToFloat64Slice(vecBuf),
			Metadata:  meta,
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}
	m.mu.Lock()
	m.records = records
	m.byID = byID
	m.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func float64SliceToBytes(s []float64) []byte {
	out := make([]byte, len(s)*8)
	for i, v := range s {
		binary.LittleEndian.PutUint64(out[i*8:(i+1)*8], math.Float64bits(v))
	}
	return out
}

func bytesToFloat64Slice(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : (i+1)*8]))
	}
	return out
}
