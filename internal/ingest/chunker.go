// Package ingest turns raw uploaded bytes into embedded chunk records.
package ingest

import (
	"fmt"
	"strings"

	"github.com/marukodo/bunsho/internal/models"
)

// Chunker splits text into overlapping word-based windows.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap,
// both in words. overlap must be smaller than size.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, size), size %d", models.ErrInvalidConfiguration, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into windows of size words with stride size-overlap.
// Text of at most size words is returned as a single chunk, unchanged.
// Longer text is split into space-joined windows; every chunk but the last
// has exactly size words, and chunk i+1 repeats the last overlap words of
// chunk i. Output is deterministic and order-preserving.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) <= c.size {
		return []string{text}
	}
	var chunks []string
	step := c.size - c.overlap
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
	}
	return chunks
}

// Size returns the configured window size in words.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }
