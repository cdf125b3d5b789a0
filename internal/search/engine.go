// Package search provides semantic retrieval over the vector index.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marukodo/bunsho/internal/embedding"
	"github.com/marukodo/bunsho/internal/keyword"
	"github.com/marukodo/bunsho/internal/models"
	"github.com/marukodo/bunsho/internal/vector"
)

// MaxResults caps how many chunks a single search returns, regardless of
// what the caller asks for.
const MaxResults = 10

// Engine answers similarity queries by embedding the query text and
// scanning the vector index.
type Engine struct {
	embedder     embedding.Embedder
	vectorIndex  vector.Index
	keywordIndex keyword.Index
	logger       *zap.Logger
}

// NewEngine creates a retrieval engine. keywordIndex may be nil, in which
// case Grep returns empty results.
func NewEngine(embedder embedding.Embedder, vectorIndex vector.Index, keywordIndex keyword.Index, logger *zap.Logger) *Engine {
	return &Engine{
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		logger:       logger,
	}
}

// Search returns the k most similar chunks to the query text, most similar
// first. documentIDs narrows the search to the given documents; nil or
// empty searches everything. A blank query or a non-positive k returns no
// results; k above MaxResults is clamped.
func (e *Engine) Search(ctx context.Context, query string, k int, documentIDs []string) ([]*models.SimilarityResult, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return []*models.SimilarityResult{}, nil
	}
	if k > MaxResults {
		k = MaxResults
	}

	start := time.Now()
	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var filter *vector.Filter
	if len(documentIDs) > 0 {
		filter = &vector.Filter{DocumentIDs: documentIDs}
	}

	matches, err := e.vectorIndex.Query(ctx, queryVector, k, filter)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	results := make([]*models.SimilarityResult, 0, len(matches))
	for _, m := range matches {
		similarity := 1 - m.Distance/2
		if similarity < 0 {
			similarity = 0
		}
		results = append(results, &models.SimilarityResult{
			Content:    m.Text,
			Metadata:   m.Metadata,
			Distance:   m.Distance,
			Similarity: similarity,
		})
	}

	e.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("requested", k),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// Grep runs a keyword search over the indexed chunks. It is a lexical
// complement to Search and does not touch the embedder.
func (e *Engine) Grep(ctx context.Context, query string, limit int) ([]*models.KeywordResult, error) {
	if e.keywordIndex == nil || strings.TrimSpace(query) == "" || limit <= 0 {
		return []*models.KeywordResult{}, nil
	}
	if limit > MaxResults {
		limit = MaxResults
	}
	results, err := e.keywordIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return results, nil
}
