package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/marukodo/bunsho/internal/models"
)

// bleveChunk is the indexed shape of one chunk.
type bleveChunk struct {
	Content    string `json:"content"`
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id"`
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index
// directory is reused; delete it to force a rebuild after mapping changes.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open keyword index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	chunkMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so exact words
	// match exactly.
	textField.Analyzer = standard.Name
	chunkMapping.AddFieldMappingsAt("content", textField)
	chunkMapping.AddFieldMappingsAt("filename", textField)
	idField := bleve.NewKeywordFieldMapping()
	chunkMapping.AddFieldMappingsAt("document_id", idField)
	im.DefaultMapping = chunkMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexChunks indexes chunk text keyed by chunk ID, replacing existing
// entries with the same ID.
func (b *BleveIndex) IndexChunks(ctx context.Context, chunks []*models.ChunkRecord) error {
	batch := b.index.NewBatch()
	for _, ch := range chunks {
		err := batch.Index(ch.ID, bleveChunk{
			Content:    ch.Text,
			Filename:   ch.Metadata.Filename,
			DocumentID: ch.Metadata.DocumentID,
		})
		if err != nil {
			return fmt.Errorf("batch chunk %s: %w", ch.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Search runs a match query over chunk content and filenames.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*models.KeywordResult, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	req.Fields = []string{"content", "filename", "document_id"}
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	out := make([]*models.KeywordResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &models.KeywordResult{ChunkID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["content"].(string); ok {
			r.Content = v
		}
		if v, ok := hit.Fields["filename"].(string); ok {
			r.Filename = v
		}
		if v, ok := hit.Fields["document_id"].(string); ok {
			r.DocumentID = v
		}
		out = append(out, r)
	}
	return out, nil
}

// DeleteDocument removes every chunk indexed for the given document identity.
func (b *BleveIndex) DeleteDocument(ctx context.Context, documentID string) error {
	tq := bleve.NewTermQuery(documentID)
	tq.SetField("document_id")
	for {
		req := bleve.NewSearchRequest(tq)
		req.Size = 1000
		res, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("find chunks for %s: %w", documentID, err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("delete chunks for %s: %w", documentID, err)
		}
	}
}

// Close releases the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
