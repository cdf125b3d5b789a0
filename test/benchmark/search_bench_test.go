package benchmark

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/marukodo/bunsho/internal/embedding"
	"github.com/marukodo/bunsho/internal/models"
	"github.com/marukodo/bunsho/internal/search"
	"github.com/marukodo/bunsho/internal/vector"
)

func seedIndex(b *testing.B, n int) (*search.Engine, context.Context) {
	b.Helper()
	ctx := context.Background()
	embedder := embedding.NewHashEmbedder(embedding.DefaultDimensions)
	index, err := vector.NewMemoryIndex(embedding.DefaultDimensions)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { index.Close() })

	records := make([]*models.ChunkRecord, n)
	for i := range records {
		text := fmt.Sprintf("chunk %d discussing contracts invoices and policies in varying proportion", i)
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			b.Fatal(err)
		}
		docID := fmt.Sprintf("doc_%04d_00000000", i)
		records[i] = &models.ChunkRecord{
			ID:        fmt.Sprintf("%s_chunk_0", docID),
			Text:      text,
			Embedding: vec,
			Metadata:  models.ChunkMetadata{DocumentID: docID, Filename: "bench.txt", FileType: "txt"},
		}
	}
	if err := index.Upsert(ctx, records); err != nil {
		b.Fatal(err)
	}
	return search.NewEngine(embedder, index, nil, zap.NewNop()), ctx
}

func BenchmarkEmbed(b *testing.B) {
	embedder := embedding.NewHashEmbedder(embedding.DefaultDimensions)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := embedder.Embed(ctx, "indemnification obligations survive termination"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("chunks=%d", n), func(b *testing.B) {
			engine, ctx := seedIndex(b, n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Search(ctx, "contracts and invoices", 10, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
