// Package cli provides output formatting for the bunsho command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/marukodo/bunsho/internal/models"
	"github.com/marukodo/bunsho/pkg/utils"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes similarity-search hits to w.
func WriteSearchResults(w io.Writer, results []*models.SimilarityResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s (chunk %d) similarity=%.4f\n",
			i+1, r.Metadata.Filename, r.Metadata.ChunkIndex, r.Similarity)
		fmt.Fprintf(w, "   id: %s\n", r.Metadata.DocumentID)
		fmt.Fprintf(w, "   %s\n\n", utils.Truncate(r.Content, 200))
	}
	return nil
}

// WriteKeywordResults writes keyword-search hits to w.
func WriteKeywordResults(w io.Writer, results []*models.KeywordResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s score=%.4f\n", i+1, r.Filename, r.Score)
		fmt.Fprintf(w, "   id: %s\n", r.DocumentID)
		fmt.Fprintf(w, "   %s\n\n", utils.Truncate(r.Content, 200))
	}
	return nil
}

// WriteDocuments writes the document list to w.
func WriteDocuments(w io.Writer, docs []*models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return nil
	}
	for _, d := range docs {
		line := fmt.Sprintf("%s  %s  chunks=%d", d.DocumentID, d.Filename, d.ChunkCount)
		if d.SizeBytes > 0 {
			line += fmt.Sprintf("  size=%d", d.SizeBytes)
		}
		if !d.UploadedAt.IsZero() {
			line += "  uploaded=" + d.UploadedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// WriteStats writes collection statistics to w.
func WriteStats(w io.Writer, stats *models.CollectionStats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintf(w, "collection:        %s\n", stats.CollectionName)
	fmt.Fprintf(w, "documents:         %d\n", stats.TotalDocuments)
	fmt.Fprintf(w, "chunks:            %d\n", stats.TotalChunks)
	fmt.Fprintf(w, "size_bytes:        %d\n", stats.TotalSizeBytes)
	fmt.Fprintf(w, "storage_path:      %s\n", stats.StoragePath)
	fmt.Fprintf(w, "embedding_method:  %s\n", stats.EmbeddingMethod)
	fmt.Fprintf(w, "supported_formats: %s\n", strings.Join(stats.SupportedFormats, ", "))
	if len(stats.FileTypeBreakdown) > 0 {
		fmt.Fprintln(w, "by_type:")
		for ft, n := range stats.FileTypeBreakdown {
			fmt.Fprintf(w, "  %s: %d\n", ft, n)
		}
	}
	return nil
}

// WriteHealth writes the health report to w.
func WriteHealth(w io.Writer, status *models.HealthStatus, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "status:              %s\n", status.Status)
	fmt.Fprintf(w, "index_accessible:    %t\n", status.IndexAccessible)
	fmt.Fprintf(w, "chunk_count:         %d\n", status.DocumentCount)
	fmt.Fprintf(w, "embedding_dimension: %d\n", status.EmbeddingDimension)
	fmt.Fprintf(w, "supported_formats:   %s\n", strings.Join(status.SupportedFormats, ", "))
	if status.Error != "" {
		fmt.Fprintf(w, "error:               %s\n", status.Error)
	}
	return nil
}
