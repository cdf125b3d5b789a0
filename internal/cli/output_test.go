package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/marukodo/bunsho/internal/models"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"", OutputText, false},
		{"json", OutputJSON, false},
		{"xml", "", true},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseFormat(%q) = %q, %v", c.in, got, err)
		}
	}
}

func TestWriteSearchResultsText(t *testing.T) {
	results := []*models.SimilarityResult{
		{
			Content:    "The limitation of liability clause caps damages.",
			Similarity: 0.8765,
			Metadata: models.ChunkMetadata{
				DocumentID: "doc_ab12_cd34ef56",
				Filename:   "agreement.pdf",
				ChunkIndex: 2,
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, results, OutputText); err != nil {
		t.Fatalf("WriteSearchResults failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"agreement.pdf", "doc_ab12_cd34ef56", "0.8765", "chunk 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, nil, OutputText); err != nil {
		t.Fatalf("WriteSearchResults failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestWriteSearchResultsJSON(t *testing.T) {
	results := []*models.SimilarityResult{{Content: "x", Similarity: 0.5}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, results, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults failed: %v", err)
	}
	var decoded []*models.SimilarityResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Similarity != 0.5 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestWriteStatsText(t *testing.T) {
	stats := &models.CollectionStats{
		CollectionName:    "documents",
		TotalDocuments:    2,
		TotalChunks:       5,
		EmbeddingMethod:   "deterministic-hash",
		SupportedFormats:  []string{".pdf", ".txt"},
		FileTypeBreakdown: map[string]int{"pdf": 1, "txt": 1},
	}
	var buf bytes.Buffer
	if err := WriteStats(&buf, stats, OutputText); err != nil {
		t.Fatalf("WriteStats failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"documents:         2", "chunks:            5", "deterministic-hash"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
