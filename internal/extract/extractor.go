// Package extract provides text extraction from supported document formats.
package extract

import (
	"fmt"
	"strings"
)

// Extractor extracts plain text from raw document bytes, one format per
// extension. It implements the pipeline's TextExtractor contract.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes extracts text from content based on ext (with leading dot,
// case-insensitive). Supported: .pdf, .txt, .docx, .xlsx. Unknown extensions
// are an error; callers are expected to validate the format first.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("no extractor for %q", ext)
	}
}
