package ingest

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Allow letters, digits, underscore, whitespace, and common punctuation;
	// everything else becomes a space. \p{L}\p{N} instead of \w so non-ASCII
	// letters survive (RE2's \w is ASCII-only).
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?'"()-]`)
	ellipsisRe   = regexp.MustCompile(`\.{3,}`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, // left double curly
		"”", `"`, // right double curly
		"„", `"`,
		"‘", "'", // left single curly
		"’", "'", // right single curly
		"‚", "'",
	)
)

// Clean normalizes extracted text before chunking: curly quotes become
// straight quotes, runs of whitespace collapse to single spaces, characters
// outside the allow-list are dropped, and runs of 3+ periods collapse to an
// ellipsis. The result is trimmed.
func Clean(text string) string {
	text = quoteReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, " ")
	text = ellipsisRe.ReplaceAllString(text, "...")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
