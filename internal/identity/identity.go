// Package identity derives deterministic identifiers for documents and chunks.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

const docPrefix = "doc"

// DocumentID returns a stable identifier for an uploaded file:
// "doc_" + first 4 hex chars of md5(filename) + "_" + first 8 hex chars of md5(content).
// Re-uploading byte-identical content under the same filename yields the same
// ID, which makes repeated ingestion idempotent at the identity layer. Two
// files with the same name and bytes are intentionally the same logical
// document; distinct content collides only by MD5 collision (accepted risk).
func DocumentID(filename string, content []byte) string {
	nameSum := md5.Sum([]byte(filename))
	contentSum := md5.Sum(content)
	return fmt.Sprintf("%s_%s_%s",
		docPrefix,
		hex.EncodeToString(nameSum[:])[:4],
		hex.EncodeToString(contentSum[:])[:8],
	)
}

// ChunkID returns the identifier for chunk index within a document.
// Indices are 0-based and contiguous.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
