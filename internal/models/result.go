package models

// SimilarityResult is a single similarity-search hit. Distance is the raw
// cosine distance reported by the index (0 = identical, 2 = opposite);
// Similarity is the mapped score in [0,1]. Results are transient and never
// persisted.
type SimilarityResult struct {
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Distance   float64       `json:"distance"`
	Similarity float64       `json:"similarity"`
}

// KeywordResult is a single keyword-search hit from the supplementary index.
type KeywordResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// CollectionStats summarizes the indexed collection.
type CollectionStats struct {
	TotalChunks       int            `json:"total_chunks"`
	TotalDocuments    int            `json:"total_documents"`
	TotalSizeBytes    int64          `json:"total_size_bytes"`
	CollectionName    string         `json:"collection_name"`
	StoragePath       string         `json:"storage_path"`
	EmbeddingMethod   string         `json:"embedding_method"`
	SupportedFormats  []string       `json:"supported_formats"`
	FileTypeBreakdown map[string]int `json:"file_type_breakdown"`
}

// HealthStatus reports whether the engine's stores are reachable.
type HealthStatus struct {
	Status             string   `json:"status"`
	IndexAccessible    bool     `json:"index_accessible"`
	DocumentCount      int      `json:"document_count"`
	EmbeddingDimension int      `json:"embedding_dimension"`
	SupportedFormats   []string `json:"supported_formats"`
	Error              string   `json:"error,omitempty"`
}
