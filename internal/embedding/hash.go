package embedding

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/marukodo/bunsho/pkg/utils"
)

// DefaultDimensions is the embedding dimension used across the engine.
const DefaultDimensions = 384

// HashEmbedder generates reproducible, unit-normalized vectors from text
// without a trained model. The same string always embeds to the same vector,
// across process restarts, which is what the round-trip guarantees rely on.
//
// Algorithm: salt the text with "_0", "_1", "_2" and digest with MD5, SHA-1,
// and SHA-256 respectively; split each hex digest into 8-char groups parsed
// as uint32; seed math/rand with the first group; draw Dimensions() standard
// normal samples (Ziggurat NormFloat64); normalize to unit L2 norm.
//
// math/rand is the fixed PRNG here: its sequence for a given seed is stable
// across runs and Go releases. Vectors are only comparable to vectors
// produced by this same scheme; they carry no semantic meaning.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a deterministic embedder of the given dimensions.
// Non-positive dimensions fall back to DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the deterministic embedding for text.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	groups := digestGroups(text)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no digest groups for text")
	}
	rng := rand.New(rand.NewSource(int64(groups[0])))
	vec := make([]float64, e.dimensions)
	for i := range vec {
		vec[i] = rng.NormFloat64()
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently. Embedding is pure and CPU-bound,
// so callers may shard batches across goroutines if they want parallelism.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// digestGroups hashes the salted text with three digest functions and returns
// every 8-hex-char group of the concatenated digests as uint32 values.
// MD5 (32 hex), SHA-1 (40 hex), and SHA-256 (64 hex) yield 17 groups.
func digestGroups(text string) []uint32 {
	var hexes [3]string
	md5Sum := md5.Sum([]byte(text + "_0"))
	hexes[0] = hex.EncodeToString(md5Sum[:])
	sha1Sum := sha1.Sum([]byte(text + "_1"))
	hexes[1] = hex.EncodeToString(sha1Sum[:])
	sha256Sum := sha256.Sum256([]byte(text + "_2"))
	hexes[2] = hex.EncodeToString(sha256Sum[:])

	var groups []uint32
	for _, h := range hexes {
		for i := 0; i+8 <= len(h); i += 8 {
			// Digest hex is always valid, so the parse cannot fail.
			v, _ := strconv.ParseUint(h[i:i+8], 16, 32)
			groups = append(groups, uint32(v))
		}
	}
	return groups
}
