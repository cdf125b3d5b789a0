package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedder_deterministic(t *testing.T) {
	e := NewHashEmbedder(DefaultDimensions)
	ctx := context.Background()
	v1, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatal(err)
	}
	v2, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatal(err)
	}
	if len(v1) != DefaultDimensions {
		t.Fatalf("dimension = %d", len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, v1[i], v2[i])
		}
	}
}

func TestHashEmbedder_unitNorm(t *testing.T) {
	e := NewHashEmbedder(DefaultDimensions)
	for _, text := range []string{"a", "hello world", "契約書", "x y z w"} {
		v, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		for _, x := range v {
			sum += x * x
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-9 {
			t.Errorf("norm for %q = %v, want 1", text, math.Sqrt(sum))
		}
	}
}

func TestHashEmbedder_differentTexts(t *testing.T) {
	e := NewHashEmbedder(64)
	v1, _ := e.Embed(context.Background(), "alpha")
	v2, _ := e.Embed(context.Background(), "beta")
	same := true
	for i := range v1 {
		if v1[i] != v2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestHashEmbedder_defaultDimensions(t *testing.T) {
	e := NewHashEmbedder(0)
	if e.Dimensions() != DefaultDimensions {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestEmbedBatch(t *testing.T) {
	e := NewHashEmbedder(32)
	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "one"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 {
		t.Fatalf("len = %d", len(vecs))
	}
	for i := range vecs[0] {
		if vecs[0][i] != vecs[2][i] {
			t.Fatal("identical texts in a batch should embed identically")
		}
	}
}

func TestCosineSimilarity_symmetryAndBounds(t *testing.T) {
	e := NewHashEmbedder(DefaultDimensions)
	a, _ := e.Embed(context.Background(), "first document text")
	b, _ := e.Embed(context.Background(), "second document text")
	ab := CosineSimilarity(a, b)
	ba := CosineSimilarity(b, a)
	if ab != ba {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Errorf("similarity out of bounds: %v", ab)
	}
	if self := CosineSimilarity(a, a); math.Abs(self-1.0) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", self)
	}
}

func TestCosineSimilarity_clampsNegative(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{-1, 0}
	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("antiparallel vectors should score 0, got %v", got)
	}
}

func TestCosineSimilarity_zeroVector(t *testing.T) {
	if got := CosineSimilarity([]float64{0, 0}, []float64{1, 0}); got != 0 {
		t.Errorf("zero vector should score 0, got %v", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors should score 0, got %v", got)
	}
}

func TestDigestGroups(t *testing.T) {
	groups := digestGroups("test")
	// MD5 contributes 4 groups, SHA-1 5, SHA-256 8.
	if len(groups) != 17 {
		t.Errorf("group count = %d, want 17", len(groups))
	}
	again := digestGroups("test")
	if groups[0] != again[0] {
		t.Error("digest groups should be stable")
	}
}
