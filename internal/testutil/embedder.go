package testutil

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// FakeEmbedder produces deterministic embeddings without a model API.
//
// The vector is derived from token hashes, so texts sharing words produce
// nearby vectors: close enough for integration tests to exercise
// similarity ordering without real embeddings.
type FakeEmbedder struct{}

// Embed returns a unit-length vector derived from the input text.
func (FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, knowledge.VectorDimension)

	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == ' ' || text[i] == '\n' {
			if i > start {
				h := fnv.New32a()
				h.Write([]byte(text[start:i]))
				vec[h.Sum32()%knowledge.VectorDimension]++
			}
			start = i + 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}
