package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Hashing is a local feature-hashing embedder. Lowercased word unigrams and
// bigrams are hashed into signed buckets and the result is L2-normalized.
// It needs no service and is deterministic, so it serves offline runs and
// tests.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing embedder with dim buckets
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = 384
	}
	return &Hashing{dim: dim}
}

// Model returns the model name
func (h *Hashing) Model() string {
	return "hashing"
}

// Embed implements Embedder
func (h *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		// punctuation-only input still gets a non-zero vector
		h.add(vec, text)
	}
	for i, w := range words {
		h.add(vec, w)
		if i > 0 {
			h.add(vec, words[i-1]+" "+w)
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dim)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *Hashing) add(vec []float64, feature string) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum>>63 == 1 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}
