package embed

import (
	"context"
	"errors"
)

// Embedder maps text to a vector. Implementations must be safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model name
	Model() string
}

// ErrEmptyInput is returned when there is no text to embed
var ErrEmptyInput = errors.New("embed: empty input")

// ErrDimensionMismatch is returned when a provider yields a vector of the
// wrong length
var ErrDimensionMismatch = errors.New("embed: dimension mismatch")
