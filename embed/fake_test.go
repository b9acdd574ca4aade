package embed

import (
	"context"
	"sync"
	"time"
)

// scriptedEmbedder returns errs in order, then vectors of length dim
type scriptedEmbedder struct {
	mu    sync.Mutex
	dim   int
	errs  []error
	calls int
	texts []string
}

func (s *scriptedEmbedder) Model() string { return "scripted" }

func (s *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.texts = append(s.texts, text)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	v := make([]float32, s.dim)
	v[0] = 1
	return v, nil
}

// blockingEmbedder waits for its context to end
type blockingEmbedder struct{}

func (blockingEmbedder) Model() string { return "blocking" }

func (blockingEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}
