package embed

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds retries of transient failures
type RetryPolicy struct {
	// MaxAttempts includes the first call (default: 4)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`

	// BaseDelay is the wait before the first retry (default: 250ms)
	BaseDelay time.Duration `yaml:"base_delay" json:"base_delay"`

	// MaxDelay caps the exponential growth (default: 5s)
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay"`

	// Jitter is the relative random spread applied to each delay (default: 0.2)
	Jitter float64 `yaml:"jitter" json:"jitter"`
}

// DefaultRetryPolicy returns the default retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
	}
}

// Backoff returns the delay before retry number attempt (0-based)
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		spread := p.Jitter * (2*rand.Float64() - 1)
		d = time.Duration(float64(d) * (1 + spread))
	}
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
