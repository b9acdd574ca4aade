package embed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tsawler/mosaic/internal/logging"
)

// Client wraps an Embedder with rate limiting, per-call timeouts, retries and
// dimension enforcement. A Client is safe for concurrent use and is meant to
// be shared.
type Client struct {
	embedder Embedder
	limiter  *rate.Limiter
	timeout  time.Duration
	retry    RetryPolicy
	logger   logrus.FieldLogger

	mu  sync.RWMutex
	dim int
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout (default: 10s)
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetryPolicy sets the retry policy
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		if p.MaxAttempts < 1 {
			p.MaxAttempts = 1
		}
		c.retry = p
	}
}

// WithRateLimit allows rps calls per second with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithLimiter shares an existing limiter
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithLogger sets the logger for retry and failure messages
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client producing vectors of length dim. A dim of 0
// adopts the length of the first vector returned.
func NewClient(e Embedder, dim int, opts ...ClientOption) *Client {
	c := &Client{
		embedder: e,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		timeout:  10 * time.Second,
		retry:    DefaultRetryPolicy(),
		logger:   logging.Discard(),
		dim:      dim,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dimension returns the vector length, or 0 before auto-detection
func (c *Client) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dim
}

// Model returns the underlying model name
func (c *Client) Model() string {
	return c.embedder.Model()
}

// Embed embeds text. Transient failures are retried per the retry policy;
// permanent failures return at once. The returned error is always a
// *ServiceError.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embed"
	if text == "" {
		return nil, Classify(op, ErrEmptyInput)
	}

	var last *ServiceError
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retry.Backoff(attempt - 1)
			c.logger.WithFields(logrus.Fields{
				"model":   c.embedder.Model(),
				"attempt": attempt + 1,
				"delay":   delay.String(),
				"error":   last.Err,
			}).Debug("retrying embedding call")
			if err := sleep(ctx, delay); err != nil {
				return nil, &ServiceError{Kind: Transient, Op: op, Attempts: attempt, Err: err}
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ServiceError{Kind: Transient, Op: op, Attempts: attempt, Err: err}
		}

		vec, err := c.call(ctx, text)
		if err == nil {
			return vec, nil
		}

		last = Classify(op, err)
		last.Attempts = attempt + 1
		if last.Kind == Permanent {
			return nil, last
		}
	}
	return nil, last
}

func (c *Client) call(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vec, err := c.embedder.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}
	return vec, c.checkDimension(len(vec))
}

func (c *Client) checkDimension(n int) error {
	c.mu.RLock()
	dim := c.dim
	c.mu.RUnlock()

	if dim == 0 && n > 0 {
		c.mu.Lock()
		if c.dim == 0 {
			c.dim = n
		}
		dim = c.dim
		c.mu.Unlock()
	}
	if n != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, n, dim)
	}
	return nil
}
