//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract engine. Recognition calls are serialized because
// the engine is not safe for concurrent use.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a client. Close releases the engine.
func New(cfg Config) (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.languages()...); err != nil {
		client.Close()
		return nil, fmt.Errorf("ocr language: %w", err)
	}
	return &Client{client: client}, nil
}

// Recognize returns the text found in an encoded image (PNG, JPEG, TIFF...)
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the engine
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
