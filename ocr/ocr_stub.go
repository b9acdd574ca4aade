//go:build !ocr

package ocr

import "context"

// Client is the placeholder used when OCR support is not compiled in
type Client struct{}

// New returns ErrOCRNotEnabled
func New(Config) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled
func (c *Client) Recognize(context.Context, []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}
