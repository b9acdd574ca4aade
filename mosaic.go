// Package mosaic provides a fluent API for turning documents into embedded,
// retrieval-ready chunks.
//
// Basic usage:
//
//	chunks, res, err := mosaic.Open("report.pdf").Chunks(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, d := range res.Diagnostics {
//	    log.Println("diagnostic:", d)
//	}
//
// With options:
//
//	chunks, _, err := mosaic.FromBytes(data, "text/html").
//	    DocumentID("faq-2024").
//	    Workers(4).
//	    WithLogger(logger).
//	    Chunks(ctx)
//
// The pipeline, extract and embed packages are available for finer control.
package mosaic

import (
	"github.com/tsawler/mosaic/config"
)

// Open returns an Extractor for the file at path. The file is read when a
// terminal operation runs. The MIME type is taken from the file extension
// when it names a single format and sniffed from the content otherwise.
//
// Example:
//
//	chunks, res, err := mosaic.Open("document.pdf").Chunks(ctx)
func Open(path string) *Extractor {
	return &Extractor{
		path:    path,
		options: defaultOptions(),
		cfg:     config.Default(),
	}
}

// FromBytes returns an Extractor for an in-memory document. An empty or
// generic mimeType is replaced by the sniffed type.
//
// Example:
//
//	chunks, _, err := mosaic.FromBytes(body, resp.Header.Get("Content-Type")).Chunks(ctx)
func FromBytes(data []byte, mimeType string) *Extractor {
	return &Extractor{
		data:     data,
		mimeType: mimeType,
		inMemory: true,
		options:  defaultOptions(),
		cfg:      config.Default(),
	}
}

// Must is a helper that wraps a call returning (T, *pipeline.Result, error)
// and panics if the error is non-nil. It is intended for scripts or tests
// where error handling would be cumbersome.
//
// Example:
//
//	chunks := mosaic.Must(mosaic.Open("notes.txt").Chunks(ctx))
func Must[T, R any](val T, _ R, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
