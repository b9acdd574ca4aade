package mosaic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/mosaic/config"
	"github.com/tsawler/mosaic/embed"
	"github.com/tsawler/mosaic/format"
	"github.com/tsawler/mosaic/index"
	"github.com/tsawler/mosaic/internal/logging"
	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/pipeline"
)

// Extractor provides a fluent interface for chunking one document.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	path     string
	data     []byte
	mimeType string
	inMemory bool

	// Configuration
	cfg     *config.Config
	options chunkOptions
	store   *index.Store

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Extractor with its own configuration.
// The document bytes are shared and never modified.
func (e *Extractor) clone() *Extractor {
	cfg := *e.cfg
	return &Extractor{
		path:     e.path,
		data:     e.data,
		mimeType: e.mimeType,
		inMemory: e.inMemory,
		cfg:      &cfg,
		options:  e.options.clone(),
		store:    e.store,
		err:      e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// WithConfig replaces the configuration. The embedding provider it names is
// used unless WithEmbedder is also given. An invalid config is reported by
// the terminal operation.
//
// Example:
//
//	cfg, err := config.Load("mosaic.yaml")
//	chunks, _, err := mosaic.Open("doc.pdf").WithConfig(cfg).Chunks(ctx)
func (e *Extractor) WithConfig(cfg *config.Config) *Extractor {
	newExt := e.clone()
	if cfg == nil {
		newExt.err = errors.New("mosaic: nil config")
		return newExt
	}
	if err := cfg.Validate(); err != nil {
		newExt.err = fmt.Errorf("mosaic: invalid config: %w", err)
		return newExt
	}
	c := *cfg
	newExt.cfg = &c
	return newExt
}

// WithEmbedder sets the embedder, overriding the configured provider.
//
// Example:
//
//	client := embed.NewClient(embed.NewHashing(256), 256)
//	ext := mosaic.Open("doc.pdf").WithEmbedder(embed.NewContentEmbedder(client))
func (e *Extractor) WithEmbedder(ce *embed.ContentEmbedder) *Extractor {
	newExt := e.clone()
	newExt.options.embedder = ce
	return newExt
}

// WithLogger sets the logger. Without one the pipeline is silent.
func (e *Extractor) WithLogger(l logrus.FieldLogger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// DocumentID sets the identifier stamped on every chunk. Without it a
// random UUID is generated.
func (e *Extractor) DocumentID(id string) *Extractor {
	newExt := e.clone()
	newExt.options.documentID = id
	return newExt
}

// MIMEType overrides the declared MIME type of the document.
func (e *Extractor) MIMEType(mimeType string) *Extractor {
	newExt := e.clone()
	newExt.mimeType = mimeType
	return newExt
}

// Workers bounds the number of regions processed concurrently.
//
// Example:
//
//	chunks, _, err := mosaic.Open("big.pdf").Workers(2).Chunks(ctx)
func (e *Extractor) Workers(n int) *Extractor {
	newExt := e.clone()
	if n <= 0 {
		newExt.err = fmt.Errorf("mosaic: workers must be positive, got %d", n)
		return newExt
	}
	newExt.options.regionWorkers = n
	return newExt
}

// IndexInto stores the produced chunks in store, replacing any chunks the
// same document had before.
func (e *Extractor) IndexInto(store *index.Store) *Extractor {
	newExt := e.clone()
	newExt.store = store
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Chunks runs the document through the pipeline and returns its chunks in
// source order. The Result is returned whenever processing started, also
// when err is non-nil, and carries the diagnostics.
//
// Example:
//
//	chunks, res, err := mosaic.Open("document.pdf").Chunks(ctx)
//	fmt.Println(res.Summary())
func (e *Extractor) Chunks(ctx context.Context) ([]model.Chunk, *pipeline.Result, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	doc, err := e.document()
	if err != nil {
		return nil, nil, err
	}

	logger := e.options.logger
	if logger == nil {
		logger = logging.Discard()
	}

	ce := e.options.embedder
	if ce == nil {
		client, err := embed.NewFromConfig(ctx, e.cfg.Embed, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("mosaic: embedder: %w", err)
		}
		ce = embed.NewContentEmbedder(client)
	}

	pcfg := e.cfg.Pipeline
	if e.options.regionWorkers > 0 {
		pcfg.RegionWorkers = e.options.regionWorkers
	}

	p := pipeline.New(ce, pipeline.WithConfig(pcfg), pipeline.WithLogger(logger))
	res, err := p.Process(ctx, doc)
	if err != nil {
		return nil, res, err
	}

	if e.store != nil {
		if err := e.store.DeleteDocument(ctx, res.DocumentID); err != nil {
			return res.Chunks, res, fmt.Errorf("mosaic: index: %w", err)
		}
		if err := e.store.Put(ctx, res.Chunks); err != nil {
			return res.Chunks, res, fmt.Errorf("mosaic: index: %w", err)
		}
	}
	return res.Chunks, res, nil
}

// document loads the source into a pipeline.Document
func (e *Extractor) document() (pipeline.Document, error) {
	doc := pipeline.Document{
		ID:       e.options.documentID,
		MIMEType: e.mimeType,
		Data:     e.data,
	}
	if e.inMemory {
		return doc, nil
	}

	if e.path == "" {
		return doc, errors.New("mosaic: no filename specified")
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return doc, fmt.Errorf("mosaic: %w", err)
	}
	doc.Data = data
	doc.Name = filepath.Base(e.path)
	if doc.MIMEType == "" {
		doc.MIMEType = MIMETypeForPath(e.path)
	}
	return doc, nil
}

// MIMETypeForPath returns the MIME type implied by the file extension, or ""
// when the extension does not name a single format and the content must be
// sniffed.
func MIMETypeForPath(path string) string {
	switch f := format.Detect(path); f {
	case format.Unknown, format.Image:
		return ""
	default:
		return f.MIMEType()
	}
}
