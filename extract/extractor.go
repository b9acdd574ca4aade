package extract

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/mosaic/format"
	"github.com/tsawler/mosaic/internal/logging"
	"github.com/tsawler/mosaic/layout"
	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/ocr"
	"github.com/tsawler/mosaic/tables"
)

// Config holds extraction configuration
type Config struct {
	Fragment layout.FragmentConfig `yaml:"-"`
	Line     layout.LineConfig     `yaml:"-"`
	Block    layout.BlockConfig    `yaml:"-"`
	Tables   tables.Config         `yaml:"-"`

	// OCR runs text recognition on PDF pages that carry images but no text
	OCR bool `yaml:"ocr"`

	// OCRLanguages are Tesseract language codes (default: eng)
	OCRLanguages []string `yaml:"ocr_languages"`

	// MinImageSide drops embedded PDF images smaller than this on either
	// side, in pixels (default: 16)
	MinImageSide int `yaml:"min_image_side"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Fragment:     layout.DefaultFragmentConfig(),
		Line:         layout.DefaultLineConfig(),
		Block:        layout.DefaultBlockConfig(),
		Tables:       tables.DefaultConfig(),
		MinImageSide: 16,
	}
}

// Recognizer turns a page image into text
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Option configures a Document
type Option func(*options)

type options struct {
	logger     logrus.FieldLogger
	recognizer Recognizer
}

// WithLogger sets the logger used for extraction warnings
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecognizer sets the OCR engine used when Config.OCR is on. Without it
// an ocr.Client is created on demand.
func WithRecognizer(r Recognizer) Option {
	return func(o *options) {
		o.recognizer = r
	}
}

// Page is one page of extracted regions
type Page struct {
	// Number is 1-based
	Number int

	// Regions in source order; Index matches the slice position
	Regions []model.RawRegion

	// Err is a *RegionExtractionError when the page could not be read
	Err error

	// Warnings are non-fatal problems, such as OCR being unavailable
	Warnings []error
}

// source produces the pages of one document
type source interface {
	pageCount() int
	page(ctx context.Context, number int) Page
	close() error
}

// Document is a lazy page sequence over one source document. It is not safe
// for concurrent use and cannot be restarted.
type Document struct {
	format   format.Format
	mimeType string
	src      source
	next     int
	done     bool
}

// Open resolves the document's format from mimeType (sniffing the content
// when the type is empty or generic) and prepares its pages. It fails with
// *UnprocessableError when data cannot be read as that format.
func Open(data []byte, mimeType string, cfg Config, opts ...Option) (*Document, error) {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	f, effective, err := format.Resolve(mimeType, data)
	if err != nil {
		return nil, &UnprocessableError{Format: f, MIMEType: effective, Reason: "no extractor for type", Err: err}
	}

	var src source
	switch f {
	case format.PDF:
		src, err = openPDF(data, cfg, o)
	case format.Image:
		src, err = openImage(data, effective)
	case format.Text, format.Markdown:
		src, err = openText(data)
	case format.HTML:
		src, err = openHTML(data)
	case format.DOCX:
		src, err = openDOCX(data)
	case format.XLSX:
		src, err = openXLSX(data)
	case format.PPTX:
		src, err = openPPTX(data)
	case format.ODT:
		src, err = openODT(data)
	case format.EPUB:
		src, err = openEPUB(data)
	default:
		err = format.ErrUnsupportedFormat
	}
	if err != nil {
		var ue *UnprocessableError
		if errors.As(err, &ue) {
			ue.Format, ue.MIMEType = f, effective
			return nil, ue
		}
		return nil, &UnprocessableError{Format: f, MIMEType: effective, Err: err}
	}

	o.logger.WithFields(logrus.Fields{
		"format": f.String(),
		"mime":   effective,
		"pages":  src.pageCount(),
	}).Debug("document opened")

	return &Document{format: f, mimeType: effective, src: src, next: 1}, nil
}

// Format returns the resolved document format
func (d *Document) Format() format.Format {
	return d.format
}

// MIMEType returns the effective MIME type after sniffing
func (d *Document) MIMEType() string {
	return d.mimeType
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.src.pageCount()
}

// Next returns the next page, or io.EOF after the last one
func (d *Document) Next() (*Page, error) {
	return d.NextContext(context.Background())
}

// NextContext is like Next but passes ctx to blocking work such as OCR.
func (d *Document) NextContext(ctx context.Context) (*Page, error) {
	if d.done || d.next > d.src.pageCount() {
		d.Close()
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := d.src.page(ctx, d.next)
	p.Number = d.next
	for i := range p.Regions {
		p.Regions[i].PageNumber = p.Number
		p.Regions[i].Index = i
	}
	d.next++
	return &p, nil
}

// Close releases resources held by the document. It is called automatically
// once the pages are exhausted.
func (d *Document) Close() error {
	if d.done {
		return nil
	}
	d.done = true
	return d.src.close()
}

// failedPage builds a page whose whole content could not be read
func failedPage(number int, reason string, err error) Page {
	return Page{
		Number: number,
		Err:    &RegionExtractionError{Page: number, Region: -1, Reason: reason, Err: err},
	}
}

// newOCR creates the default Recognizer
func newOCR(cfg Config) (Recognizer, error) {
	c, err := ocr.New(ocr.Config{Languages: cfg.OCRLanguages})
	if err != nil {
		return nil, err
	}
	return c, nil
}
