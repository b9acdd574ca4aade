// Package format resolves the format of a source document from its declared
// MIME type, its file name, or its content.
package format

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned when a MIME type maps to no extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// Image indicates a standalone raster image.
	Image
	// Text indicates plain text.
	Text
	// Markdown indicates markdown text.
	Markdown
	// HTML indicates an HTML document.
	HTML
	// DOCX indicates a Word (Office Open XML) document.
	DOCX
	// XLSX indicates an Excel (Office Open XML) workbook.
	XLSX
	// PPTX indicates a PowerPoint (Office Open XML) presentation.
	PPTX
	// ODT indicates an OpenDocument text document.
	ODT
	// EPUB indicates an EPUB e-book.
	EPUB
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case Image:
		return "Image"
	case Text:
		return "Text"
	case Markdown:
		return "Markdown"
	case HTML:
		return "HTML"
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case ODT:
		return "ODT"
	case EPUB:
		return "EPUB"
	default:
		return "Unknown"
	}
}

// MIMEType returns the canonical MIME type for the format. Image has no
// single canonical type and returns "image/*".
func (f Format) MIMEType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case Image:
		return "image/*"
	case Text:
		return "text/plain"
	case Markdown:
		return "text/markdown"
	case HTML:
		return "text/html"
	case DOCX:
		return mimeDOCX
	case XLSX:
		return mimeXLSX
	case PPTX:
		return mimePPTX
	case ODT:
		return mimeODT
	case EPUB:
		return mimeEPUB
	default:
		return "application/octet-stream"
	}
}

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeODT  = "application/vnd.oasis.opendocument.text"
	mimeEPUB = "application/epub+zip"
)

var imageTypes = map[string]bool{
	"image/png":      true,
	"image/jpeg":     true,
	"image/jpg":      true,
	"image/gif":      true,
	"image/bmp":      true,
	"image/x-ms-bmp": true,
	"image/tiff":     true,
	"image/webp":     true,
}

// FromMIME maps a MIME type (parameters allowed) to a Format.
func FromMIME(mimeType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return Unknown, fmt.Errorf("parse MIME type %q: %w", mimeType, err)
	}
	switch {
	case mediaType == "application/pdf", mediaType == "application/x-pdf":
		return PDF, nil
	case imageTypes[mediaType]:
		return Image, nil
	case mediaType == "text/plain":
		return Text, nil
	case mediaType == "text/markdown", mediaType == "text/x-markdown":
		return Markdown, nil
	case mediaType == "text/html", mediaType == "application/xhtml+xml":
		return HTML, nil
	case mediaType == mimeDOCX:
		return DOCX, nil
	case mediaType == mimeXLSX:
		return XLSX, nil
	case mediaType == mimePPTX:
		return PPTX, nil
	case mediaType == mimeODT:
		return ODT, nil
	case mediaType == mimeEPUB:
		return EPUB, nil
	default:
		return Unknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return Image
	case ".txt", ".text", ".log":
		return Text
	case ".md", ".markdown":
		return Markdown
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".odt":
		return ODT
	case ".epub":
		return EPUB
	default:
		return Unknown
	}
}

// Sniff returns the MIME type detected from the content itself.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// isGeneric reports whether a declared MIME type carries no format
// information. Office and e-book files are zip containers and are often
// declared as plain zip.
func isGeneric(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.TrimSpace(mimeType) == ""
	}
	switch mediaType {
	case "application/octet-stream", "binary/octet-stream", "application/zip", "application/x-zip-compressed":
		return true
	}
	return false
}

// Resolve returns the format of data given its declared MIME type. An empty
// or generic declared type is replaced by the sniffed type. The effective MIME
// type is returned alongside the format.
func Resolve(declared string, data []byte) (Format, string, error) {
	effective := declared
	if strings.TrimSpace(declared) == "" || isGeneric(declared) {
		effective = Sniff(data)
	}
	f, err := FromMIME(effective)
	if err != nil {
		return Unknown, effective, err
	}
	return f, effective, nil
}
