package zipdoc

import (
	"strings"

	"github.com/tsawler/mosaic/model"
)

// Page is one page of regions produced by a container reader
type Page struct {
	Regions  []model.RawRegion
	Warnings []error
}

// PageBuilder assembles regions in reading order. Consecutive paragraphs
// are grouped into one text region per section: a heading starts a new
// section, while tables, images and page breaks close the current one.
type PageBuilder struct {
	mimeType string
	pages    []Page
	current  Page

	parts  []string
	inList bool
}

// NewPageBuilder creates a builder whose text and table regions carry mimeType
func NewPageBuilder(mimeType string) *PageBuilder {
	return &PageBuilder{mimeType: mimeType}
}

// Heading closes the current section and starts a new one titled text
func (b *PageBuilder) Heading(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.flushText()
	b.parts = append(b.parts, text)
}

// Paragraph appends text to the current section
func (b *PageBuilder) Paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.parts = append(b.parts, text)
	b.inList = false
}

// ListItem appends a list line. Consecutive items share one block.
func (b *PageBuilder) ListItem(level int, marker, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	line := strings.Repeat("  ", max(level, 0)) + marker + " " + text
	if b.inList && len(b.parts) > 0 {
		b.parts[len(b.parts)-1] += "\n" + line
		return
	}
	b.parts = append(b.parts, line)
	b.inList = true
}

// Table emits a table region. Tables without rows are dropped.
func (b *PageBuilder) Table(t *model.RawTable) {
	if t == nil || len(t.Rows) == 0 {
		return
	}
	b.flushText()
	b.current.Regions = append(b.current.Regions, model.RawRegion{
		Type:     model.RegionTable,
		Table:    t,
		MIMEType: b.mimeType,
	})
}

// Image emits an image region
func (b *PageBuilder) Image(r model.RawRegion) {
	b.flushText()
	r.Type = model.RegionImage
	b.current.Regions = append(b.current.Regions, r)
}

// Text emits text as its own region, outside any section
func (b *PageBuilder) Text(text string) {
	b.flushText()
	if text = strings.TrimSpace(text); text != "" {
		b.current.Regions = append(b.current.Regions, model.RawRegion{
			Type:     model.RegionText,
			Text:     text,
			MIMEType: b.mimeType,
		})
	}
}

// Warn records a non-fatal problem on the current page
func (b *PageBuilder) Warn(err error) {
	if err != nil {
		b.current.Warnings = append(b.current.Warnings, err)
	}
}

// PageBreak starts a new page. It does nothing on an empty page, so
// repeated breaks never produce blank pages.
func (b *PageBuilder) PageBreak() {
	b.flushText()
	if len(b.current.Regions) == 0 && len(b.current.Warnings) == 0 {
		return
	}
	b.pages = append(b.pages, b.current)
	b.current = Page{}
}

// Pages closes the builder and returns the pages built so far
func (b *PageBuilder) Pages() []Page {
	b.PageBreak()
	pages := b.pages
	b.pages = nil
	return pages
}

func (b *PageBuilder) flushText() {
	b.inList = false
	if len(b.parts) == 0 {
		return
	}
	b.current.Regions = append(b.current.Regions, model.RawRegion{
		Type:     model.RegionText,
		Text:     strings.Join(b.parts, "\n\n"),
		MIMEType: b.mimeType,
	})
	b.parts = nil
}

// CollapseSpace joins the whitespace-separated fields of s with single spaces
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
