// Package odt reads ODT (OpenDocument text) files into pages of regions.
package odt

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// MIMEType is the media type of ODT documents
const MIMEType = "application/vnd.oasis.opendocument.text"

const contentPart = "content.xml"

// Reader holds a parsed ODT document.
type Reader struct {
	archive *zipdoc.Archive
	builder *zipdoc.PageBuilder

	// numbered maps list style name to the levels rendered with numbers
	numbered map[string]map[int]bool
	pages    []zipdoc.Page
}

// Open parses an ODT document. Headings start sections, lists keep their
// nesting, and tables and embedded pictures become their own regions.
// Pages follow the soft page breaks recorded by the last application that
// laid the document out.
func Open(data []byte) (*Reader, error) {
	a, err := zipdoc.Open(data)
	if err != nil {
		return nil, err
	}
	if err := a.Require(contentPart); err != nil {
		return nil, err
	}
	if a.Has("mimetype") {
		if mt, err := a.Read("mimetype"); err == nil && !strings.HasPrefix(strings.TrimSpace(string(mt)), MIMEType) {
			return nil, fmt.Errorf("not an OpenDocument text file: %s", strings.TrimSpace(string(mt)))
		}
	}

	r := &Reader{
		archive:  a,
		builder:  zipdoc.NewPageBuilder(MIMEType),
		numbered: make(map[string]map[int]bool),
	}
	if styles, err := a.Read("styles.xml"); err == nil {
		r.collectListStyles(styles)
	}

	content, err := a.Read(contentPart)
	if err != nil {
		return nil, err
	}
	if err := r.walkBody(content); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	r.pages = r.builder.Pages()
	return r, nil
}

// Pages returns the document's pages in order
func (r *Reader) Pages() []zipdoc.Page {
	return r.pages
}

// collectListStyles records the numbered levels of every list style found
// in a styles container
func (r *Reader) collectListStyles(data []byte) {
	d := zipdoc.NewDecoder(data)
	for {
		tok, err := d.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || (start.Name.Local != "styles" && start.Name.Local != "automatic-styles") {
			continue
		}
		var ls listStylesXML
		if err := d.DecodeElement(&ls, &start); err != nil {
			return
		}
		r.addListStyles(&ls)
	}
}

func (r *Reader) addListStyles(ls *listStylesXML) {
	for _, s := range ls.ListStyles {
		levels := make(map[int]bool)
		for _, n := range s.Numbers {
			levels[n.Level] = true
		}
		r.numbered[s.Name] = levels
	}
}

// walkBody visits office:text in document order
func (r *Reader) walkBody(data []byte) error {
	d := zipdoc.NewDecoder(data)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "document-content", "body", "text", "section", "frame", "text-box":
		case "automatic-styles":
			var ls listStylesXML
			if err := d.DecodeElement(&ls, &start); err != nil {
				return err
			}
			r.addListStyles(&ls)
		case "h":
			var p paragraphXML
			if err := d.DecodeElement(&p, &start); err != nil {
				return err
			}
			r.paragraph(&p, true)
		case "p":
			var p paragraphXML
			if err := d.DecodeElement(&p, &start); err != nil {
				return err
			}
			r.paragraph(&p, false)
		case "list":
			var l listXML
			if err := d.DecodeElement(&l, &start); err != nil {
				return err
			}
			r.list(&l, "", 0)
		case "table":
			var t tableXML
			if err := d.DecodeElement(&t, &start); err != nil {
				return err
			}
			r.table(&t)
		case "image":
			r.images([]string{zipdoc.Attr(start, "href")})
			if err := d.Skip(); err != nil {
				return err
			}
		case "soft-page-break":
			r.builder.PageBreak()
			if err := d.Skip(); err != nil {
				return err
			}
		default:
			// tables of contents, indexes, declarations and forms
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) paragraph(p *paragraphXML, heading bool) {
	if p.BreakBefore {
		r.builder.PageBreak()
	}
	if heading {
		r.builder.Heading(zipdoc.CollapseSpace(p.Text))
	} else {
		r.builder.Paragraph(p.Text)
	}
	r.images(p.Images)
	if p.BreakAfter {
		r.builder.PageBreak()
	}
}

// list emits the items of l and its nested lists. Nested lists inherit the
// style of their parent unless they name one.
func (r *Reader) list(l *listXML, style string, level int) {
	if l.StyleName != "" {
		style = l.StyleName
	}
	if l.Header != nil {
		r.builder.Paragraph(l.Header.text())
	}
	n := 0
	for i := range l.Items {
		item := &l.Items[i]
		if text := item.text(); text != "" {
			marker := "-"
			if r.numbered[style][level+1] {
				n++
				marker = strconv.Itoa(n) + "."
			}
			r.builder.ListItem(level, marker, text)
		}
		for j := range item.Lists {
			r.list(&item.Lists[j], style, level+1)
		}
		for _, p := range item.Paragraphs {
			r.images(p.Images)
		}
	}
}

func (r *Reader) table(t *tableXML) {
	raw := &model.RawTable{}
	add := func(rows []rowXML) {
		for _, row := range rows {
			if len(row.Cells) == 0 {
				continue
			}
			for range row.Repeat {
				raw.Rows = append(raw.Rows, row.Cells)
			}
		}
	}
	add(t.HeaderRows)
	raw.HeaderRows = len(raw.Rows)
	add(t.Rows)
	add(t.RowGroups)
	if raw.HeaderRows == len(raw.Rows) {
		raw.HeaderRows = 0
	}
	r.builder.Table(raw)
}

// images emits embedded pictures. External links and vector formats are
// skipped.
func (r *Reader) images(hrefs []string) {
	for _, href := range hrefs {
		if href == "" || strings.Contains(href, "://") {
			continue
		}
		name := zipdoc.Resolve(contentPart, href)
		region, err := r.archive.Image(name)
		if errors.Is(err, zipdoc.ErrNotRaster) {
			continue
		}
		if err != nil {
			r.builder.Warn(fmt.Errorf("image %s: %w", name, err))
			continue
		}
		r.builder.Image(region)
	}
}
