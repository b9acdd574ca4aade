// Package docx reads DOCX (Office Open XML word processing) documents into
// pages of regions.
package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// MIMEType is the media type of DOCX documents
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPart = "word/document.xml"

// maxGridSpan caps w:gridSpan so a hostile value cannot blow up a row
const maxGridSpan = 64

// Reader holds a parsed DOCX document.
type Reader struct {
	archive   *zipdoc.Archive
	rels      map[string]zipdoc.Relationship
	styles    styleSet
	numbering *numbering
	builder   *zipdoc.PageBuilder
	pages     []zipdoc.Page
}

// Open parses a DOCX document. Paragraphs are grouped into sections under
// their headings; tables and images become their own regions. Pages follow
// explicit page breaks and the breaks Word recorded when it last laid the
// document out.
func Open(data []byte) (*Reader, error) {
	a, err := zipdoc.Open(data)
	if err != nil {
		return nil, err
	}
	if err := a.Require("[Content_Types].xml", documentPart); err != nil {
		return nil, err
	}

	rels, err := a.Relationships(documentPart)
	if err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	r := &Reader{
		archive: a,
		rels:    rels,
		builder: zipdoc.NewPageBuilder(MIMEType),
	}

	// styles and numbering are optional
	var styles stylesXML
	if a.Unmarshal("word/styles.xml", &styles) == nil {
		r.styles = newStyleSet(&styles)
	} else {
		r.styles = newStyleSet(nil)
	}
	var num numberingXML
	if a.Unmarshal("word/numbering.xml", &num) == nil {
		r.numbering = newNumbering(&num)
	} else {
		r.numbering = newNumbering(nil)
	}

	data, err = a.Read(documentPart)
	if err != nil {
		return nil, err
	}
	if err := r.walkBody(data); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	r.pages = r.builder.Pages()
	return r, nil
}

// Pages returns the document's pages in order
func (r *Reader) Pages() []zipdoc.Page {
	return r.pages
}

// walkBody visits the body's block content in document order, descending
// into content controls.
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
		case "document", "body", "sdt", "sdtContent", "customXml", "ins", "smartTag":
		case "p":
			var p paragraphXML
			if err := d.DecodeElement(&p, &start); err != nil {
				return err
			}
			r.paragraph(&p)
		case "tbl":
			var t tableXML
			if err := d.DecodeElement(&t, &start); err != nil {
				return err
			}
			r.table(&t)
		default:
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) paragraph(p *paragraphXML) {
	if p.BreakBefore || p.Props.PageBreakBefore.on() {
		r.builder.PageBreak()
	}

	switch numPr := p.Props.NumPr; {
	case r.styles.isHeading(p.Props):
		r.builder.Heading(zipdoc.CollapseSpace(p.Text))
	case numPr != nil && numPr.NumID.Val != "" && numPr.NumID.Val != "0":
		level, _ := strconv.Atoi(numPr.ILvl.Val)
		r.builder.ListItem(level, r.numbering.next(numPr.NumID.Val, level), zipdoc.CollapseSpace(p.Text))
	default:
		r.builder.Paragraph(p.Text)
	}
	r.images(p.Images)

	if p.BreakAfter {
		r.builder.PageBreak()
	}
}

// table emits the table, followed by any images found in its cells.
// Horizontally merged cells are padded so columns stay aligned; cells that
// continue a vertical merge are left empty.
func (r *Reader) table(t *tableXML) {
	raw := &model.RawTable{}
	var images []string
	inHeader := true
	for _, row := range t.Rows {
		var cells []string
		for i := range row.Cells {
			c := &row.Cells[i]
			text := ""
			if !c.continuation() {
				text = c.text()
			}
			cells = append(cells, text)

			span, _ := strconv.Atoi(c.Props.GridSpan.Val)
			for j := 1; j < min(span, maxGridSpan); j++ {
				cells = append(cells, "")
			}
			images = append(images, c.images()...)
		}
		if len(cells) == 0 {
			continue
		}
		if inHeader && row.Props.Header.on() {
			raw.HeaderRows++
		} else {
			inHeader = false
		}
		raw.Rows = append(raw.Rows, cells)
	}
	r.builder.Table(raw)
	r.images(images)
}

// images emits the embedded images behind relationship ids. Linked images
// and vector formats are skipped.
func (r *Reader) images(ids []string) {
	for _, id := range ids {
		rel, ok := r.rels[id]
		if !ok || rel.External() {
			continue
		}
		region, err := r.archive.Image(rel.Target)
		if errors.Is(err, zipdoc.ErrNotRaster) {
			continue
		}
		if err != nil {
			r.builder.Warn(fmt.Errorf("image %s: %w", rel.Target, err))
			continue
		}
		r.builder.Image(region)
	}
}
