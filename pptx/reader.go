// Package pptx reads PPTX (Office Open XML presentation) files into pages
// of regions, one page per slide.
package pptx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// MIMEType is the media type of PPTX presentations
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

const presentationPart = "ppt/presentation.xml"

// NotesPrefix introduces the speaker notes region of a slide
const NotesPrefix = "Speaker notes: "

// Reader holds a parsed PPTX presentation.
type Reader struct {
	archive *zipdoc.Archive
	builder *zipdoc.PageBuilder
	pages   []zipdoc.Page
}

// Open parses a PPTX presentation. Slides are read in presentation order
// and their shapes in z-order: titles start sections, text boxes become
// text, tables and pictures become their own regions, and speaker notes
// close the slide. Slides without content produce no page.
func Open(data []byte) (*Reader, error) {
	a, err := zipdoc.Open(data)
	if err != nil {
		return nil, err
	}
	if err := a.Require(presentationPart); err != nil {
		return nil, err
	}

	var pres presentationXML
	if err := a.Unmarshal(presentationPart, &pres); err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	rels, err := a.Relationships(presentationPart)
	if err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	r := &Reader{archive: a, builder: zipdoc.NewPageBuilder(MIMEType)}
	for i, s := range pres.Slides {
		rel, ok := rels[s.RID]
		if !ok || rel.External() {
			continue
		}
		if err := r.slide(rel.Target); err != nil {
			r.builder.Warn(fmt.Errorf("slide %d: %w", i+1, err))
		}
		r.builder.PageBreak()
	}
	r.pages = r.builder.Pages()
	return r, nil
}

// Pages returns one page per non-empty slide, in presentation order
func (r *Reader) Pages() []zipdoc.Page {
	return r.pages
}

func (r *Reader) slide(part string) error {
	data, err := r.archive.Read(part)
	if err != nil {
		return err
	}
	rels, err := r.archive.Relationships(part)
	if err != nil {
		return err
	}
	if err := r.walkShapes(data, rels); err != nil {
		return err
	}

	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, "/notesSlide") && !rel.External() {
			notes, err := r.notes(rel.Target)
			if err != nil {
				return fmt.Errorf("speaker notes: %w", err)
			}
			if notes != "" {
				r.builder.Text(NotesPrefix + notes)
			}
		}
	}
	return nil
}

// walkShapes visits the shape tree in order, descending into groups
func (r *Reader) walkShapes(data []byte, rels map[string]zipdoc.Relationship) error {
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
		case "sld", "cSld", "spTree", "grpSp", "AlternateContent", "Choice":
		case "sp":
			var sp shapeXML
			if err := d.DecodeElement(&sp, &start); err != nil {
				return err
			}
			r.shape(&sp)
		case "graphicFrame":
			var gf graphicFrameXML
			if err := d.DecodeElement(&gf, &start); err != nil {
				return err
			}
			if gf.Table != nil {
				r.builder.Table(table(gf.Table))
			}
		case "pic":
			var pic pictureXML
			if err := d.DecodeElement(&pic, &start); err != nil {
				return err
			}
			r.image(rels, pic.Blip.Embed)
		default:
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) shape(sp *shapeXML) {
	if sp.TxBody == nil {
		return
	}
	switch ph := sp.placeholder(); ph {
	case "title", "ctrTitle":
		r.builder.Heading(zipdoc.CollapseSpace(sp.TxBody.text()))
	case "sldNum", "dt", "ftr", "hdr":
	default:
		for _, p := range sp.TxBody.Paragraphs {
			if p.bulleted() || (ph == "body" && p.Props.BuNone == nil) {
				r.builder.ListItem(p.Props.Lvl, "-", zipdoc.CollapseSpace(p.Text))
			} else {
				r.builder.Paragraph(p.Text)
			}
		}
	}
}

// table converts a:tbl. Cells covered by a merge are left empty.
func table(t *tableXML) *model.RawTable {
	raw := &model.RawTable{}
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			if c.HMerge == "1" || c.VMerge == "1" {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, zipdoc.CollapseSpace(c.TxBody.text()))
		}
		if len(cells) > 0 {
			raw.Rows = append(raw.Rows, cells)
		}
	}
	if t.Props.FirstRow == "1" && len(raw.Rows) > 1 {
		raw.HeaderRows = 1
	}
	return raw
}

func (r *Reader) image(rels map[string]zipdoc.Relationship, id string) {
	rel, ok := rels[id]
	if !ok || rel.External() {
		return
	}
	region, err := r.archive.Image(rel.Target)
	if errors.Is(err, zipdoc.ErrNotRaster) {
		return
	}
	if err != nil {
		r.builder.Warn(fmt.Errorf("image %s: %w", rel.Target, err))
		return
	}
	r.builder.Image(region)
}

// notes returns the body text of a notes slide
func (r *Reader) notes(part string) (string, error) {
	data, err := r.archive.Read(part)
	if err != nil {
		return "", err
	}
	d := zipdoc.NewDecoder(data)
	var parts []string
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "sp" {
			continue
		}
		var sp shapeXML
		if err := d.DecodeElement(&sp, &start); err != nil {
			return "", err
		}
		if sp.placeholder() == "body" {
			if text := sp.TxBody.text(); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}
