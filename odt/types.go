package odt

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
)

// maxRepeat caps number-columns-repeated and number-rows-repeated
const maxRepeat = 64

// paragraphXML is a text:p or text:h element reduced to its text, image
// references and soft page breaks
type paragraphXML struct {
	StyleName string
	Text      string
	Images    []string

	BreakBefore bool
	BreakAfter  bool
}

// UnmarshalXML collects the paragraph's mixed content in order. Runs of
// whitespace collapse to one space; text:s, text:tab and text:line-break
// restore explicit spacing. Notes and annotations are skipped.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.StyleName = zipdoc.Attr(start, "style-name")
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.WriteString(collapseWhitespace(string(t)))
		case xml.StartElement:
			switch t.Name.Local {
			case "note", "annotation", "tracked-changes", "deletion":
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			case "s":
				n, err := strconv.Atoi(zipdoc.Attr(t, "c"))
				if err != nil || n < 1 {
					n = 1
				}
				sb.WriteString(strings.Repeat(" ", min(n, maxRepeat)))
			case "tab":
				sb.WriteString("\t")
			case "line-break":
				sb.WriteString("\n")
			case "soft-page-break":
				if strings.TrimSpace(sb.String()) == "" {
					p.BreakBefore = true
				} else {
					p.BreakAfter = true
				}
			case "image":
				if href := zipdoc.Attr(t, "href"); href != "" {
					p.Images = append(p.Images, href)
				}
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				p.Text = sb.String()
				return nil
			}
			depth--
		}
	}
}

// collapseWhitespace folds each run of XML whitespace into one space
func collapseWhitespace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// listXML represents text:list
type listXML struct {
	StyleName string        `xml:"style-name,attr"`
	Items     []listItemXML `xml:"list-item"`
	Header    *listItemXML  `xml:"list-header"`
}

// listItemXML represents text:list-item
type listItemXML struct {
	Paragraphs []paragraphXML `xml:"p"`
	Headings   []paragraphXML `xml:"h"`
	Lists      []listXML      `xml:"list"`
}

func (it *listItemXML) text() string {
	var parts []string
	for _, p := range it.Headings {
		parts = append(parts, p.Text)
	}
	for _, p := range it.Paragraphs {
		parts = append(parts, p.Text)
	}
	return zipdoc.CollapseSpace(strings.Join(parts, " "))
}

// tableXML represents table:table
type tableXML struct {
	HeaderRows []rowXML `xml:"table-header-rows>table-row"`
	Rows       []rowXML `xml:"table-row"`
	RowGroups  []rowXML `xml:"table-rows>table-row"`
}

// rowXML represents table:table-row. Cells keep their document order,
// with covered cells read as empty.
type rowXML struct {
	Repeat int
	Cells  []string
}

func (r *rowXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	r.Repeat = repeatCount(start, "number-rows-repeated")
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := repeatCount(t, "number-columns-repeated")
			switch t.Name.Local {
			case "table-cell":
				var c cellXML
				if err := d.DecodeElement(&c, &t); err != nil {
					return err
				}
				for range n {
					r.Cells = append(r.Cells, c.text())
				}
			case "covered-table-cell":
				if err := d.Skip(); err != nil {
					return err
				}
				for range n {
					r.Cells = append(r.Cells, "")
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			// trailing repeated empty cells pad rows to the sheet width
			for len(r.Cells) > 0 && r.Cells[len(r.Cells)-1] == "" {
				r.Cells = r.Cells[:len(r.Cells)-1]
			}
			return nil
		}
	}
}

func repeatCount(start xml.StartElement, attr string) int {
	n, err := strconv.Atoi(zipdoc.Attr(start, attr))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxRepeat)
}

// cellXML represents table:table-cell
type cellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
	Lists      []listXML      `xml:"list"`
}

func (c *cellXML) text() string {
	var parts []string
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text)
	}
	for _, l := range c.Lists {
		for i := range l.Items {
			parts = append(parts, l.Items[i].text())
		}
	}
	return zipdoc.CollapseSpace(strings.Join(parts, " "))
}

// listStylesXML collects the list styles of office:automatic-styles or
// office:styles
type listStylesXML struct {
	ListStyles []struct {
		Name    string `xml:"name,attr"`
		Numbers []struct {
			Level int `xml:"level,attr"`
		} `xml:"list-level-style-number"`
	} `xml:"list-style"`
}
