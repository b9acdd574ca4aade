package docx

import (
	"encoding/xml"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
)

// valXML is any element whose payload is a w:val attribute
type valXML struct {
	Val string `xml:"val,attr"`
}

// onOffXML is a toggle property; a bare element means on
type onOffXML struct {
	Val string `xml:"val,attr"`
}

func (o *onOffXML) on() bool {
	if o == nil {
		return false
	}
	switch strings.ToLower(o.Val) {
	case "0", "false", "off":
		return false
	}
	return true
}

// paragraphPropsXML represents w:pPr
type paragraphPropsXML struct {
	Style           valXML    `xml:"pStyle"`
	NumPr           *numPrXML `xml:"numPr"`
	OutlineLvl      *valXML   `xml:"outlineLvl"`
	PageBreakBefore *onOffXML `xml:"pageBreakBefore"`
}

// numPrXML represents w:numPr
type numPrXML struct {
	ILvl  valXML `xml:"ilvl"`
	NumID valXML `xml:"numId"`
}

// paragraphXML is a w:p element reduced to its text, its image references
// and the page breaks it carries
type paragraphXML struct {
	Props  paragraphPropsXML
	Text   string
	Images []string

	BreakBefore bool
	BreakAfter  bool
}

// UnmarshalXML walks the paragraph's runs in order. Alternate content
// fallbacks, deleted text and field instructions are skipped.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	pageBreak := func() {
		if strings.TrimSpace(sb.String()) == "" {
			p.BreakBefore = true
		} else {
			p.BreakAfter = true
		}
	}

	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if depth > 0 {
					if err := d.Skip(); err != nil {
						return err
					}
					continue
				}
				if err := d.DecodeElement(&p.Props, &t); err != nil {
					return err
				}
				continue
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
				continue
			case "Fallback", "del", "delText", "instrText", "rPr":
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				if zipdoc.Attr(t, "type") == "page" {
					pageBreak()
				} else {
					sb.WriteString("\n")
				}
			case "lastRenderedPageBreak":
				pageBreak()
			case "blip":
				if id := zipdoc.Attr(t, "embed"); id != "" {
					p.Images = append(p.Images, id)
				}
			case "imagedata":
				if id := zipdoc.Attr(t, "id"); id != "" {
					p.Images = append(p.Images, id)
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

// tableXML represents w:tbl
type tableXML struct {
	Rows []rowXML `xml:"tr"`
}

// rowXML represents w:tr
type rowXML struct {
	Props struct {
		Header *onOffXML `xml:"tblHeader"`
	} `xml:"trPr"`
	Cells []cellXML `xml:"tc"`
}

// cellXML represents w:tc
type cellXML struct {
	Props struct {
		GridSpan valXML  `xml:"gridSpan"`
		VMerge   *valXML `xml:"vMerge"`
	} `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

// continuation reports whether the cell continues a vertical merge
func (c *cellXML) continuation() bool {
	return c.Props.VMerge != nil && c.Props.VMerge.Val != "restart"
}

// text flattens the cell, including nested tables, onto one line
func (c *cellXML) text() string {
	var parts []string
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text)
	}
	for _, t := range c.Tables {
		for _, row := range t.Rows {
			for i := range row.Cells {
				parts = append(parts, row.Cells[i].text())
			}
		}
	}
	return zipdoc.CollapseSpace(strings.Join(parts, " "))
}

// images returns the image references of the cell and its nested tables
func (c *cellXML) images() []string {
	var ids []string
	for _, p := range c.Paragraphs {
		ids = append(ids, p.Images...)
	}
	for _, t := range c.Tables {
		for _, row := range t.Rows {
			for i := range row.Cells {
				ids = append(ids, row.Cells[i].images()...)
			}
		}
	}
	return ids
}

// stylesXML represents word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition
type styleDefXML struct {
	Type    string `xml:"type,attr"`
	StyleID string `xml:"styleId,attr"`
	Name    valXML `xml:"name"`
	BasedOn valXML `xml:"basedOn"`
	PPr     struct {
		OutlineLvl *valXML `xml:"outlineLvl"`
	} `xml:"pPr"`
}

// numberingXML represents word/numbering.xml
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition
type abstractNumXML struct {
	AbstractNumID string `xml:"abstractNumId,attr"`
	Levels        []struct {
		ILvl   string `xml:"ilvl,attr"`
		NumFmt valXML `xml:"numFmt"`
	} `xml:"lvl"`
}

// numXML represents a numbering instance
type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}
