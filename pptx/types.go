package pptx

import (
	"encoding/xml"
	"strings"
)

// presentationXML represents ppt/presentation.xml
type presentationXML struct {
	XMLName xml.Name `xml:"presentation"`
	Slides  []struct {
		RID string `xml:"id,attr"`
	} `xml:"sldIdLst>sldId"`
}

// nvPrXML holds the placeholder type of a shape
type nvPrXML struct {
	Ph *struct {
		Type string `xml:"type,attr"`
		Idx  string `xml:"idx,attr"`
	} `xml:"nvPr>ph"`
}

// shapeXML represents p:sp
type shapeXML struct {
	NvSpPr nvPrXML     `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

// placeholder returns the shape's placeholder type, "body" for untyped
// placeholders and "" for ordinary shapes
func (s *shapeXML) placeholder() string {
	ph := s.NvSpPr.Ph
	switch {
	case ph == nil:
		return ""
	case ph.Type == "":
		return "body"
	}
	return ph.Type
}

// txBodyXML represents p:txBody and a:txBody
type txBodyXML struct {
	Paragraphs []textParagraphXML `xml:"p"`
}

// text joins the paragraphs of the body with newlines
func (b *txBodyXML) text() string {
	if b == nil {
		return ""
	}
	var lines []string
	for _, p := range b.Paragraphs {
		if s := strings.TrimSpace(p.Text); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// textParagraphXML is an a:p element reduced to its text and bullet style
type textParagraphXML struct {
	Props struct {
		Lvl       int       `xml:"lvl,attr"`
		BuNone    *struct{} `xml:"buNone"`
		BuChar    *struct{} `xml:"buChar"`
		BuAutoNum *struct{} `xml:"buAutoNum"`
	}
	Text string
}

func (p *textParagraphXML) bulleted() bool {
	return p.Props.BuChar != nil || p.Props.BuAutoNum != nil
}

// UnmarshalXML collects run and field text in order; line breaks become
// newlines.
func (p *textParagraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
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
			case "rPr", "endParaRPr":
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			case "br":
				sb.WriteString("\n")
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

// graphicFrameXML represents p:graphicFrame; only tables are read
type graphicFrameXML struct {
	Table *tableXML `xml:"graphic>graphicData>tbl"`
}

// tableXML represents a:tbl
type tableXML struct {
	Props struct {
		FirstRow string `xml:"firstRow,attr"`
	} `xml:"tblPr"`
	Rows []struct {
		Cells []struct {
			HMerge string     `xml:"hMerge,attr"`
			VMerge string     `xml:"vMerge,attr"`
			TxBody *txBodyXML `xml:"txBody"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// pictureXML represents p:pic
type pictureXML struct {
	Blip struct {
		Embed string `xml:"embed,attr"`
	} `xml:"blipFill>blip"`
}
