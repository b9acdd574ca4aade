package xlsx

import "encoding/xml"

// workbookXML represents xl/workbook.xml
type workbookXML struct {
	XMLName    xml.Name `xml:"workbook"`
	WorkbookPr struct {
		Date1904 string `xml:"date1904,attr"`
	} `xml:"workbookPr"`
	Sheets []sheetRefXML `xml:"sheets>sheet"`
}

type sheetRefXML struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"id,attr"`
}

// worksheetXML represents xl/worksheets/sheet*.xml
type worksheetXML struct {
	XMLName    xml.Name       `xml:"worksheet"`
	Rows       []rowXML       `xml:"sheetData>row"`
	MergeCells []mergeCellXML `xml:"mergeCells>mergeCell"`
}

type rowXML struct {
	R     int       `xml:"r,attr"`
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"`
	T  string        `xml:"t,attr"`
	S  int           `xml:"s,attr"`
	V  string        `xml:"v"`
	Is *inlineStrXML `xml:"is"`
}

type inlineStrXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"`
}

func (is *inlineStrXML) text() string {
	if is == nil {
		return ""
	}
	s := is.T
	for _, r := range is.R {
		s += r.T
	}
	return s
}

type mergeCellXML struct {
	Ref string `xml:"ref,attr"`
}

// sharedStringsXML represents xl/sharedStrings.xml
type sharedStringsXML struct {
	XMLName xml.Name       `xml:"sst"`
	SI      []inlineStrXML `xml:"si"`
}

type rXML struct {
	T string `xml:"t"`
}

// stylesXML represents xl/styles.xml
type stylesXML struct {
	XMLName xml.Name    `xml:"styleSheet"`
	NumFmts []numFmtXML `xml:"numFmts>numFmt"`
	CellXfs []xfXML     `xml:"cellXfs>xf"`
}

type numFmtXML struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type xfXML struct {
	NumFmtID int `xml:"numFmtId,attr"`
}
