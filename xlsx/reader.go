// Package xlsx reads XLSX (Office Open XML spreadsheet) workbooks into pages
// of regions, one page per worksheet.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
)

// MIMEType is the media type of XLSX workbooks
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const workbookPart = "xl/workbook.xml"

// MaxCells bounds the cells read from one worksheet
const MaxCells = 1 << 20

// Reader holds a parsed XLSX workbook.
type Reader struct {
	archive  *zipdoc.Archive
	strings  []string
	xfKinds  []valueKind
	date1904 bool
	pages    []zipdoc.Page
}

// Open parses an XLSX workbook. Each worksheet becomes a page; runs of
// non-empty rows separated by blank rows become table regions when they
// span at least two rows and two columns, and text regions otherwise.
// Worksheets without content produce no page.
func Open(data []byte) (*Reader, error) {
	a, err := zipdoc.Open(data)
	if err != nil {
		return nil, err
	}
	if err := a.Require(workbookPart); err != nil {
		return nil, err
	}

	var wb workbookXML
	if err := a.Unmarshal(workbookPart, &wb); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}
	rels, err := a.Relationships(workbookPart)
	if err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	r := &Reader{archive: a, date1904: isTrue(wb.WorkbookPr.Date1904)}
	if err := r.loadSharedStrings(rels); err != nil {
		return nil, err
	}
	r.loadStyles()

	b := zipdoc.NewPageBuilder(MIMEType)
	for _, ref := range wb.Sheets {
		rel, ok := rels[ref.RID]
		if !ok || !strings.HasSuffix(rel.Type, "/worksheet") {
			continue
		}
		var ws worksheetXML
		if err := a.Unmarshal(rel.Target, &ws); err != nil {
			b.Warn(fmt.Errorf("sheet %q: %w", ref.Name, err))
			continue
		}
		r.sheet(b, ref.Name, &ws)
		b.PageBreak()
	}
	r.pages = b.Pages()
	return r, nil
}

// Pages returns one page per non-empty worksheet, in workbook order
func (r *Reader) Pages() []zipdoc.Page {
	return r.pages
}

func (r *Reader) loadSharedStrings(rels map[string]zipdoc.Relationship) error {
	part := "xl/sharedStrings.xml"
	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, "/sharedStrings") {
			part = rel.Target
		}
	}
	if !r.archive.Has(part) {
		return nil
	}
	var sst sharedStringsXML
	if err := r.archive.Unmarshal(part, &sst); err != nil {
		return fmt.Errorf("parsing shared strings: %w", err)
	}
	r.strings = make([]string, len(sst.SI))
	for i := range sst.SI {
		r.strings[i] = sst.SI[i].text()
	}
	return nil
}

// loadStyles resolves each cell format to how its numbers display. Styles
// are optional; without them every number is shown as is.
func (r *Reader) loadStyles() {
	var st stylesXML
	if r.archive.Unmarshal("xl/styles.xml", &st) != nil {
		return
	}
	custom := make(map[int]valueKind, len(st.NumFmts))
	for _, nf := range st.NumFmts {
		custom[nf.NumFmtID] = codeKind(nf.FormatCode)
	}
	r.xfKinds = make([]valueKind, len(st.CellXfs))
	for i, xf := range st.CellXfs {
		if k, ok := custom[xf.NumFmtID]; ok {
			r.xfKinds[i] = k
		} else {
			r.xfKinds[i] = builtinKind(xf.NumFmtID)
		}
	}
}

// value renders a cell as displayed text
func (r *Reader) value(c *cellXML) string {
	switch c.T {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || i < 0 || i >= len(r.strings) {
			return ""
		}
		return r.strings[i]
	case "inlineStr":
		return c.Is.text()
	case "b":
		if c.V == "1" {
			return "TRUE"
		}
		return "FALSE"
	case "str", "e", "d":
		return c.V
	}
	if c.V == "" {
		return ""
	}
	kind := kindNumber
	if c.S >= 0 && c.S < len(r.xfKinds) {
		kind = r.xfKinds[c.S]
	}
	return formatNumber(c.V, kind, r.date1904)
}

type cellPos struct{ row, col int }

// sheet lays out one worksheet as regions
func (r *Reader) sheet(b *zipdoc.PageBuilder, name string, ws *worksheetXML) {
	cells := make(map[cellPos]string)
	maxRow := -1
	truncated := false

	rowNum := 0
	for _, row := range ws.Rows {
		if row.R > 0 {
			rowNum = row.R
		} else {
			rowNum++
		}
		next := 0
		for i := range row.Cells {
			c := &row.Cells[i]
			col, rowIdx := next, rowNum-1
			if c.R != "" {
				if cc, rr, err := ParseCellRef(c.R); err == nil {
					col, rowIdx = cc, rr
				}
			}
			next = col + 1
			if rowIdx < 0 {
				continue
			}

			text := strings.TrimSpace(r.value(c))
			if text == "" {
				continue
			}
			if len(cells) >= MaxCells {
				truncated = true
				break
			}
			cells[cellPos{rowIdx, col}] = text
			maxRow = max(maxRow, rowIdx)
		}
	}
	if truncated {
		b.Warn(fmt.Errorf("sheet %q: truncated at %d cells", name, MaxCells))
	}

	// merged ranges keep their value in the top-left cell only
	for _, mc := range ws.MergeCells {
		c0, r0, c1, r1, err := ParseRangeRef(mc.Ref)
		if err != nil {
			continue
		}
		for p := range cells {
			if p.row >= r0 && p.row <= r1 && p.col >= c0 && p.col <= c1 && (p.row != r0 || p.col != c0) {
				delete(cells, p)
			}
		}
	}

	occupied := make(map[int][]int)
	for p := range cells {
		occupied[p.row] = append(occupied[p.row], p.col)
	}

	start := -1
	for row := 0; row <= maxRow+1; row++ {
		if len(occupied[row]) > 0 {
			if start < 0 {
				start = row
			}
			continue
		}
		if start >= 0 {
			emitBlock(b, cells, occupied, start, row-1)
			start = -1
		}
	}
}

// emitBlock emits rows first..last, trimmed to their occupied columns
func emitBlock(b *zipdoc.PageBuilder, cells map[cellPos]string, occupied map[int][]int, first, last int) {
	lo, hi := -1, -1
	for row := first; row <= last; row++ {
		for _, col := range occupied[row] {
			if lo < 0 || col < lo {
				lo = col
			}
			hi = max(hi, col)
		}
	}

	rows := make([][]string, 0, last-first+1)
	for row := first; row <= last; row++ {
		line := make([]string, hi-lo+1)
		for col := lo; col <= hi; col++ {
			line[col-lo] = cells[cellPos{row, col}]
		}
		rows = append(rows, line)
	}

	if len(rows) >= 2 && hi > lo {
		b.Table(&model.RawTable{Rows: rows})
		return
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = zipdoc.CollapseSpace(strings.Join(row, " "))
	}
	b.Text(strings.Join(lines, "\n"))
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
