package tables

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/tablemeta"
)

var (
	// ErrNotTable is returned when a non-table region is passed to Structure.
	ErrNotTable = errors.New("region is not a table")

	// ErrNoGrid is returned when a table region carries no cell grid.
	ErrNoGrid = errors.New("table region has no cell grid")
)

// Structurer converts table regions into normalized TableContent.
// It holds no mutable state and is safe for concurrent use.
type Structurer struct {
	// HeaderJoin joins the cells of multi-row headers (default: " / ")
	HeaderJoin string
}

// NewStructurer creates a structurer with default settings
func NewStructurer() *Structurer {
	return &Structurer{HeaderJoin: " / "}
}

// Structure normalizes a table region. The result is always rectangular; a
// table with a header but no data rows is valid and has RowCount() == 0.
func (s *Structurer) Structure(region model.RawRegion) (model.TableContent, error) {
	if region.Type != model.RegionTable {
		return model.TableContent{}, fmt.Errorf("%w: got %s", ErrNotTable, region.Type)
	}
	if region.Table == nil {
		return model.TableContent{}, ErrNoGrid
	}

	headerRows := region.Table.HeaderRows
	var rows [][]string
	for i, raw := range region.Table.Rows {
		row := make([]string, len(raw))
		empty := true
		for j, cell := range raw {
			row[j] = NormalizeCell(cell)
			if row[j] != "" {
				empty = false
			}
		}
		if empty {
			if i < region.Table.HeaderRows {
				headerRows--
			}
			continue
		}
		rows = append(rows, row)
	}

	rows = rectangularize(rows)
	if len(rows) == 0 {
		return model.TableContent{Headers: []string{}, Rows: [][]string{}}, nil
	}

	var headers []string
	switch {
	case headerRows > 0:
		if headerRows > len(rows) {
			headerRows = len(rows)
		}
		headers = s.joinHeaderRows(rows[:headerRows])
		rows = rows[headerRows:]
	case looksLikeHeader(rows):
		headers = rows[0]
		rows = rows[1:]
	default:
		headers = []string{}
	}

	if rows == nil {
		rows = [][]string{}
	}
	return model.TableContent{Headers: headers, Rows: rows}, nil
}

// NormalizeCell applies NFKC normalization and collapses whitespace.
func NormalizeCell(cell string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(cell)), " ")
}

// rectangularize pads every row to the widest row, then drops trailing
// columns that are empty in every row.
func rectangularize(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	for width > 0 {
		used := false
		for _, row := range rows {
			if width-1 < len(row) && row[width-1] != "" {
				used = true
				break
			}
		}
		if used {
			break
		}
		width--
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

func (s *Structurer) joinHeaderRows(rows [][]string) []string {
	sep := s.HeaderJoin
	if sep == "" {
		sep = " / "
	}
	headers := make([]string, len(rows[0]))
	for col := range headers {
		var parts []string
		for _, row := range rows {
			if cell := row[col]; cell != "" && (len(parts) == 0 || parts[len(parts)-1] != cell) {
				parts = append(parts, cell)
			}
		}
		headers[col] = strings.Join(parts, sep)
	}
	return headers
}

// looksLikeHeader decides whether the first row is a header. It only answers
// yes when the row is made of distinct, non-empty, non-numeric labels and the
// data below it gives independent evidence: a typed column under a text
// label, or an upper-case first row above mixed-case data.
func looksLikeHeader(rows [][]string) bool {
	first := rows[0]
	seen := make(map[string]bool, len(first))
	for _, cell := range first {
		if cell == "" || isTyped(cell) {
			return false
		}
		key := strings.ToLower(cell)
		if seen[key] {
			return false
		}
		seen[key] = true
	}

	if len(rows) == 1 {
		return true
	}

	data := rows[1:]
	for col := range first {
		typed, nonEmpty := 0, 0
		for _, row := range data {
			if row[col] == "" {
				continue
			}
			nonEmpty++
			if isTyped(row[col]) {
				typed++
			}
		}
		if nonEmpty > 0 && float64(typed)/float64(nonEmpty) >= 0.5 {
			return true
		}
	}

	if allUpper(first) {
		for _, row := range data {
			if !allUpper(row) {
				return true
			}
		}
	}

	return false
}

func isTyped(cell string) bool {
	if _, ok := tablemeta.ParseNumber(cell); ok {
		return true
	}
	_, ok := tablemeta.ParseDate(cell)
	return ok
}

func allUpper(row []string) bool {
	letters := false
	for _, cell := range row {
		for _, r := range cell {
			if unicode.IsLetter(r) {
				letters = true
				if !unicode.IsUpper(r) {
					return false
				}
			}
		}
	}
	return letters
}
