package model

import "fmt"

// TableContent is a normalized table. Rows is rectangular: every row has
// ColumnCount cells, and Headers is either empty or ColumnCount long.
type TableContent struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows (the header is not counted)
func (t TableContent) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns
func (t TableContent) ColumnCount() int {
	if len(t.Headers) > 0 {
		return len(t.Headers)
	}
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return 0
}

// Cell returns the cell at row, col or "" when out of range
func (t TableContent) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column returns a copy of the cells in column col, top to bottom
func (t TableContent) Column(col int) []string {
	out := make([]string, 0, len(t.Rows))
	for r := range t.Rows {
		out = append(out, t.Cell(r, col))
	}
	return out
}

// Validate checks the rectangularity invariant.
func (t TableContent) Validate() error {
	cols := t.ColumnCount()
	for i, row := range t.Rows {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), cols)
		}
	}
	return nil
}
