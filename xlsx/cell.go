package xlsx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseCellRef parses a reference like "A1" or "AA100" into 0-indexed
// column and row.
func ParseCellRef(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference: %q", ref)
	}

	col = ColumnToIndex(ref[:i])
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 || col < 0 {
		return 0, 0, fmt.Errorf("invalid cell reference: %q", ref)
	}
	return col, n - 1, nil
}

// ColumnToIndex converts column letters to a 0-indexed column: A=0, Z=25,
// AA=26. It returns -1 for invalid input.
func ColumnToIndex(col string) int {
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// ParseRangeRef parses "A1:D10" into its corners. A single cell is a
// one-cell range.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	first, last, found := strings.Cut(ref, ":")
	if !found {
		last = first
	}
	if startCol, startRow, err = ParseCellRef(first); err != nil {
		return 0, 0, 0, 0, err
	}
	if endCol, endRow, err = ParseCellRef(last); err != nil {
		return 0, 0, 0, 0, err
	}
	return startCol, startRow, endCol, endRow, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// valueKind is how a numeric cell is displayed
type valueKind int

const (
	kindNumber valueKind = iota
	kindDate
	kindTime
	kindDateTime
	kindPercent
)

// builtinKind classifies the built-in number formats
func builtinKind(id int) valueKind {
	switch {
	case id == 9 || id == 10:
		return kindPercent
	case id >= 14 && id <= 17:
		return kindDate
	case id == 22:
		return kindDateTime
	case (id >= 18 && id <= 21) || (id >= 45 && id <= 47):
		return kindTime
	}
	return kindNumber
}

// codeKind classifies a custom format code. Quoted literals, escapes and
// bracketed sections such as colors are ignored.
func codeKind(code string) valueKind {
	var sb strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			sb.WriteByte(c)
		}
	}
	s := strings.ToLower(sb.String())

	hasDate := strings.ContainsAny(s, "yd")
	hasTime := strings.ContainsAny(s, "hs")
	switch {
	case hasDate && hasTime:
		return kindDateTime
	case hasDate:
		return kindDate
	case hasTime:
		return kindTime
	case strings.Contains(s, "%"):
		return kindPercent
	}
	return kindNumber
}

// formatNumber renders the numeric cell value raw as its kind displays it
func formatNumber(raw string, kind valueKind, date1904 bool) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}

	switch kind {
	case kindPercent:
		return strconv.FormatFloat(f*100, 'g', 15, 64) + "%"
	case kindDate, kindTime, kindDateTime:
		if f < 0 {
			break
		}
		t := serialToTime(f, date1904)
		switch kind {
		case kindDate:
			return t.Format("2006-01-02")
		case kindTime:
			return t.Format("15:04:05")
		}
		return t.Format("2006-01-02 15:04:05")
	}
	return strconv.FormatFloat(f, 'g', 15, 64)
}

// serialToTime converts a spreadsheet serial date. The 1900 system counts
// from 1899-12-30 so the fictitious 1900-02-29 lines up for later dates.
func serialToTime(serial float64, date1904 bool) time.Time {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	if date1904 {
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	days := int(serial)
	secs := int((serial-float64(days))*86400 + 0.5)
	return epoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second)
}
