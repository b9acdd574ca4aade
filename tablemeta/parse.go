package tablemeta

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Number is a parsed numeric cell
type Number struct {
	Value    float64
	Currency bool
	Percent  bool
}

var isoCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY", "INR"}

// ParseNumber parses a cell as a number, tolerating currency symbols and ISO
// codes, percent signs, grouping separators in either convention, accounting
// parentheses, trailing minus signs and k/m/bn suffixes.
func ParseNumber(s string) (Number, bool) {
	var n Number
	s = strings.TrimSpace(norm.NFKC.String(s))
	if s == "" {
		return n, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, code := range isoCurrencies {
		if strings.HasPrefix(s, code) {
			s = strings.TrimSpace(strings.TrimPrefix(s, code))
			n.Currency = true
		} else if strings.HasSuffix(s, code) {
			s = strings.TrimSpace(strings.TrimSuffix(s, code))
			n.Currency = true
		}
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Sc, r):
			n.Currency = true
		case r == '%':
			n.Percent = true
		case unicode.IsSpace(r), r == '\'', r == '’', r == '_':
			// grouping
		case r == '−':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	s = b.String()

	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = s[:len(s)-1]
	}

	multiplier := 1.0
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "bn"):
		multiplier, s = 1e9, s[:len(s)-2]
	case strings.HasSuffix(lower, "k"):
		multiplier, s = 1e3, s[:len(s)-1]
	case strings.HasSuffix(lower, "m"):
		multiplier, s = 1e6, s[:len(s)-1]
	case strings.HasSuffix(lower, "b"):
		multiplier, s = 1e9, s[:len(s)-1]
	}

	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		default:
			return Number{}, false
		}
	}
	if digits == 0 {
		return Number{}, false
	}

	canonical, ok := canonicalDecimal(s)
	if !ok {
		return Number{}, false
	}
	v, err := strconv.ParseFloat(canonical, 64)
	if err != nil {
		return Number{}, false
	}
	v *= multiplier
	if neg {
		v = -v
	}
	n.Value = v
	return n, true
}

// canonicalDecimal rewrites a digit string with ',' and '.' separators into
// the form strconv understands.
func canonicalDecimal(s string) (string, bool) {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		// the later separator is the decimal mark
		if i := strings.LastIndex(s, ","); i > strings.LastIndex(s, ".") {
			if commas > 1 || !grouped(s[:i], ".") {
				return "", false
			}
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			if dots > 1 || !grouped(s[:strings.LastIndex(s, ".")], ",") {
				return "", false
			}
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		if !grouped(s, ",") {
			return "", false
		}
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		idx := strings.Index(s, ",")
		intPart, frac := s[:idx], s[idx+1:]
		if len(frac) == 3 && intPart != "" && intPart != "0" {
			s = intPart + frac
		} else {
			s = intPart + "." + frac
		}
	case dots > 1:
		if !grouped(s, ".") {
			return "", false
		}
		s = strings.ReplaceAll(s, ".", "")
	}

	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") || s == "" {
		return "", false
	}
	return s, true
}

// grouped reports whether s is a thousands-grouped integer: a leading group
// of one to three digits followed by groups of exactly three.
func grouped(s, sep string) bool {
	groups := strings.Split(s, sep)
	if n := len(groups[0]); n < 1 || n > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2.1.2006",
	"1/2/06",
	"2/1/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon, 2 Jan 2006",
	"Monday, January 2, 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

// ParseDate parses a cell as a calendar date. Slash dates are read
// month-first, falling back to day-first when the month field is above 12.
// Bare years are not dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if len(s) < 6 {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// hasCurrencyMark reports whether free text (such as a header) names a
// currency or a percentage.
func hasCurrencyMark(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Sc, r) || r == '%' {
			return true
		}
	}
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		for _, code := range isoCurrencies {
			if field == code {
				return true
			}
		}
	}
	return false
}
