package chunk

import (
	"strings"
	"unicode"
)

// Splitter cuts long text into passages on sentence boundaries
type Splitter struct {
	// MaxChars is the target maximum passage length. Zero disables splitting.
	MaxChars int `yaml:"max_chars" json:"max_chars"`

	// MinChars is the length below which a trailing passage is merged into
	// the one before it
	MinChars int `yaml:"min_chars" json:"min_chars"`
}

// DefaultSplitter returns a splitter for passages of about 1000 characters
func DefaultSplitter() Splitter {
	return Splitter{MaxChars: 1000, MinChars: 100}
}

// span is a half-open rune range of the source text
type span struct{ start, end int }

// Split returns the passages of text in order. Passages are slices of the
// source, so line breaks and spacing inside a passage are kept; lengths are
// measured with whitespace runs collapsed. Words are never broken, so a
// single word longer than MaxChars becomes its own passage.
func (s Splitter) Split(text string) []string {
	runes := []rune(text)
	whole := trimSpan(runes, span{0, len(runes)})
	if whole.start == whole.end {
		return nil
	}
	if s.MaxChars <= 0 || collapsedLen(runes, whole) <= s.MaxChars {
		return []string{string(runes[whole.start:whole.end])}
	}

	var passages []span
	var current span
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			passages = append(passages, current)
			currentLen = 0
		}
	}
	add := func(piece span) {
		n := collapsedLen(runes, piece)
		if currentLen > 0 && currentLen+1+n > s.MaxChars {
			flush()
		}
		if currentLen == 0 {
			current, currentLen = piece, n
			return
		}
		current.end = piece.end
		currentLen += 1 + n
	}

	for _, sentence := range sentenceSpans(runes) {
		if collapsedLen(runes, sentence) <= s.MaxChars {
			add(sentence)
			continue
		}
		for _, piece := range wordSpans(runes, sentence, s.MaxChars) {
			add(piece)
		}
	}
	flush()

	if n := len(passages); n > 1 && collapsedLen(runes, passages[n-1]) < s.MinChars {
		passages[n-2].end = passages[n-1].end
		passages = passages[:n-1]
	}

	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = string(runes[p.start:p.end])
	}
	return out
}

// collapsedLen is the byte length of sp with whitespace runs collapsed to a
// single space
func collapsedLen(runes []rune, sp span) int {
	return len(strings.Join(strings.Fields(string(runes[sp.start:sp.end])), " "))
}

func trimSpan(runes []rune, sp span) span {
	for sp.start < sp.end && unicode.IsSpace(runes[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && unicode.IsSpace(runes[sp.end-1]) {
		sp.end--
	}
	return sp
}

// wordSpans packs the words of an over-long sentence into pieces of at
// most maxChars
func wordSpans(runes []rune, sentence span, maxChars int) []span {
	var pieces []span
	var current span
	currentLen := 0
	for i := sentence.start; i < sentence.end; {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		j := i
		for j < sentence.end && !unicode.IsSpace(runes[j]) {
			j++
		}
		n := len(string(runes[i:j]))
		switch {
		case currentLen == 0:
			current, currentLen = span{i, j}, n
		case currentLen+1+n > maxChars:
			pieces = append(pieces, current)
			current, currentLen = span{i, j}, n
		default:
			current.end = j
			currentLen += 1 + n
		}
		i = j
	}
	if currentLen > 0 {
		pieces = append(pieces, current)
	}
	return pieces
}

// sentenceSpans splits text after sentence-ending punctuation. The spans
// carry no leading or trailing whitespace.
func sentenceSpans(runes []rune) []span {
	var sentences []span
	start := 0
	for i := 0; i < len(runes); i++ {
		if end, ok := sentenceEnd(runes, i); ok {
			if sp := trimSpan(runes, span{start, end}); sp.start < sp.end {
				sentences = append(sentences, sp)
			}
			start = end
			i = end - 1
		}
	}
	if sp := trimSpan(runes, span{start, len(runes)}); sp.start < sp.end {
		sentences = append(sentences, sp)
	}
	return sentences
}

// sentenceEnd checks if position i ends a sentence: terminal punctuation,
// optionally followed by closing quotes or brackets, then whitespace and an
// upper-case letter, digit or opening quote. It returns the exclusive end of
// the sentence.
func sentenceEnd(runes []rune, i int) (int, bool) {
	r := runes[i]
	if r != '.' && r != '!' && r != '?' {
		return 0, false
	}

	if r == '.' && i >= 1 {
		prev := runes[i-1]
		// single-letter initial such as "J."
		if unicode.IsUpper(prev) && (i < 2 || !unicode.IsLetter(runes[i-2])) {
			return 0, false
		}
		if isAbbreviation(runes, i) {
			return 0, false
		}
		if unicode.IsDigit(prev) && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			return 0, false
		}
	}

	j := i + 1
	for j < len(runes) && strings.ContainsRune(`"')]”’`, runes[j]) {
		j++
	}
	if j >= len(runes) {
		return j, true
	}
	if !unicode.IsSpace(runes[j]) {
		return 0, false
	}
	k := j
	for k < len(runes) && unicode.IsSpace(runes[k]) {
		k++
	}
	if k >= len(runes) {
		return j, true
	}
	next := runes[k]
	if unicode.IsUpper(next) || unicode.IsDigit(next) || strings.ContainsRune(`"'“‘(`, next) {
		return j, true
	}
	return 0, false
}

var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"sr.": true, "jr.": true, "vs.": true, "etc.": true, "e.g.": true, "i.e.": true,
	"inc.": true, "ltd.": true, "co.": true, "corp.": true,
	"jan.": true, "feb.": true, "mar.": true, "apr.": true, "jun.": true, "jul.": true,
	"aug.": true, "sep.": true, "sept.": true, "oct.": true, "nov.": true, "dec.": true,
	"st.": true, "rd.": true, "ave.": true, "blvd.": true,
	"no.": true, "vol.": true, "pp.": true, "pg.": true, "fig.": true, "approx.": true,
}

// isAbbreviation checks if the period at position i ends a known
// abbreviation
func isAbbreviation(runes []rune, i int) bool {
	start := i
	for start > 0 && (unicode.IsLetter(runes[start-1]) || runes[start-1] == '.') {
		start--
	}
	if start >= i {
		return false
	}
	return abbreviations[strings.ToLower(string(runes[start:i+1]))]
}
