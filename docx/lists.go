package docx

import (
	"strconv"
	"strings"
)

const maxListLevel = 9

// numbering tracks list counters as list paragraphs are read
type numbering struct {
	formats  map[string]map[int]string // numId -> level -> numFmt
	counters map[string][]int
}

func newNumbering(n *numberingXML) *numbering {
	nb := &numbering{
		formats:  make(map[string]map[int]string),
		counters: make(map[string][]int),
	}
	if n == nil {
		return nb
	}

	abstract := make(map[string]map[int]string)
	for _, an := range n.AbstractNums {
		levels := make(map[int]string)
		for _, lvl := range an.Levels {
			if i, err := strconv.Atoi(lvl.ILvl); err == nil {
				levels[i] = lvl.NumFmt.Val
			}
		}
		abstract[an.AbstractNumID] = levels
	}
	for _, num := range n.Nums {
		nb.formats[num.NumID] = abstract[num.AbstractNumID.Val]
	}
	return nb
}

// next advances the counter for (numID, level) and returns the item marker.
// Deeper levels restart when a shallower item appears.
func (n *numbering) next(numID string, level int) string {
	level = min(max(level, 0), maxListLevel-1)
	counts, ok := n.counters[numID]
	if !ok {
		counts = make([]int, maxListLevel)
		n.counters[numID] = counts
	}
	counts[level]++
	for i := level + 1; i < maxListLevel; i++ {
		counts[i] = 0
	}
	return marker(n.formats[numID][level], counts[level])
}

// marker renders the n-th item of a list level with format numFmt
func marker(numFmt string, n int) string {
	switch numFmt {
	case "decimal", "decimalZero":
		return strconv.Itoa(n) + "."
	case "lowerLetter":
		return letter(n) + "."
	case "upperLetter":
		return strings.ToUpper(letter(n)) + "."
	case "lowerRoman":
		return strings.ToLower(roman(n)) + "."
	case "upperRoman":
		return roman(n) + "."
	}
	return "-"
}

func letter(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('a' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}

func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range values {
		for n >= v {
			sb.WriteString(symbols[i])
			n -= v
		}
	}
	return sb.String()
}
