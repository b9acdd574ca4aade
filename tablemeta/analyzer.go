package tablemeta

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tsawler/mosaic/model"
)

// Config holds analyzer thresholds
type Config struct {
	// NumericThreshold is the numeric share at which a column is numeric (default: 0.8)
	NumericThreshold float64

	// DateThreshold is the date share at which a column is a date column (default: 0.8)
	DateThreshold float64

	// MixedThreshold is the lower bound for both shares of a mixed column (default: 0.2)
	MixedThreshold float64

	// PurposePriority is the order in which purpose rules are tried. Purposes
	// not listed are never assigned; generic is always the fallback.
	PurposePriority []model.TablePurpose

	// WideRatio is the columns/rows ratio at which a table is wide (default: 1.5)
	WideRatio float64

	// LongRatio is the rows/columns ratio at which a table is long (default: 5)
	LongRatio float64

	// TopValues is the number of most-common values kept per column (default: 3)
	TopValues int

	// TotalsTolerance is the relative tolerance for detecting a totals row (default: 0.005)
	TotalsTolerance float64
}

// DefaultConfig returns default analyzer configuration
func DefaultConfig() Config {
	return Config{
		NumericThreshold: 0.8,
		DateThreshold:    0.8,
		MixedThreshold:   0.2,
		PurposePriority: []model.TablePurpose{
			model.PurposeFinancial,
			model.PurposeSchedule,
			model.PurposeInventory,
			model.PurposeMetrics,
		},
		WideRatio:       1.5,
		LongRatio:       5,
		TopValues:       3,
		TotalsTolerance: 0.005,
	}
}

// Analyzer derives TableMetadata from TableContent. It holds only
// configuration and is safe for concurrent use.
type Analyzer struct {
	config Config
}

// New creates an analyzer
func New(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// columnData holds the parsed cells of one column
type columnData struct {
	profile model.ColumnProfile
	header  string

	nonEmpty int
	numbers  []float64
	numRows  []int
	integral bool
	dates    []time.Time
	money    bool
}

// Analyze computes the metadata of t
func (a *Analyzer) Analyze(t model.TableContent) *model.TableMetadata {
	rows, cols := t.RowCount(), t.ColumnCount()
	md := &model.TableMetadata{
		RowCount:    rows,
		ColumnCount: cols,
		Columns:     make([]model.ColumnProfile, 0, cols),
		Purpose:     model.PurposeGeneric,
	}

	columns := a.profileColumns(t)
	for _, c := range columns {
		md.Columns = append(md.Columns, c.profile)
	}

	total := rows * cols
	empty := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				empty++
			}
		}
	}
	if total == 0 {
		md.CompletenessScore = 1.0
	} else {
		md.CompletenessScore = 1 - float64(empty)/float64(total)
	}
	md.Density = md.CompletenessScore

	md.HasHeaders = headersLookReal(t.Headers)
	md.HasTotals = a.hasTotals(t, columns)
	md.HasCategories = hasCategories(columns)
	md.FinancialIndicators = financialIndicators(t, columns)

	md.IsWide = cols > 0 && float64(cols)/float64(max(rows, 1)) >= a.config.WideRatio
	md.IsLong = rows > 0 && float64(rows)/float64(max(cols, 1)) >= a.config.LongRatio

	md.Temporal = temporalSummary(columns)
	md.Numerical = numericalSummary(columns)
	md.Purpose = a.purpose(md, columns)

	return md
}

func (a *Analyzer) profileColumns(t model.TableContent) []*columnData {
	cols := t.ColumnCount()
	out := make([]*columnData, 0, cols)
	usedNames := make(map[string]bool, cols)

	for c := 0; c < cols; c++ {
		cd := &columnData{integral: true}
		if c < len(t.Headers) {
			cd.header = strings.TrimSpace(t.Headers[c])
		}

		name := cd.header
		if name == "" || usedNames[name] {
			name = fmt.Sprintf("column_%d", c+1)
		}
		usedNames[name] = true

		counts := make(map[string]int)
		dateCount := 0
		for r, cell := range t.Column(c) {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			cd.nonEmpty++
			counts[cell]++

			if n, ok := ParseNumber(cell); ok {
				cd.numbers = append(cd.numbers, n.Value)
				cd.numRows = append(cd.numRows, r)
				if n.Value != math.Trunc(n.Value) || n.Value < 0 {
					cd.integral = false
				}
				if n.Currency || n.Percent {
					cd.money = true
				}
			} else if d, ok := ParseDate(cell); ok {
				cd.dates = append(cd.dates, d)
				dateCount++
			}
		}

		p := model.ColumnProfile{Name: name, Index: c, UniqueCount: len(counts)}
		if cd.nonEmpty > 0 {
			p.NumericRatio = float64(len(cd.numbers)) / float64(cd.nonEmpty)
			p.DateRatio = float64(dateCount) / float64(cd.nonEmpty)
		}
		p.Type, p.Confidence = a.classify(p.NumericRatio, p.DateRatio)
		p.MostCommon = topValues(counts, a.config.TopValues)

		cd.profile = p
		out = append(out, cd)
	}
	return out
}

// classify assigns a column type from its numeric and date shares
func (a *Analyzer) classify(numeric, date float64) (model.ColumnType, float64) {
	lo := a.config.MixedThreshold
	switch {
	case numeric >= a.config.NumericThreshold:
		return model.ColumnNumeric, numeric
	case date >= a.config.DateThreshold:
		return model.ColumnDate, date
	case numeric >= lo && numeric < a.config.NumericThreshold && date >= lo && date < a.config.DateThreshold:
		return model.ColumnMixed, math.Min(1, numeric+date)
	default:
		return model.ColumnText, 1 - math.Max(numeric, date)
	}
}

func topValues(counts map[string]int, n int) []model.ValueCount {
	values := make([]model.ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, model.ValueCount{Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > n {
		values = values[:n]
	}
	return values
}

func headersLookReal(headers []string) bool {
	if len(headers) == 0 {
		return false
	}
	seen := make(map[string]bool, len(headers))
	textual, nonEmpty := 0, 0
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		nonEmpty++
		key := strings.ToLower(h)
		if seen[key] {
			return false
		}
		seen[key] = true
		if _, ok := ParseNumber(h); !ok {
			textual++
		}
	}
	return nonEmpty > 0 && float64(textual)/float64(len(headers)) >= 0.8
}

var totalLabel = regexp.MustCompile(`(?i)^(grand\s+)?(sub)?totals?\b|^sum\b`)

func (a *Analyzer) hasTotals(t model.TableContent, columns []*columnData) bool {
	n := t.RowCount()
	if n == 0 {
		return false
	}
	for _, cell := range t.Rows[n-1] {
		if totalLabel.MatchString(strings.TrimSpace(cell)) {
			return true
		}
	}
	if n < 3 {
		return false
	}

	last := n - 1
	for _, c := range columns {
		if c.profile.Type != model.ColumnNumeric || len(c.numRows) < 3 || c.numRows[len(c.numRows)-1] != last {
			continue
		}
		sum := 0.0
		for _, v := range c.numbers[:len(c.numbers)-1] {
			sum += v
		}
		if sum == 0 {
			continue
		}
		lastValue := c.numbers[len(c.numbers)-1]
		if math.Abs(lastValue-sum) <= a.config.TotalsTolerance*math.Abs(sum) {
			return true
		}
	}
	return false
}

func hasCategories(columns []*columnData) bool {
	for _, c := range columns {
		if isCategorical(c) {
			return true
		}
	}
	return false
}

func isCategorical(c *columnData) bool {
	return c.profile.Type == model.ColumnText && c.nonEmpty >= 2 && c.profile.UniqueCount*2 <= c.nonEmpty
}

func financialIndicators(t model.TableContent, columns []*columnData) bool {
	for _, c := range columns {
		if c.money {
			return true
		}
	}
	for _, h := range t.Headers {
		if hasCurrencyMark(h) {
			return true
		}
	}
	return false
}
