package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/mosaic/layout"
	"github.com/tsawler/mosaic/model"
)

// AlignedBlock is a run of consecutive lines whose fragments line up in
// columns
type AlignedBlock struct {
	BBox model.BBox

	// First and Last are the indexes (inclusive) of the lines in the block
	First, Last int

	// Rows holds cell text per line, one entry per column
	Rows [][]string

	// Confidence score (0-1)
	Confidence float64
}

// column is an x-range shared by fragments of several lines
type column struct {
	left, right float64
}

func (c column) center() float64 { return (c.left + c.right) / 2 }

// AlignmentDetector finds tables drawn without rules from column alignment
type AlignmentDetector struct {
	config Config
}

// NewAlignmentDetector creates a detector with the given configuration
func NewAlignmentDetector(config Config) *AlignmentDetector {
	return &AlignmentDetector{config: config}
}

// Detect scans lines (ordered top to bottom) for aligned blocks.
func (d *AlignmentDetector) Detect(lines []layout.Line) []AlignedBlock {
	var blocks []AlignedBlock
	minRows := d.config.MinRows
	if minRows < 3 {
		// two aligned lines are too common in prose to count as a table
		minRows = 3
	}

	i := 0
	for i < len(lines) {
		if len(lines[i].Fragments) < d.config.MinCols {
			i++
			continue
		}

		cols := columnsOf(lines[i].Fragments)
		matched, total := len(lines[i].Fragments), len(lines[i].Fragments)
		j := i + 1
		for ; j < len(lines); j++ {
			line := lines[j]
			if len(line.Fragments) < d.config.MinCols {
				break
			}
			if line.SpacingBefore > line.Height*d.config.MaxRowGapRatio {
				break
			}
			next, hits := d.extend(cols, line.Fragments)
			if hits < d.config.MinCols || len(line.Fragments)-hits > 1 {
				break
			}
			cols = next
			matched += hits
			total += len(line.Fragments)
		}

		if j-i < minRows {
			i++
			continue
		}

		block := d.buildBlock(lines, i, j-1, mergeColumns(cols, d.config.AlignmentTolerance))
		block.Confidence = d.calculateConfidence(lines[i:j], block, float64(matched)/float64(total))
		if len(block.Rows[0]) >= d.config.MinCols && block.Confidence >= d.config.MinConfidence {
			blocks = append(blocks, block)
			i = j
			continue
		}
		i++
	}

	return blocks
}

func columnsOf(frags []layout.Fragment) []column {
	cols := make([]column, 0, len(frags))
	for _, f := range frags {
		cols = append(cols, column{left: f.X, right: f.Right()})
	}
	return cols
}

// extend matches fragments against the known columns and returns the updated
// columns plus the number of fragments that aligned with one of them. An
// unmatched fragment opens a new column.
func (d *AlignmentDetector) extend(cols []column, frags []layout.Fragment) ([]column, int) {
	tol := d.config.AlignmentTolerance
	next := make([]column, len(cols))
	copy(next, cols)

	hits := 0
	for _, f := range frags {
		center := (f.X + f.Right()) / 2
		found := -1
		for k, c := range next {
			if math.Abs(f.X-c.left) <= tol || math.Abs(f.Right()-c.right) <= tol || math.Abs(center-c.center()) <= tol {
				found = k
				break
			}
		}
		if found < 0 {
			next = append(next, column{left: f.X, right: f.Right()})
			continue
		}
		hits++
		next[found].left = math.Min(next[found].left, f.X)
		next[found].right = math.Max(next[found].right, f.Right())
	}
	return next, hits
}

// mergeColumns sorts columns left to right and merges overlapping ranges
func mergeColumns(cols []column, tol float64) []column {
	sorted := make([]column, len(cols))
	copy(sorted, cols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].left < sorted[j].left })

	var merged []column
	for _, c := range sorted {
		if n := len(merged); n > 0 && c.left <= merged[n-1].right+tol {
			merged[n-1].right = math.Max(merged[n-1].right, c.right)
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

func (d *AlignmentDetector) buildBlock(lines []layout.Line, first, last int, cols []column) AlignedBlock {
	block := AlignedBlock{First: first, Last: last}

	for _, line := range lines[first : last+1] {
		block.BBox = block.BBox.Union(line.BBox)
		cells := make([][]string, len(cols))
		for _, f := range line.Fragments {
			k := nearestColumn(cols, f)
			cells[k] = append(cells[k], f.Text)
		}
		row := make([]string, len(cols))
		for k, parts := range cells {
			row[k] = strings.Join(parts, " ")
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

func nearestColumn(cols []column, f layout.Fragment) int {
	center := (f.X + f.Right()) / 2
	best, bestDist := 0, math.MaxFloat64
	for k, c := range cols {
		if center >= c.left && center <= c.right {
			return k
		}
		dist := math.Min(math.Abs(center-c.left), math.Abs(center-c.right))
		if dist < bestDist {
			best, bestDist = k, dist
		}
	}
	return best
}

// calculateConfidence combines spacing regularity, alignment, column count and
// cell occupancy
func (d *AlignmentDetector) calculateConfidence(lines []layout.Line, block AlignedBlock, alignment float64) float64 {
	score := 0.0

	// Factor 1: row spacing regularity (0-0.3)
	var gaps []float64
	for k := 1; k < len(lines); k++ {
		gaps = append(gaps, lines[k-1].Baseline-lines[k].Baseline)
	}
	score += math.Max(0, 1-coefficientOfVariation(gaps)) * 0.3

	// Factor 2: alignment quality (0-0.3)
	score += alignment * 0.3

	// Factor 3: column count (0-0.2)
	switch cols := len(block.Rows[0]); {
	case cols >= 3:
		score += 0.2
	case cols == 2:
		score += 0.1
	}

	// Factor 4: cell occupancy (0-0.2)
	filled, total := 0, 0
	for _, row := range block.Rows {
		for _, cell := range row {
			total++
			if cell != "" {
				filled++
			}
		}
	}
	if total > 0 {
		score += float64(filled) / float64(total) * 0.2
	}

	return math.Min(1.0, score)
}
