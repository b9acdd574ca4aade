package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/mosaic/layout"
	"github.com/tsawler/mosaic/model"
)

// GridDetector detects table grids from ruling lines
type GridDetector struct {
	// Tolerance for considering lines aligned (in points)
	AlignmentTolerance float64

	// Minimum number of aligned lines to form a grid axis
	MinAlignedLines int

	// Minimum line length to consider (in points)
	MinLineLength float64
}

// NewGridDetector creates a new grid detector with default settings
func NewGridDetector() *GridDetector {
	return &GridDetector{
		AlignmentTolerance: 3.0,
		MinAlignedLines:    2,
		MinLineLength:      10.0,
	}
}

// GridHypothesis represents a potential table grid detected from lines
type GridHypothesis struct {
	// Bounding box of the grid
	BBox model.BBox

	// Horizontal line positions (Y coordinates, sorted descending)
	HorizontalLines []float64

	// Vertical line positions (X coordinates, sorted ascending)
	VerticalLines []float64

	// Confidence score (0-1)
	Confidence float64

	// Number of rows and columns
	Rows int
	Cols int

	// Whether the grid has complete borders
	HasTopBorder    bool
	HasBottomBorder bool
	HasLeftBorder   bool
	HasRightBorder  bool
}

// AlignedLineGroup represents a group of segments aligned on an axis
type AlignedLineGroup struct {
	// Position on the alignment axis (X for vertical lines, Y for horizontal)
	Position float64

	// Segments in this group
	Lines []Segment

	// Span of the lines (min to max on the perpendicular axis)
	MinExtent float64
	MaxExtent float64
}

// Detect finds one grid hypothesis per connected cluster of ruling segments.
// Results are ordered top of page first.
func (gd *GridDetector) Detect(segments []Segment) []*GridHypothesis {
	var kept []Segment
	for _, s := range segments {
		if s.Length() >= gd.MinLineLength {
			kept = append(kept, s)
		}
	}

	var hypotheses []*GridHypothesis
	for _, component := range gd.connectedComponents(kept) {
		var horizontals, verticals []Segment
		for _, s := range component {
			if s.Horizontal() {
				horizontals = append(horizontals, s)
			} else {
				verticals = append(verticals, s)
			}
		}
		if h := gd.DetectFromLines(horizontals, verticals); h != nil {
			hypotheses = append(hypotheses, h)
		}
	}

	sort.SliceStable(hypotheses, func(i, j int) bool {
		return hypotheses[i].BBox.Top() > hypotheses[j].BBox.Top()
	})
	return hypotheses
}

// connectedComponents clusters segments whose boxes touch within tolerance
func (gd *GridDetector) connectedComponents(segments []Segment) [][]Segment {
	parent := make([]int, len(segments))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := range segments {
		bi := segments[i].BBox().Expand(gd.AlignmentTolerance)
		for j := i + 1; j < len(segments); j++ {
			if bi.Intersects(segments[j].BBox().Expand(gd.AlignmentTolerance)) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]Segment)
	var order []int
	for i, s := range segments {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], s)
	}

	components := make([][]Segment, 0, len(order))
	for _, root := range order {
		components = append(components, groups[root])
	}
	return components
}

// DetectFromLines builds a grid hypothesis from horizontal and vertical
// segments of one cluster. It returns nil when the lines do not form a grid.
func (gd *GridDetector) DetectFromLines(horizontals, verticals []Segment) *GridHypothesis {
	if len(horizontals) < gd.MinAlignedLines || len(verticals) < gd.MinAlignedLines {
		return nil
	}

	hGroups := gd.groupAlignedLines(horizontals, true)
	vGroups := gd.groupAlignedLines(verticals, false)

	if len(hGroups) < gd.MinAlignedLines || len(vGroups) < gd.MinAlignedLines {
		return nil
	}

	return gd.findGrid(hGroups, vGroups)
}

// groupAlignedLines groups lines that are aligned on the same axis
func (gd *GridDetector) groupAlignedLines(lines []Segment, isHorizontal bool) []AlignedLineGroup {
	position := func(s Segment) float64 {
		if isHorizontal {
			return (s.Start.Y + s.End.Y) / 2
		}
		return (s.Start.X + s.End.X) / 2
	}

	sorted := make([]Segment, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return position(sorted[i]) < position(sorted[j])
	})

	var groups []AlignedLineGroup
	current := AlignedLineGroup{Position: position(sorted[0]), Lines: []Segment{sorted[0]}}

	for _, s := range sorted[1:] {
		pos := position(s)
		if pos-current.Position <= gd.AlignmentTolerance {
			current.Lines = append(current.Lines, s)
			n := float64(len(current.Lines))
			current.Position = (current.Position*(n-1) + pos) / n
			continue
		}
		finalizeGroup(&current, isHorizontal)
		groups = append(groups, current)
		current = AlignedLineGroup{Position: pos, Lines: []Segment{s}}
	}

	finalizeGroup(&current, isHorizontal)
	groups = append(groups, current)

	return groups
}

// finalizeGroup calculates the perpendicular extent of an aligned group
func finalizeGroup(group *AlignedLineGroup, isHorizontal bool) {
	group.MinExtent = math.MaxFloat64
	group.MaxExtent = -math.MaxFloat64

	for _, line := range group.Lines {
		var lo, hi float64
		if isHorizontal {
			lo, hi = math.Min(line.Start.X, line.End.X), math.Max(line.Start.X, line.End.X)
		} else {
			lo, hi = math.Min(line.Start.Y, line.End.Y), math.Max(line.Start.Y, line.End.Y)
		}
		group.MinExtent = math.Min(group.MinExtent, lo)
		group.MaxExtent = math.Max(group.MaxExtent, hi)
	}
}

// findGrid builds a hypothesis from aligned line groups
func (gd *GridDetector) findGrid(hGroups, vGroups []AlignedLineGroup) *GridHypothesis {
	// Left/Right come from vertical positions, Top/Bottom from horizontal ones
	gridLeft, gridRight := positionRange(vGroups)
	gridBottom, gridTop := positionRange(hGroups)

	if gridRight <= gridLeft || gridTop <= gridBottom {
		return nil
	}

	relevantH := filterGroupsByExtent(hGroups, gridLeft, gridRight)
	relevantV := filterGroupsByExtent(vGroups, gridBottom, gridTop)

	if len(relevantH) < gd.MinAlignedLines || len(relevantV) < gd.MinAlignedLines {
		return nil
	}

	sort.Slice(relevantH, func(i, j int) bool {
		return relevantH[i].Position > relevantH[j].Position
	})
	sort.Slice(relevantV, func(i, j int) bool {
		return relevantV[i].Position < relevantV[j].Position
	})

	h := &GridHypothesis{
		BBox: model.BBox{
			X:      gridLeft,
			Y:      gridBottom,
			Width:  gridRight - gridLeft,
			Height: gridTop - gridBottom,
		},
		HorizontalLines: make([]float64, len(relevantH)),
		VerticalLines:   make([]float64, len(relevantV)),
		Rows:            len(relevantH) - 1,
		Cols:            len(relevantV) - 1,
	}
	for i, g := range relevantH {
		h.HorizontalLines[i] = g.Position
	}
	for i, g := range relevantV {
		h.VerticalLines[i] = g.Position
	}

	h.HasTopBorder = math.Abs(relevantH[0].Position-gridTop) < gd.AlignmentTolerance
	h.HasBottomBorder = math.Abs(relevantH[len(relevantH)-1].Position-gridBottom) < gd.AlignmentTolerance
	h.HasLeftBorder = math.Abs(relevantV[0].Position-gridLeft) < gd.AlignmentTolerance
	h.HasRightBorder = math.Abs(relevantV[len(relevantV)-1].Position-gridRight) < gd.AlignmentTolerance

	h.Confidence = gd.calculateConfidence(h, len(hGroups)+len(vGroups))

	if h.Rows <= 0 || h.Cols <= 0 {
		return nil
	}
	return h
}

func positionRange(groups []AlignedLineGroup) (lo, hi float64) {
	lo, hi = groups[0].Position, groups[0].Position
	for _, g := range groups[1:] {
		lo = math.Min(lo, g.Position)
		hi = math.Max(hi, g.Position)
	}
	return lo, hi
}

// filterGroupsByExtent keeps groups whose lines cover at least half the extent
func filterGroupsByExtent(groups []AlignedLineGroup, minExtent, maxExtent float64) []AlignedLineGroup {
	var result []AlignedLineGroup
	required := (maxExtent - minExtent) * 0.5

	for _, g := range groups {
		if g.MaxExtent-g.MinExtent < required {
			continue
		}
		if math.Min(g.MaxExtent, maxExtent) > math.Max(g.MinExtent, minExtent) {
			result = append(result, g)
		}
	}

	return result
}

// calculateConfidence scores cell count, regularity, borders and line coverage
func (gd *GridDetector) calculateConfidence(h *GridHypothesis, groupCount int) float64 {
	score := 0.0

	cellCount := h.Rows * h.Cols
	if cellCount >= 4 {
		score += 0.2
	}
	if cellCount >= 9 {
		score += 0.1
	}

	score += calculateRegularity(h) * 0.3

	borders := 0.0
	for _, present := range []bool{h.HasTopBorder, h.HasBottomBorder, h.HasLeftBorder, h.HasRightBorder} {
		if present {
			borders += 0.25
		}
	}
	score += borders * 0.2

	expected := float64(len(h.HorizontalLines) + len(h.VerticalLines))
	score += math.Min(1.0, float64(groupCount)/expected) * 0.2

	return math.Min(1.0, score)
}

// calculateRegularity measures how regular the grid spacing is
func calculateRegularity(h *GridHypothesis) float64 {
	rowScore := 1.0
	if h.Rows > 1 {
		heights := make([]float64, h.Rows)
		for i := 0; i < h.Rows; i++ {
			heights[i] = h.HorizontalLines[i] - h.HorizontalLines[i+1]
		}
		rowScore = math.Max(0, 1-coefficientOfVariation(heights))
	}

	colScore := 1.0
	if h.Cols > 1 {
		widths := make([]float64, h.Cols)
		for i := 0; i < h.Cols; i++ {
			widths[i] = h.VerticalLines[i+1] - h.VerticalLines[i]
		}
		colScore = math.Max(0, 1-coefficientOfVariation(widths))
	}

	return (rowScore + colScore) / 2
}

// Contains reports whether a fragment's center lies inside the grid
func (h *GridHypothesis) Contains(f layout.Fragment) bool {
	return h.BBox.Contains(f.BBox().Center())
}

// findCell locates the cell containing p, or (-1, -1)
func (h *GridHypothesis) findCell(p model.Point) (row, col int) {
	row, col = -1, -1
	for i := 0; i < h.Rows; i++ {
		if p.Y <= h.HorizontalLines[i] && p.Y >= h.HorizontalLines[i+1] {
			row = i
			break
		}
	}
	for j := 0; j < h.Cols; j++ {
		if p.X >= h.VerticalLines[j] && p.X <= h.VerticalLines[j+1] {
			col = j
			break
		}
	}
	return row, col
}

// Fill assigns fragments to grid cells and returns the cell text, top row
// first. Fragments outside the grid are ignored. Fragments sharing a cell are
// joined in reading order.
func (h *GridHypothesis) Fill(fragments []layout.Fragment) [][]string {
	cells := make([][][]layout.Fragment, h.Rows)
	for i := range cells {
		cells[i] = make([][]layout.Fragment, h.Cols)
	}

	for _, f := range fragments {
		row, col := h.findCell(f.BBox().Center())
		if row < 0 || col < 0 {
			continue
		}
		cells[row][col] = append(cells[row][col], f)
	}

	rows := make([][]string, h.Rows)
	for i := range cells {
		rows[i] = make([]string, h.Cols)
		for j, frags := range cells[i] {
			sort.SliceStable(frags, func(a, b int) bool {
				if math.Abs(frags[a].Y-frags[b].Y) > frags[a].Height*0.5 {
					return frags[a].Y > frags[b].Y
				}
				return frags[a].X < frags[b].X
			})
			parts := make([]string, 0, len(frags))
			for _, f := range frags {
				parts = append(parts, f.Text)
			}
			rows[i][j] = strings.Join(parts, " ")
		}
	}
	return rows
}
