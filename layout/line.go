package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/mosaic/model"
)

// Line represents a single line of text on a page
type Line struct {
	// BBox is the bounding box of the line
	BBox model.BBox

	// Fragments are the fragments that make up this line (sorted left to right)
	Fragments []Fragment

	// Text is the assembled text content of the line
	Text string

	// Index is the line's position on the page (0-based, top to bottom)
	Index int

	// Baseline is the Y coordinate of the text baseline
	Baseline float64

	// Height is the line height (max fragment height)
	Height float64

	// SpacingBefore is the vertical space from the previous line (0 for first line)
	SpacingBefore float64

	// AverageFontSize is the average font size of fragments in this line
	AverageFontSize float64
}

// LineConfig holds configuration for line detection
type LineConfig struct {
	// LineHeightTolerance is the Y-distance tolerance for grouping fragments into lines
	// as a fraction of fragment height (default: 0.5)
	LineHeightTolerance float64

	// MinLineWidth is the minimum width for a valid line (default: 1 point)
	MinLineWidth float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		LineHeightTolerance: 0.5,
		MinLineWidth:        1.0,
	}
}

// LineDetector detects text lines on a page
type LineDetector struct {
	config LineConfig
}

// NewLineDetector creates a new line detector with default configuration
func NewLineDetector() *LineDetector {
	return &LineDetector{config: DefaultLineConfig()}
}

// NewLineDetectorWithConfig creates a line detector with custom configuration
func NewLineDetectorWithConfig(config LineConfig) *LineDetector {
	return &LineDetector{config: config}
}

// Detect groups fragments into lines, top of page first
func (d *LineDetector) Detect(fragments []Fragment) []Line {
	if len(fragments) == 0 {
		return nil
	}

	groups := d.groupIntoLines(fragments)
	lines := d.buildLines(groups)
	calculateSpacing(lines)
	return lines
}

// groupIntoLines groups fragments into horizontal lines based on baseline
func (d *LineDetector) groupIntoLines(fragments []Fragment) [][]Fragment {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines [][]Fragment
	var current []Fragment

	for _, frag := range sorted {
		if len(current) == 0 {
			current = append(current, frag)
			continue
		}

		tolerance := averageHeight(current) * d.config.LineHeightTolerance
		if absFloat64(frag.Y-averageY(current)) <= tolerance {
			current = append(current, frag)
			continue
		}

		lines = append(lines, sortByX(current))
		current = []Fragment{frag}
	}

	if len(current) > 0 {
		lines = append(lines, sortByX(current))
	}

	return lines
}

// buildLines creates Line objects from fragment groups
func (d *LineDetector) buildLines(groups [][]Fragment) []Line {
	lines := make([]Line, 0, len(groups))

	for _, fragments := range groups {
		line := Line{Fragments: fragments}

		line.BBox = fragments[0].BBox()
		line.Baseline = fragments[0].Y
		line.Height = fragments[0].Height
		total := 0.0
		for _, f := range fragments {
			line.BBox = line.BBox.Union(f.BBox())
			if f.Y < line.Baseline {
				line.Baseline = f.Y
			}
			if f.Height > line.Height {
				line.Height = f.Height
			}
			total += f.FontSize
		}
		line.AverageFontSize = total / float64(len(fragments))
		line.Text = assembleLineText(fragments)

		// Skip lines that are too narrow
		if line.BBox.Width < d.config.MinLineWidth {
			continue
		}

		lines = append(lines, line)
	}

	for i := range lines {
		lines[i].Index = i
	}

	return lines
}

// assembleLineText joins fragments with single spaces
func assembleLineText(fragments []Fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}

// calculateSpacing calculates spacing between consecutive lines
func calculateSpacing(lines []Line) {
	for i := 1; i < len(lines); i++ {
		prevBottom := lines[i-1].Baseline
		thisTop := lines[i].Baseline + lines[i].Height
		lines[i].SpacingBefore = prevBottom - thisTop
	}
}

func sortByX(frags []Fragment) []Fragment {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].X < frags[j].X
	})
	return frags
}

func averageY(frags []Fragment) float64 {
	total := 0.0
	for _, f := range frags {
		total += f.Y
	}
	return total / float64(len(frags))
}

func averageHeight(frags []Fragment) float64 {
	if len(frags) == 0 {
		return 12.0
	}
	total := 0.0
	for _, f := range frags {
		total += f.Height
	}
	return total / float64(len(frags))
}
