package tables

import (
	"math"

	"github.com/tsawler/mosaic/model"
)

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int

	// Minimum columns for a valid table
	MinCols int

	// Minimum confidence threshold (0-1)
	MinConfidence float64

	// Tolerance for column alignment (points)
	AlignmentTolerance float64

	// Largest vertical gap between rows of an aligned table, as a multiple of
	// the line height
	MaxRowGapRatio float64

	// Rectangles thinner than this are treated as ruling lines (points)
	RuleThickness float64

	// Minimum ruling line length (points)
	MinRuleLength float64

	// Rectangles covering more than this fraction of the page are ignored
	// when collecting rules (page backgrounds, frames)
	MaxRectPageRatio float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
		AlignmentTolerance: 3.0,
		MaxRowGapRatio:     2.5,
		RuleThickness:      2.0,
		MinRuleLength:      10.0,
		MaxRectPageRatio:   0.8,
	}
}

// Segment is a straight ruling line on a page
type Segment struct {
	Start, End model.Point
}

// Horizontal reports whether the segment runs along the X axis
func (s Segment) Horizontal() bool {
	return math.Abs(s.End.Y-s.Start.Y) < math.Abs(s.End.X-s.Start.X)
}

// Length returns the segment length
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// BBox returns the bounding box of the segment
func (s Segment) BBox() model.BBox {
	return model.NewBBoxFromPoints(s.Start, s.End)
}

// SegmentsFromRects converts rectangles drawn on a page into ruling segments.
// Thin rectangles become a single segment along their long axis; larger boxes
// contribute their four edges. Boxes that cover most of the page are skipped.
func SegmentsFromRects(rects []model.BBox, page model.BBox, cfg Config) []Segment {
	var segments []Segment
	pageArea := page.Area()

	for _, r := range rects {
		if r.Width < 0 {
			r.X += r.Width
			r.Width = -r.Width
		}
		if r.Height < 0 {
			r.Y += r.Height
			r.Height = -r.Height
		}

		switch {
		case r.Height <= cfg.RuleThickness && r.Width > cfg.RuleThickness:
			y := r.Y + r.Height/2
			segments = append(segments, Segment{model.Point{X: r.Left(), Y: y}, model.Point{X: r.Right(), Y: y}})
		case r.Width <= cfg.RuleThickness && r.Height > cfg.RuleThickness:
			x := r.X + r.Width/2
			segments = append(segments, Segment{model.Point{X: x, Y: r.Bottom()}, model.Point{X: x, Y: r.Top()}})
		case r.Width > cfg.RuleThickness && r.Height > cfg.RuleThickness:
			if pageArea > 0 && r.Area() >= pageArea*cfg.MaxRectPageRatio {
				continue
			}
			bl := model.Point{X: r.Left(), Y: r.Bottom()}
			br := model.Point{X: r.Right(), Y: r.Bottom()}
			tl := model.Point{X: r.Left(), Y: r.Top()}
			tr := model.Point{X: r.Right(), Y: r.Top()}
			segments = append(segments,
				Segment{bl, br}, Segment{tl, tr},
				Segment{bl, tl}, Segment{br, tr})
		}
	}

	return segments
}

// clusterValues merges sorted values that lie within tolerance of each other
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	clustered := []float64{values[0]}
	for i := 1; i < len(values); i++ {
		diff := values[i] - clustered[len(clustered)-1]
		if diff > tolerance {
			clustered = append(clustered, values[i])
		} else {
			clustered[len(clustered)-1] = (clustered[len(clustered)-1] + values[i]) / 2
		}
	}

	return clustered
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := 0.0
	for _, v := range values {
		m += v
	}
	m /= float64(len(values))

	if m == 0 {
		return 0
	}

	v := 0.0
	for _, val := range values {
		diff := val - m
		v += diff * diff
	}
	v /= float64(len(values))

	return math.Sqrt(v) / m
}
