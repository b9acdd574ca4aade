package layout

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/mosaic/model"
)

// Glyph is a single positioned character (or short run) from a content stream.
type Glyph struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
	Font     string
}

// Fragment is a run of glyphs on one baseline without a column-sized gap.
type Fragment struct {
	Text     string
	X, Y     float64 // Y is the baseline
	Width    float64
	Height   float64
	FontSize float64
}

// BBox returns the fragment's bounding box. The box extends slightly below the
// baseline to cover descenders.
func (f Fragment) BBox() model.BBox {
	return model.BBox{X: f.X, Y: f.Y - f.Height*0.2, Width: f.Width, Height: f.Height}
}

// Right returns the right edge X coordinate
func (f Fragment) Right() float64 {
	return f.X + f.Width
}

// FragmentConfig controls how glyphs are joined. Gaps are fractions of the
// font size.
type FragmentConfig struct {
	// SpaceGap is the gap above which a space is inserted (default: 0.15)
	SpaceGap float64

	// SplitGap is the gap above which a new fragment starts (default: 1.0)
	SplitGap float64

	// BaselineTolerance is the Y distance within which glyphs share a
	// baseline (default: 0.3)
	BaselineTolerance float64
}

// DefaultFragmentConfig returns sensible default configuration
func DefaultFragmentConfig() FragmentConfig {
	return FragmentConfig{
		SpaceGap:          0.15,
		SplitGap:          1.0,
		BaselineTolerance: 0.3,
	}
}

// BuildFragments joins glyphs into fragments. The result is ordered top to
// bottom, then left to right.
func BuildFragments(glyphs []Glyph, cfg FragmentConfig) []Fragment {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		tol := cfg.BaselineTolerance * fontSizeOr(sorted[i].FontSize, 10)
		if absFloat64(sorted[i].Y-sorted[j].Y) > tol {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var frags []Fragment
	var cur *Fragment
	var sb strings.Builder
	pendingSpace := false

	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(sb.String())
			if cur.Text != "" {
				frags = append(frags, *cur)
			}
		}
		cur = nil
		sb.Reset()
		pendingSpace = false
	}

	for _, g := range sorted {
		fs := fontSizeOr(g.FontSize, 10)
		blank := strings.TrimFunc(g.Text, unicode.IsSpace) == ""

		if cur != nil {
			gap := g.X - cur.Right()
			sameLine := absFloat64(g.Y-cur.Y) <= cfg.BaselineTolerance*fs
			if !sameLine || gap > cfg.SplitGap*fs || gap < -fs {
				flush()
			}
		}

		if blank {
			if cur != nil {
				pendingSpace = true
				cur.Width = maxFloat64(cur.Width, g.X+g.Width-cur.X)
			}
			continue
		}

		if cur == nil {
			cur = &Fragment{X: g.X, Y: g.Y, Height: fs, FontSize: fs}
		} else {
			gap := g.X - cur.Right()
			if pendingSpace || gap > cfg.SpaceGap*fs {
				sb.WriteByte(' ')
			}
		}
		pendingSpace = false
		sb.WriteString(g.Text)
		cur.Width = maxFloat64(cur.Width, g.X+g.Width-cur.X)
		if fs > cur.Height {
			cur.Height = fs
			cur.FontSize = fs
		}
	}
	flush()

	return frags
}

func fontSizeOr(fs, def float64) float64 {
	if fs <= 0 {
		return def
	}
	return fs
}

func absFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
