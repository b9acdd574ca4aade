package embed

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/mosaic/model"
)

// ContentEmbedder embeds the three region kinds
type ContentEmbedder struct {
	client *Client
}

// NewContentEmbedder creates a content embedder on top of c
func NewContentEmbedder(c *Client) *ContentEmbedder {
	return &ContentEmbedder{client: c}
}

// Dimension returns the vector length
func (ce *ContentEmbedder) Dimension() int {
	return ce.client.Dimension()
}

// Model returns the underlying model name
func (ce *ContentEmbedder) Model() string {
	return ce.client.Model()
}

// EmbedText embeds a whitespace-normalized passage
func (ce *ContentEmbedder) EmbedText(ctx context.Context, passage string) ([]float32, error) {
	return ce.client.Embed(ctx, strings.Join(strings.Fields(passage), " "))
}

// EmbedTable embeds the representation of a table's metadata
func (ce *ContentEmbedder) EmbedTable(ctx context.Context, t model.TableContent, md *model.TableMetadata) ([]float32, error) {
	return ce.client.Embed(ctx, TableRepresentation(t, md))
}

// EmbedImage embeds the representation of an image's metadata
func (ce *ContentEmbedder) EmbedImage(ctx context.Context, img model.ImageContent, md *model.ImageMetadata) ([]float32, error) {
	return ce.client.Embed(ctx, ImageRepresentation(img, md))
}

// TableRepresentation describes a table by its purpose, shape, columns and
// statistics rather than its raw cells
func TableRepresentation(t model.TableContent, md *model.TableMetadata) string {
	if md == nil {
		md = &model.TableMetadata{RowCount: t.RowCount(), ColumnCount: t.ColumnCount(), Purpose: model.PurposeGeneric}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Table purpose: %s\n", md.Purpose)

	shape := fmt.Sprintf("%d rows x %d columns", md.RowCount, md.ColumnCount)
	if md.IsWide {
		shape += ", wide"
	}
	if md.IsLong {
		shape += ", long"
	}
	fmt.Fprintf(&b, "Shape: %s\n", shape)

	if len(t.Headers) > 0 {
		fmt.Fprintf(&b, "Headers: %s\n", strings.Join(t.Headers, ", "))
	}

	for _, c := range md.Columns {
		fmt.Fprintf(&b, "Column %s (%s)", c.Name, c.Type)
		if samples := sampleValues(t, c, 3); len(samples) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(samples, ", "))
		}
		if s, ok := md.NumericColumn(c.Name); ok {
			fmt.Fprintf(&b, "; range %s to %s, mean %s", formatFloat(s.Min), formatFloat(s.Max), formatFloat(s.Mean))
		}
		b.WriteByte('\n')
	}

	if md.Temporal != nil && !md.Temporal.Min.IsZero() {
		fmt.Fprintf(&b, "Time span: %s to %s (%d days)\n",
			md.Temporal.Min.Format("2006-01-02"), md.Temporal.Max.Format("2006-01-02"), md.Temporal.SpanDays)
	}

	var flags []string
	if md.HasHeaders {
		flags = append(flags, "headers")
	}
	if md.HasTotals {
		flags = append(flags, "totals")
	}
	if md.HasCategories {
		flags = append(flags, "categories")
	}
	if md.FinancialIndicators {
		flags = append(flags, "financial indicators")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "Contains: %s\n", strings.Join(flags, ", "))
	}
	fmt.Fprintf(&b, "Completeness: %.2f", md.CompletenessScore)

	return b.String()
}

// sampleValues returns up to n values of a column: repeated values by
// frequency first, then distinct values in row order
func sampleValues(t model.TableContent, c model.ColumnProfile, n int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, vc := range c.MostCommon {
		if len(out) == n || vc.Count < 2 {
			break
		}
		out = append(out, vc.Value)
		seen[vc.Value] = true
	}
	for _, v := range t.Column(c.Index) {
		if len(out) == n {
			break
		}
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		out = append(out, v)
		seen[v] = true
	}
	return out
}

// ImageRepresentation describes an image by its metadata, never its pixels
func ImageRepresentation(img model.ImageContent, md *model.ImageMetadata) string {
	if md == nil {
		md = &model.ImageMetadata{Width: img.Width, Height: img.Height, Format: img.Format}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Image: %dx%d %s, %s\n", md.Width, md.Height, md.Format, md.ColorMode)
	fmt.Fprintf(&b, "Resolution: %s\n", md.Resolution)
	fmt.Fprintf(&b, "Type: %s, complexity %s\n", md.LikelyType, md.Complexity)

	if len(md.DominantColors) > 0 {
		colors := make([]string, 0, len(md.DominantColors))
		for _, c := range md.DominantColors {
			colors = append(colors, fmt.Sprintf("%s (%.1f%%)", c.Hex, c.Percentage))
		}
		fmt.Fprintf(&b, "Dominant colors: %s\n", strings.Join(colors, ", "))
	}

	tone := "color"
	if md.IsGrayscale {
		tone = "grayscale"
	}
	fmt.Fprintf(&b, "Tone: %s, %s temperature, brightness %.1f, contrast %.1f\n",
		tone, md.Temperature, md.Brightness, md.Contrast)
	fmt.Fprintf(&b, "Contains text: %s; contains charts: %s\n", yesNo(md.HasText), yesNo(md.HasCharts))
	fmt.Fprintf(&b, "Quality: %.2f (sharpness %.2f, noise %.2f)", md.QualityScore, md.Sharpness, md.Noise)

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
