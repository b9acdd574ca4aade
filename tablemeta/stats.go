package tablemeta

import (
	"math"
	"sort"

	"github.com/tsawler/mosaic/model"
)

// temporalSummary spans all parsed dates of the date columns. It returns nil
// when the table has no date column.
func temporalSummary(columns []*columnData) *model.TemporalSummary {
	var summary *model.TemporalSummary
	for _, c := range columns {
		if c.profile.Type != model.ColumnDate {
			continue
		}
		if summary == nil {
			summary = &model.TemporalSummary{}
		}
		summary.DateColumns = append(summary.DateColumns, c.profile.Name)
		for _, d := range c.dates {
			if summary.Min.IsZero() || d.Before(summary.Min) {
				summary.Min = d
			}
			if summary.Max.IsZero() || d.After(summary.Max) {
				summary.Max = d
			}
		}
	}
	if summary != nil && !summary.Min.IsZero() {
		summary.SpanDays = int(summary.Max.Sub(summary.Min).Hours() / 24)
	}
	return summary
}

// numericalSummary computes statistics for numeric and mixed columns over the
// cells that parsed as numbers. Columns without parsed numbers are omitted.
func numericalSummary(columns []*columnData) []model.NumericSummary {
	var out []model.NumericSummary
	for _, c := range columns {
		t := c.profile.Type
		if (t != model.ColumnNumeric && t != model.ColumnMixed) || len(c.numbers) == 0 {
			continue
		}
		out = append(out, summarize(c.profile.Name, c.numbers))
	}
	return out
}

func summarize(name string, values []float64) model.NumericSummary {
	s := model.NumericSummary{Column: name, Count: len(values)}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	for _, v := range sorted {
		s.Sum += v
	}
	s.Mean = s.Sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}

	variance := 0.0
	for _, v := range sorted {
		d := v - s.Mean
		variance += d * d
	}
	s.StdDev = math.Sqrt(variance / float64(len(sorted)))

	return s
}
