package imagemeta

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/mosaic/model"
)

// 3 bits per channel
const colorBins = 512

type colorBin struct {
	index   int
	count   int
	r, g, b float64
}

type histogram struct {
	bins  [colorBins]colorBin
	total int
}

func binIndex(r, g, b float64) int {
	return int(r)>>5<<6 | int(g)>>5<<3 | int(b)>>5
}

func (r *raster) colorHistogram() *histogram {
	h := &histogram{total: len(r.luma)}
	for i := range h.bins {
		h.bins[i].index = i
	}
	for i := range r.luma {
		bin := &h.bins[binIndex(r.r[i], r.g[i], r.b[i])]
		bin.count++
		bin.r += r.r[i]
		bin.g += r.g[i]
		bin.b += r.b[i]
	}
	return h
}

// dominant returns up to n most populated bins with their mean colors
func (h *histogram) dominant(n int) []model.DominantColor {
	used := make([]colorBin, 0, colorBins)
	for _, b := range h.bins {
		if b.count > 0 {
			used = append(used, b)
		}
	}
	sort.Slice(used, func(i, j int) bool {
		if used[i].count != used[j].count {
			return used[i].count > used[j].count
		}
		return used[i].index < used[j].index
	})
	if len(used) > n {
		used = used[:n]
	}

	out := make([]model.DominantColor, 0, len(used))
	for _, b := range used {
		c := float64(b.count)
		dc := model.DominantColor{
			R:          uint8(math.Round(b.r / c)),
			G:          uint8(math.Round(b.g / c)),
			B:          uint8(math.Round(b.b / c)),
			Percentage: 100 * c / float64(h.total),
		}
		dc.Hex = fmt.Sprintf("#%02x%02x%02x", dc.R, dc.G, dc.B)
		out = append(out, dc)
	}
	return out
}

// diversity is the Shannon entropy of the histogram normalized to [0, 1]
func (h *histogram) diversity() float64 {
	if h.total == 0 {
		return 0
	}
	entropy := 0.0
	for _, b := range h.bins {
		if b.count == 0 {
			continue
		}
		p := float64(b.count) / float64(h.total)
		entropy -= p * math.Log2(p)
	}
	return clamp01(entropy / math.Log2(colorBins))
}

func (r *raster) averageColor() model.RGB {
	n := float64(len(r.luma))
	if n == 0 {
		return model.RGB{}
	}
	var avg model.RGB
	for i := range r.luma {
		avg.R += r.r[i]
		avg.G += r.g[i]
		avg.B += r.b[i]
	}
	avg.R /= n
	avg.G /= n
	avg.B /= n
	return avg
}

// chartColors counts dominant colors besides the background that cover at
// least 1% of the image
func chartColors(colors []model.DominantColor) int {
	n := 0
	for i, c := range colors {
		if i == 0 {
			continue
		}
		if c.Percentage >= 1 {
			n++
		}
	}
	return n
}
