package imagemeta

import "math"

// edgeMap holds Sobel gradient magnitudes. Border pixels are zero.
type edgeMap struct {
	w, h int
	mag  []float64
}

func (r *raster) sobel() *edgeMap {
	e := &edgeMap{w: r.w, h: r.h, mag: make([]float64, r.w*r.h)}
	for y := 1; y < r.h-1; y++ {
		for x := 1; x < r.w-1; x++ {
			tl, t, tr := r.at(x-1, y-1), r.at(x, y-1), r.at(x+1, y-1)
			l, rt := r.at(x-1, y), r.at(x+1, y)
			bl, b, br := r.at(x-1, y+1), r.at(x, y+1), r.at(x+1, y+1)

			gx := (tr + 2*rt + br) - (tl + 2*l + bl)
			gy := (bl + 2*b + br) - (tl + 2*t + tr)
			e.mag[y*r.w+x] = math.Hypot(gx, gy)
		}
	}
	return e
}

func (e *edgeMap) interior() int {
	if e.w < 3 || e.h < 3 {
		return 0
	}
	return (e.w - 2) * (e.h - 2)
}

// density is the fraction of interior pixels at or above threshold
func (e *edgeMap) density(threshold float64) float64 {
	n := e.interior()
	if n == 0 {
		return 0
	}
	return float64(e.count(1, 1, e.w-1, e.h-1, threshold)) / float64(n)
}

// count returns the number of pixels in [x0,x1)x[y0,y1) at or above threshold
func (e *edgeMap) count(x0, y0, x1, y1 int, threshold float64) int {
	n := 0
	for y := max(y0, 0); y < min(y1, e.h); y++ {
		for x := max(x0, 0); x < min(x1, e.w); x++ {
			if e.mag[y*e.w+x] >= threshold {
				n++
			}
		}
	}
	return n
}

func (e *edgeMap) mean(x0, y0, x1, y1 int) float64 {
	sum, n := 0.0, 0
	for y := max(y0, 0); y < min(y1, e.h); y++ {
		for x := max(x0, 0); x < min(x1, e.w); x++ {
			sum += e.mag[y*e.w+x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ruleOfThirds compares gradient energy around the four third-intersections
// with the image mean. Equal energy scores 0.5.
func (e *edgeMap) ruleOfThirds() float64 {
	global := e.mean(0, 0, e.w, e.h)
	if global == 0 {
		return 0
	}
	half := max(1, min(e.w, e.h)/12)
	sum := 0.0
	for _, fy := range []int{e.h / 3, 2 * e.h / 3} {
		for _, fx := range []int{e.w / 3, 2 * e.w / 3} {
			sum += e.mean(fx-half, fy-half, fx+half+1, fy+half+1)
		}
	}
	return clamp01(sum / 4 / global / 2)
}

// hasAxes looks for a horizontal and a vertical run of edge pixels, each
// spanning at least 40% of its side
func (e *edgeMap) hasAxes(threshold float64) bool {
	minH := int(math.Ceil(0.4 * float64(e.w)))
	minV := int(math.Ceil(0.4 * float64(e.h)))
	if e.interior() == 0 {
		return false
	}

	horizontal := false
	for y := 1; y < e.h-1 && !horizontal; y++ {
		run := 0
		for x := 0; x < e.w; x++ {
			if e.mag[y*e.w+x] >= threshold {
				run++
				if run >= minH {
					horizontal = true
					break
				}
			} else {
				run = 0
			}
		}
	}
	if !horizontal {
		return false
	}

	for x := 1; x < e.w-1; x++ {
		run := 0
		for y := 0; y < e.h; y++ {
			if e.mag[y*e.w+x] >= threshold {
				run++
				if run >= minV {
					return true
				}
			} else {
				run = 0
			}
		}
	}
	return false
}

// hasText reports whether enough 16x16 blocks look like glyph clusters:
// dense edges over a bimodal luma distribution
func (a *Analyzer) hasText(r *raster, e *edgeMap) bool {
	const size = 16
	textLike, blocks := 0, 0
	buf := make([]float64, 0, size*size)
	for by := 0; by < r.h; by += size {
		for bx := 0; bx < r.w; bx += size {
			x1, y1 := min(bx+size, r.w), min(by+size, r.h)
			blocks++

			area := (x1 - bx) * (y1 - by)
			edgeShare := float64(e.count(bx, by, x1, y1, a.config.EdgeThreshold)) / float64(area)
			if edgeShare < 0.15 {
				continue
			}

			buf = buf[:0]
			for y := by; y < y1; y++ {
				for x := bx; x < x1; x++ {
					buf = append(buf, r.at(x, y))
				}
			}
			if _, sd := meanStd(buf); sd >= 40 {
				textLike++
			}
		}
	}
	if blocks == 0 {
		return false
	}
	return float64(textLike)/float64(blocks) >= 0.04
}
