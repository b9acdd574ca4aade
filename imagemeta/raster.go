package imagemeta

import (
	"image"
	"math"
)

// raster is a non-premultiplied float view of the analysis copy
type raster struct {
	w, h    int
	r, g, b []float64
	luma    []float64
}

func newRaster(img *image.NRGBA) *raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	r := &raster{
		w: w, h: h,
		r:    make([]float64, n),
		g:    make([]float64, n),
		b:    make([]float64, n),
		luma: make([]float64, n),
	}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			p := row[x*4 : x*4+4]
			r.r[i], r.g[i], r.b[i] = float64(p[0]), float64(p[1]), float64(p[2])
			// Rec. 601
			r.luma[i] = 0.299*r.r[i] + 0.587*r.g[i] + 0.114*r.b[i]
		}
	}
	return r
}

func (r *raster) at(x, y int) float64 {
	return r.luma[y*r.w+x]
}

// lumaStats returns mean and standard deviation of luma
func (r *raster) lumaStats() (mean, stddev float64) {
	return meanStd(r.luma)
}

// grayShare is the fraction of pixels whose channel spread is at most spread
func (r *raster) grayShare(spread float64) float64 {
	if len(r.luma) == 0 {
		return 0
	}
	gray := 0
	for i := range r.luma {
		hi := math.Max(r.r[i], math.Max(r.g[i], r.b[i]))
		lo := math.Min(r.r[i], math.Min(r.g[i], r.b[i]))
		if hi-lo <= spread {
			gray++
		}
	}
	return float64(gray) / float64(len(r.luma))
}

// textureComplexity is the mean 8x8 block luma deviation, scaled to [0, 1]
func (r *raster) textureComplexity() float64 {
	const size = 8
	sum, blocks := 0.0, 0
	buf := make([]float64, 0, size*size)
	for by := 0; by < r.h; by += size {
		for bx := 0; bx < r.w; bx += size {
			buf = buf[:0]
			for y := by; y < min(by+size, r.h); y++ {
				for x := bx; x < min(bx+size, r.w); x++ {
					buf = append(buf, r.at(x, y))
				}
			}
			_, sd := meanStd(buf)
			sum += sd
			blocks++
		}
	}
	if blocks == 0 {
		return 0
	}
	return clamp01(sum / float64(blocks) / 64)
}

// horizontalSymmetry measures left-right mirror agreement
func (r *raster) horizontalSymmetry() float64 {
	if len(r.luma) == 0 {
		return 0
	}
	diff := 0.0
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			diff += math.Abs(r.at(x, y) - r.at(r.w-1-x, y))
		}
	}
	return clamp01(1 - diff/float64(len(r.luma))/255)
}

// verticalSymmetry measures top-bottom mirror agreement
func (r *raster) verticalSymmetry() float64 {
	if len(r.luma) == 0 {
		return 0
	}
	diff := 0.0
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			diff += math.Abs(r.at(x, y) - r.at(x, r.h-1-y))
		}
	}
	return clamp01(1 - diff/float64(len(r.luma))/255)
}

func meanStd(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
