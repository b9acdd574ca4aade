package imagemeta

import "math"

// sharpness is the Laplacian variance v mapped to v/(v+500)
func (r *raster) sharpness() float64 {
	if r.w < 3 || r.h < 3 {
		return 0
	}
	values := make([]float64, 0, (r.w-2)*(r.h-2))
	for y := 1; y < r.h-1; y++ {
		for x := 1; x < r.w-1; x++ {
			lap := r.at(x-1, y) + r.at(x+1, y) + r.at(x, y-1) + r.at(x, y+1) - 4*r.at(x, y)
			values = append(values, lap)
		}
	}
	_, sd := meanStd(values)
	v := sd * sd
	return v / (v + 500)
}

// noise estimates the Gaussian noise sigma with Immerkær's operator and
// scales it so that sigma 25 maps to 1
func (r *raster) noise() float64 {
	if r.w < 3 || r.h < 3 {
		return 0
	}
	sum := 0.0
	for y := 1; y < r.h-1; y++ {
		for x := 1; x < r.w-1; x++ {
			v := r.at(x-1, y-1) - 2*r.at(x, y-1) + r.at(x+1, y-1) -
				2*r.at(x-1, y) + 4*r.at(x, y) - 2*r.at(x+1, y) +
				r.at(x-1, y+1) - 2*r.at(x, y+1) + r.at(x+1, y+1)
			sum += math.Abs(v)
		}
	}
	sigma := sum * math.Sqrt(math.Pi/2) / (6 * float64(r.w-2) * float64(r.h-2))
	return clamp01(sigma / 25)
}

// blockiness compares horizontal luma steps across 8-pixel block boundaries
// with steps inside blocks. A ratio of 2 or more scores 1.
func (r *raster) blockiness() float64 {
	if r.w < 16 {
		return 0
	}
	boundary, interior := 0.0, 0.0
	nb, ni := 0, 0
	for y := 0; y < r.h; y++ {
		for x := 1; x < r.w; x++ {
			d := math.Abs(r.at(x, y) - r.at(x-1, y))
			if x%8 == 0 {
				boundary += d
				nb++
			} else {
				interior += d
				ni++
			}
		}
	}
	boundary /= float64(nb)
	interior /= float64(ni)
	if boundary == 0 {
		return 0
	}
	if interior == 0 {
		return 1
	}
	return clamp01(boundary/interior - 1)
}
