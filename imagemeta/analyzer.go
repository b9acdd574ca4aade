package imagemeta

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/tsawler/mosaic/model"
)

// Config holds analysis parameters and classification thresholds
type Config struct {
	// MaxAnalysisSide bounds the longest side of the analyzed copy (default: 512)
	MaxAnalysisSide int

	// EdgeThreshold is the Sobel magnitude at which a pixel is an edge (default: 100)
	EdgeThreshold float64

	// LowResolutionPixels and HighResolutionPixels bound the medium resolution band
	LowResolutionPixels  int
	HighResolutionPixels int

	// ChartEdgeDensity is the minimum edge density of a diagram or chart (default: 0.08)
	ChartEdgeDensity float64

	// ChartMaxDiversity is the maximum color diversity of a diagram or chart (default: 0.45)
	ChartMaxDiversity float64

	// PhotoMinDiversity is the minimum color diversity of a photograph (default: 0.5)
	PhotoMinDiversity float64

	// PhotoMinEdgeDensity and PhotoMaxEdgeDensity bound the edge density of a photograph
	PhotoMinEdgeDensity float64
	PhotoMaxEdgeDensity float64

	// GrayscaleSpread is the largest channel spread of a gray pixel (default: 10)
	GrayscaleSpread float64

	// TemperatureDelta is the red/blue difference that makes an image warm or cool (default: 15)
	TemperatureDelta float64

	// MaxDominantColors caps the dominant color list (default: 5)
	MaxDominantColors int
}

// DefaultConfig returns default analysis configuration
func DefaultConfig() Config {
	return Config{
		MaxAnalysisSide:      512,
		EdgeThreshold:        100,
		LowResolutionPixels:  300_000,
		HighResolutionPixels: 2_000_000,
		ChartEdgeDensity:     0.08,
		ChartMaxDiversity:    0.45,
		PhotoMinDiversity:    0.5,
		PhotoMinEdgeDensity:  0.01,
		PhotoMaxEdgeDensity:  0.3,
		GrayscaleSpread:      10,
		TemperatureDelta:     15,
		MaxDominantColors:    5,
	}
}

// Analyzer derives ImageMetadata from decoded pixels. It holds only
// configuration and is safe for concurrent use.
type Analyzer struct {
	config Config
}

// New creates an analyzer
func New(config Config) *Analyzer {
	if config.MaxAnalysisSide <= 0 {
		config.MaxAnalysisSide = DefaultConfig().MaxAnalysisSide
	}
	if config.MaxDominantColors <= 0 {
		config.MaxDominantColors = DefaultConfig().MaxDominantColors
	}
	return &Analyzer{config: config}
}

// Analyze computes the metadata of img
func (a *Analyzer) Analyze(img model.ImageContent) (md *model.ImageMetadata, err error) {
	// buffers shorter than their bounds claim panic on first access
	defer func() {
		if r := recover(); r != nil {
			md, err = nil, &MalformedImageError{Reason: "corrupt pixel data", Err: fmt.Errorf("%v", r)}
		}
	}()

	if img.Pixels == nil {
		return nil, &MalformedImageError{Reason: "no pixel data"}
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, &MalformedImageError{Reason: "zero dimensions"}
	}
	b := img.Pixels.Bounds()
	if b.Dx() != img.Width || b.Dy() != img.Height {
		return nil, &MalformedImageError{Reason: "pixel bounds do not match dimensions"}
	}

	mode := img.ColorMode
	if mode == model.ColorModeUnknown {
		mode = model.ColorModeOf(img.Pixels)
	}

	md = &model.ImageMetadata{
		Width:           img.Width,
		Height:          img.Height,
		Format:          img.Format,
		ColorMode:       mode,
		HasTransparency: hasTransparency(img.Pixels),
		Resolution:      a.resolution(img.Width * img.Height),
	}

	r := newRaster(a.analysisCopy(img.Pixels))
	edges := r.sobel()

	md.Brightness, md.Contrast = r.lumaStats()
	md.IsGrayscale = mode == model.ColorModeGray || mode == model.ColorModeGrayAlpha || r.grayShare(a.config.GrayscaleSpread) >= 0.98

	hist := r.colorHistogram()
	md.DominantColors = hist.dominant(a.config.MaxDominantColors)
	md.ColorDiversity = hist.diversity()
	md.AverageColor = r.averageColor()
	md.Temperature = a.temperature(md.AverageColor)

	md.EdgeDensity = edges.density(a.config.EdgeThreshold)
	md.TextureComplexity = r.textureComplexity()
	md.HorizontalSymmetry = r.horizontalSymmetry()
	md.VerticalSymmetry = r.verticalSymmetry()
	md.SymmetryScore = (md.HorizontalSymmetry + md.VerticalSymmetry) / 2
	md.RuleOfThirdsScore = edges.ruleOfThirds()

	md.LikelyType = a.likelyType(md.EdgeDensity, md.ColorDiversity)
	md.HasText = a.hasText(r, edges)
	md.HasCharts = md.LikelyType == model.KindDiagramOrChart &&
		(edges.hasAxes(a.config.EdgeThreshold) || chartColors(md.DominantColors) >= 3)
	md.Complexity = complexity(md.EdgeDensity, md.TextureComplexity, md.ColorDiversity)

	md.Sharpness = r.sharpness()
	md.Noise = r.noise()
	md.CompressionArtifacts = r.blockiness()
	md.QualityScore = clamp01(0.5*md.Sharpness + 0.3*(1-md.Noise) + 0.2*(1-md.CompressionArtifacts))

	return md, nil
}

// analysisCopy converts src to NRGBA, downscaling when its longest side
// exceeds MaxAnalysisSide
func (a *Analyzer) analysisCopy(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if longest := max(w, h); longest > a.config.MaxAnalysisSide {
		scale := float64(a.config.MaxAnalysisSide) / float64(longest)
		w = max(1, int(math.Round(float64(w)*scale)))
		h = max(1, int(math.Round(float64(h)*scale)))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		return dst
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func (a *Analyzer) resolution(pixels int) model.ResolutionCategory {
	switch {
	case pixels < a.config.LowResolutionPixels:
		return model.ResolutionLow
	case pixels < a.config.HighResolutionPixels:
		return model.ResolutionMedium
	default:
		return model.ResolutionHigh
	}
}

func (a *Analyzer) temperature(avg model.RGB) model.ColorTemperature {
	switch {
	case avg.R-avg.B > a.config.TemperatureDelta:
		return model.TemperatureWarm
	case avg.B-avg.R > a.config.TemperatureDelta:
		return model.TemperatureCool
	default:
		return model.TemperatureNeutral
	}
}

func (a *Analyzer) likelyType(edgeDensity, diversity float64) model.ImageKind {
	switch {
	case edgeDensity >= a.config.ChartEdgeDensity && diversity <= a.config.ChartMaxDiversity:
		return model.KindDiagramOrChart
	case diversity >= a.config.PhotoMinDiversity &&
		edgeDensity >= a.config.PhotoMinEdgeDensity && edgeDensity <= a.config.PhotoMaxEdgeDensity:
		return model.KindPhotograph
	default:
		return model.KindSimpleGraphic
	}
}

func complexity(edgeDensity, texture, diversity float64) model.ComplexityLevel {
	score := 0.4*math.Min(edgeDensity/0.2, 1) + 0.3*texture + 0.3*diversity
	switch {
	case score < 0.3:
		return model.ComplexitySimple
	case score < 0.6:
		return model.ComplexityModerate
	default:
		return model.ComplexityComplex
	}
}

// hasTransparency scans the original pixels; a downscaled copy can hide
// isolated translucent pixels.
func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, alpha := img.At(x, y).RGBA(); alpha < 0xffff {
				return true
			}
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
