package imagemeta

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/tsawler/mosaic/model"
)

func content(img image.Image) model.ImageContent {
	b := img.Bounds()
	return model.ImageContent{
		Pixels:    img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    model.ImageFormatPNG,
		ColorMode: model.ColorModeOf(img),
	}
}

func fill(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func analyze(t *testing.T, img image.Image) *model.ImageMetadata {
	t.Helper()
	md, err := New(DefaultConfig()).Analyze(content(img))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return md
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAnalyze_Uniform(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 80))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	md := analyze(t, img)

	if md.Width != 100 || md.Height != 80 {
		t.Errorf("size = %dx%d, want 100x80", md.Width, md.Height)
	}
	if !near(md.Brightness, 128) {
		t.Errorf("Brightness = %v, want 128", md.Brightness)
	}
	if !near(md.Contrast, 0) {
		t.Errorf("Contrast = %v, want 0", md.Contrast)
	}
	if !md.IsGrayscale {
		t.Error("IsGrayscale = false")
	}
	if md.HasTransparency {
		t.Error("HasTransparency = true")
	}
	if md.Resolution != model.ResolutionLow {
		t.Errorf("Resolution = %q, want low", md.Resolution)
	}
	if len(md.DominantColors) != 1 || md.DominantColors[0].Percentage != 100 || md.DominantColors[0].Hex != "#808080" {
		t.Errorf("DominantColors = %+v", md.DominantColors)
	}
	if md.ColorDiversity != 0 {
		t.Errorf("ColorDiversity = %v, want 0", md.ColorDiversity)
	}
	if md.Temperature != model.TemperatureNeutral {
		t.Errorf("Temperature = %q, want neutral", md.Temperature)
	}
	if md.EdgeDensity != 0 || !near(md.TextureComplexity, 0) {
		t.Errorf("EdgeDensity = %v, TextureComplexity = %v; want 0, 0", md.EdgeDensity, md.TextureComplexity)
	}
	if !near(md.SymmetryScore, 1) {
		t.Errorf("SymmetryScore = %v, want 1", md.SymmetryScore)
	}
	if md.LikelyType != model.KindSimpleGraphic {
		t.Errorf("LikelyType = %q, want simple_graphic", md.LikelyType)
	}
	if md.Complexity != model.ComplexitySimple {
		t.Errorf("Complexity = %q, want simple", md.Complexity)
	}
	if md.HasText || md.HasCharts {
		t.Errorf("HasText = %v, HasCharts = %v; want false, false", md.HasText, md.HasCharts)
	}
	if !near(md.Sharpness, 0) || !near(md.Noise, 0) || md.CompressionArtifacts != 0 {
		t.Errorf("quality = %v/%v/%v, want zeros", md.Sharpness, md.Noise, md.CompressionArtifacts)
	}
	if !near(md.QualityScore, 0.5) {
		t.Errorf("QualityScore = %v, want 0.5", md.QualityScore)
	}
}

func TestAnalyze_Temperature(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want model.ColorTemperature
		hex  string
	}{
		{"red", color.NRGBA{R: 255, A: 255}, model.TemperatureWarm, "#ff0000"},
		{"blue", color.NRGBA{B: 255, A: 255}, model.TemperatureCool, "#0000ff"},
		{"green", color.NRGBA{G: 255, A: 255}, model.TemperatureNeutral, "#00ff00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := analyze(t, fill(20, 20, tt.c))
			if md.Temperature != tt.want {
				t.Errorf("Temperature = %q, want %q", md.Temperature, tt.want)
			}
			if md.IsGrayscale {
				t.Error("IsGrayscale = true for a saturated color")
			}
			if md.DominantColors[0].Hex != tt.hex {
				t.Errorf("Hex = %q, want %q", md.DominantColors[0].Hex, tt.hex)
			}
		})
	}
}

func TestAnalyze_Transparency(t *testing.T) {
	img := fill(10, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(3, 3, color.NRGBA{A: 0})
	if md := analyze(t, img); !md.HasTransparency {
		t.Error("HasTransparency = false with a transparent pixel")
	}
}

func TestAnalyze_Symmetry(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	md := analyze(t, img)
	if !near(md.HorizontalSymmetry, 0) {
		t.Errorf("HorizontalSymmetry = %v, want 0", md.HorizontalSymmetry)
	}
	if !near(md.VerticalSymmetry, 1) {
		t.Errorf("VerticalSymmetry = %v, want 1", md.VerticalSymmetry)
	}
	if !near(md.SymmetryScore, 0.5) {
		t.Errorf("SymmetryScore = %v, want 0.5", md.SymmetryScore)
	}
}

func TestAnalyze_Chart(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(255)
			if x%10 == 0 || y%10 == 0 {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	md := analyze(t, img)
	if md.LikelyType != model.KindDiagramOrChart {
		t.Errorf("LikelyType = %q, want diagram_or_chart (edges %v, diversity %v)",
			md.LikelyType, md.EdgeDensity, md.ColorDiversity)
	}
	if !md.HasCharts {
		t.Error("HasCharts = false for a grid")
	}
}

func TestAnalyze_Photograph(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			c := color.NRGBA{R: uint8(2 * x), G: uint8(2 * y), B: 128, A: 255}
			if x >= 44 && x < 84 && y >= 44 && y < 84 {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	md := analyze(t, img)
	if md.LikelyType != model.KindPhotograph {
		t.Errorf("LikelyType = %q, want photograph (edges %v, diversity %v)",
			md.LikelyType, md.EdgeDensity, md.ColorDiversity)
	}
	if md.HasCharts {
		t.Error("HasCharts = true for a photograph")
	}
}

func TestAnalyze_Text(t *testing.T) {
	img := fill(64, 64, color.White)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x%4 < 2 {
				img.Set(x, y, color.Black)
			}
		}
	}
	if md := analyze(t, img); !md.HasText {
		t.Error("HasText = false for a striped glyph area")
	}
}

func TestAnalyze_Noise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	md := analyze(t, img)
	if md.Noise < 0.9 {
		t.Errorf("Noise = %v, want near 1 for uniform noise", md.Noise)
	}
	if md.Complexity == model.ComplexitySimple {
		t.Errorf("Complexity = %q for noise", md.Complexity)
	}
	if md.QualityScore < 0 || md.QualityScore > 1 {
		t.Errorf("QualityScore = %v out of [0, 1]", md.QualityScore)
	}
}

func TestAnalyze_Downscale(t *testing.T) {
	md := analyze(t, fill(1024, 256, color.NRGBA{R: 200, G: 200, B: 200, A: 255}))
	if md.Width != 1024 || md.Height != 256 {
		t.Errorf("size = %dx%d, want original 1024x256", md.Width, md.Height)
	}
	if math.Abs(md.Brightness-200) > 1.5 {
		t.Errorf("Brightness = %v, want 200", md.Brightness)
	}

	r := New(DefaultConfig()).analysisCopy(fill(1024, 256, color.White))
	if r.Bounds().Dx() != 512 || r.Bounds().Dy() != 128 {
		t.Errorf("analysis copy = %v, want 512x128", r.Bounds())
	}
}

func TestAnalyze_Resolution(t *testing.T) {
	a := New(DefaultConfig())
	tests := []struct {
		pixels int
		want   model.ResolutionCategory
	}{
		{100, model.ResolutionLow},
		{299_999, model.ResolutionLow},
		{300_000, model.ResolutionMedium},
		{1_999_999, model.ResolutionMedium},
		{2_000_000, model.ResolutionHigh},
	}
	for _, tt := range tests {
		if got := a.resolution(tt.pixels); got != tt.want {
			t.Errorf("resolution(%d) = %q, want %q", tt.pixels, got, tt.want)
		}
	}
}

func TestAnalyze_Malformed(t *testing.T) {
	good := fill(4, 4, color.White)
	tests := []struct {
		name string
		img  model.ImageContent
	}{
		{"nil pixels", model.ImageContent{Width: 4, Height: 4}},
		{"zero width", model.ImageContent{Pixels: good, Width: 0, Height: 4}},
		{"bounds mismatch", model.ImageContent{Pixels: good, Width: 8, Height: 4}},
		{"short rgba buffer", model.ImageContent{
			Pixels: &image.RGBA{Pix: make([]uint8, 7), Stride: 40, Rect: image.Rect(0, 0, 10, 10)},
			Width:  10,
			Height: 10,
		}},
		{"short nrgba buffer", model.ImageContent{
			Pixels: &image.NRGBA{Pix: make([]uint8, 12), Stride: 40, Rect: image.Rect(0, 0, 10, 10)},
			Width:  10,
			Height: 10,
		}},
	}
	a := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(tt.img)
			var me *MalformedImageError
			if !errors.As(err, &me) {
				t.Errorf("Analyze() error = %v, want MalformedImageError", err)
			}
		})
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	a := New(DefaultConfig())
	first, _ := a.Analyze(content(img))
	second, _ := a.Analyze(content(img))
	if !reflect.DeepEqual(first, second) {
		t.Error("Analyze() not deterministic")
	}
}

func TestDecode(t *testing.T) {
	src := fill(7, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want model.ImageFormat
	}{
		{"png", pngBuf.Bytes(), model.ImageFormatPNG},
		{"bmp", bmpBuf.Bytes(), model.ImageFormatBMP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if img.Width != 7 || img.Height != 5 {
				t.Errorf("size = %dx%d, want 7x5", img.Width, img.Height)
			}
			if img.Format != tt.want {
				t.Errorf("Format = %v, want %v", img.Format, tt.want)
			}
			if !bytes.Equal(img.Encoded, tt.data) {
				t.Error("Encoded does not keep the source bytes")
			}

			w, h, f, err := DecodeConfig(tt.data)
			if err != nil || w != 7 || h != 5 || f != tt.want {
				t.Errorf("DecodeConfig() = %d, %d, %v, %v", w, h, f, err)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image")} {
		_, err := Decode(data)
		var me *MalformedImageError
		if !errors.As(err, &me) {
			t.Errorf("Decode(%q) error = %v, want MalformedImageError", data, err)
		}
	}
}
