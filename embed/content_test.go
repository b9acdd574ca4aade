package embed

import (
	"context"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/tablemeta"
)

func TestHashing(t *testing.T) {
	h := NewHashing(64)
	ctx := context.Background()

	a, err := h.Embed(ctx, "Quarterly revenue grew")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := h.Embed(ctx, "Quarterly revenue grew")
	if !reflect.DeepEqual(a, b) {
		t.Error("Embed() not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}

	norm := 0.0
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", norm)
	}

	for _, text := range []string{"!!!", "", "a"} {
		v, _ := h.Embed(ctx, text)
		zero := true
		for _, x := range v {
			if x != 0 {
				zero = false
			}
		}
		if zero {
			t.Errorf("Embed(%q) returned a zero vector", text)
		}
	}
}

func TestContentEmbedder_Text(t *testing.T) {
	e := &scriptedEmbedder{dim: 4}
	ce := NewContentEmbedder(NewClient(e, 4))

	if _, err := ce.EmbedText(context.Background(), "  two\n\twords  "); err != nil {
		t.Fatal(err)
	}
	if e.texts[0] != "two words" {
		t.Errorf("embedded %q, want %q", e.texts[0], "two words")
	}
	if ce.Dimension() != 4 || ce.Model() != "scripted" {
		t.Errorf("Dimension() = %d, Model() = %q", ce.Dimension(), ce.Model())
	}
}

func TestTableRepresentation(t *testing.T) {
	tc := model.TableContent{
		Headers: []string{"Quarter", "Revenue"},
		Rows:    [][]string{{"Q1", "$1,250,000"}, {"Q2", "$1,450,000"}},
	}
	md := tablemeta.New(tablemeta.DefaultConfig()).Analyze(tc)

	rep := TableRepresentation(tc, md)
	for _, want := range []string{
		"Table purpose: financial",
		"Shape: 2 rows x 2 columns",
		"Headers: Quarter, Revenue",
		"Column Quarter (text): Q1, Q2",
		"Column Revenue (numeric)",
		"range 1250000 to 1450000",
		"financial indicators",
	} {
		if !strings.Contains(rep, want) {
			t.Errorf("representation missing %q:\n%s", want, rep)
		}
	}
	if rep != TableRepresentation(tc, md) {
		t.Error("TableRepresentation() not deterministic")
	}
}

func TestSampleValues(t *testing.T) {
	tc := model.TableContent{Rows: [][]string{{"b"}, {"a"}, {"a"}, {"c"}, {"d"}}}
	profile := model.ColumnProfile{
		Index:      0,
		MostCommon: []model.ValueCount{{Value: "a", Count: 2}, {Value: "b", Count: 1}},
	}
	got := sampleValues(tc, profile, 3)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sampleValues() = %v, want %v", got, want)
	}
}

func TestImageRepresentation(t *testing.T) {
	md := &model.ImageMetadata{
		Width: 800, Height: 600,
		Format:         model.ImageFormatPNG,
		ColorMode:      model.ColorModeRGB,
		Resolution:     model.ResolutionMedium,
		LikelyType:     model.KindPhotograph,
		Complexity:     model.ComplexityModerate,
		Temperature:    model.TemperatureWarm,
		DominantColors: []model.DominantColor{{Hex: "#ff0000", Percentage: 45}},
		HasText:        true,
	}
	rep := ImageRepresentation(model.ImageContent{}, md)
	for _, want := range []string{
		"Image: 800x600 png, rgb",
		"Resolution: medium",
		"Type: photograph, complexity moderate",
		"#ff0000 (45.0%)",
		"warm temperature",
		"Contains text: yes; contains charts: no",
	} {
		if !strings.Contains(rep, want) {
			t.Errorf("representation missing %q:\n%s", want, rep)
		}
	}
}

func TestContentEmbedder_TableAndImage(t *testing.T) {
	e := &scriptedEmbedder{dim: 4}
	ce := NewContentEmbedder(NewClient(e, 4))
	ctx := context.Background()

	tc := model.TableContent{Headers: []string{"A"}, Rows: [][]string{{"1"}}}
	if _, err := ce.EmbedTable(ctx, tc, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ce.EmbedImage(ctx, model.ImageContent{Width: 2, Height: 2}, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(e.texts[0], "Table purpose:") || !strings.HasPrefix(e.texts[1], "Image: 2x2") {
		t.Errorf("embedded texts = %q", e.texts)
	}
}

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Model() != "hashing" || c.Dimension() != 384 {
		t.Errorf("Model() = %q, Dimension() = %d", c.Model(), c.Dimension())
	}
	vec, err := c.Embed(context.Background(), "hello")
	if err != nil || len(vec) != 384 {
		t.Errorf("Embed() = %d values, %v", len(vec), err)
	}

	cfg := DefaultConfig()
	cfg.Provider = "nope"
	if _, err := NewFromConfig(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for unknown provider")
	}

	cfg.Provider = ProviderOpenAI
	if _, err := NewFromConfig(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for openai without API key")
	}

	cfg.Provider = ProviderOllama
	if _, err := NewFromConfig(context.Background(), cfg, nil); err != nil {
		t.Errorf("ollama construction error = %v", err)
	}
}

func TestKnownProvider(t *testing.T) {
	for _, p := range []string{"hashing", "ollama", "openai", "gemini"} {
		if !KnownProvider(p) {
			t.Errorf("KnownProvider(%q) = false", p)
		}
	}
	if KnownProvider("cohere") {
		t.Error("KnownProvider(cohere) = true")
	}
}
