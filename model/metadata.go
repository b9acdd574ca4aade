package model

import "time"

// Metadata is the derived metadata attached to a chunk. The set of
// implementations is closed: TextMetadata, *TableMetadata and *ImageMetadata.
type Metadata interface {
	ChunkType() ChunkType
	isMetadata()
}

// TextMetadata is the empty metadata record of text chunks.
type TextMetadata struct{}

// ChunkType implements Metadata
func (TextMetadata) ChunkType() ChunkType { return ChunkText }
func (TextMetadata) isMetadata()          {}

// ColumnType is the inferred type of a table column
type ColumnType string

const (
	ColumnNumeric ColumnType = "numeric"
	ColumnText    ColumnType = "text"
	ColumnDate    ColumnType = "date"
	ColumnMixed   ColumnType = "mixed"
)

// TablePurpose is the inferred role of a table
type TablePurpose string

const (
	PurposeFinancial TablePurpose = "financial"
	PurposeSchedule  TablePurpose = "schedule"
	PurposeInventory TablePurpose = "inventory"
	PurposeMetrics   TablePurpose = "metrics"
	PurposeGeneric   TablePurpose = "generic"
)

// ValueCount pairs a cell value with its number of occurrences
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one column of a table
type ColumnProfile struct {
	Name  string     `json:"name"`
	Index int        `json:"index"`
	Type  ColumnType `json:"type"`

	// Confidence is the ratio that decided Type.
	Confidence   float64 `json:"confidence"`
	NumericRatio float64 `json:"numeric_ratio"`
	DateRatio    float64 `json:"date_ratio"`

	UniqueCount int          `json:"unique_count"`
	MostCommon  []ValueCount `json:"most_common"`
}

// NumericSummary holds statistics over the cells of one column that parsed as
// numbers. Columns without any parsed number have no summary.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TemporalSummary describes the date columns of a table
type TemporalSummary struct {
	DateColumns []string  `json:"date_columns"`
	Min         time.Time `json:"min_date"`
	Max         time.Time `json:"max_date"`
	SpanDays    int       `json:"span_days"`
}

// TableMetadata is derived from a TableContent by the table analyzer and is
// immutable once computed.
type TableMetadata struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`

	Columns []ColumnProfile `json:"columns"`

	CompletenessScore float64 `json:"completeness_score"`
	Density           float64 `json:"density"`

	HasHeaders    bool `json:"has_headers"`
	HasTotals     bool `json:"has_totals"`
	HasCategories bool `json:"has_categories"`

	Purpose TablePurpose `json:"table_purpose"`

	IsWide bool `json:"is_wide"`
	IsLong bool `json:"is_long"`

	// Temporal is nil when the table has no date column.
	Temporal *TemporalSummary `json:"temporal,omitempty"`

	Numerical []NumericSummary `json:"numerical,omitempty"`

	FinancialIndicators bool `json:"financial_indicators"`
}

// ChunkType implements Metadata
func (*TableMetadata) ChunkType() ChunkType { return ChunkTable }
func (*TableMetadata) isMetadata()          {}

// Column looks up a column profile by name
func (m *TableMetadata) Column(name string) (ColumnProfile, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// NumericColumn looks up the numeric summary of a column by name
func (m *TableMetadata) NumericColumn(name string) (NumericSummary, bool) {
	for _, s := range m.Numerical {
		if s.Column == name {
			return s, true
		}
	}
	return NumericSummary{}, false
}

// ColumnsOfType returns the profiles whose type is t, in column order
func (m *TableMetadata) ColumnsOfType(t ColumnType) []ColumnProfile {
	var out []ColumnProfile
	for _, c := range m.Columns {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ResolutionCategory buckets an image by pixel count
type ResolutionCategory string

const (
	ResolutionLow    ResolutionCategory = "low"
	ResolutionMedium ResolutionCategory = "medium"
	ResolutionHigh   ResolutionCategory = "high"
)

// ColorTemperature is the warm/cool balance of an image
type ColorTemperature string

const (
	TemperatureWarm    ColorTemperature = "warm"
	TemperatureCool    ColorTemperature = "cool"
	TemperatureNeutral ColorTemperature = "neutral"
)

// ImageKind is the coarse content type of an image
type ImageKind string

const (
	KindDiagramOrChart ImageKind = "diagram_or_chart"
	KindPhotograph     ImageKind = "photograph"
	KindSimpleGraphic  ImageKind = "simple_graphic"
)

// ComplexityLevel grades the visual complexity of an image
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// DominantColor is one quantized color bin with its share of pixels
type DominantColor struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// RGB is an average color with fractional channels in 0-255
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ImageMetadata is derived from an ImageContent by the image analyzer.
type ImageMetadata struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Format    ImageFormat `json:"format"`
	ColorMode ColorMode   `json:"color_mode"`

	// Brightness is the mean luma (0-255); Contrast is its standard deviation.
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`

	IsGrayscale     bool               `json:"is_grayscale"`
	HasTransparency bool               `json:"has_transparency"`
	Resolution      ResolutionCategory `json:"resolution_category"`

	DominantColors []DominantColor  `json:"dominant_colors"`
	ColorDiversity float64          `json:"color_diversity"`
	AverageColor   RGB              `json:"average_rgb"`
	Temperature    ColorTemperature `json:"color_temperature"`

	EdgeDensity        float64 `json:"edge_density"`
	TextureComplexity  float64 `json:"texture_complexity"`
	HorizontalSymmetry float64 `json:"horizontal_symmetry"`
	VerticalSymmetry   float64 `json:"vertical_symmetry"`
	SymmetryScore      float64 `json:"symmetry_score"`
	RuleOfThirdsScore  float64 `json:"rule_of_thirds_score"`

	LikelyType ImageKind       `json:"likely_type"`
	HasText    bool            `json:"has_text"`
	HasCharts  bool            `json:"has_charts"`
	Complexity ComplexityLevel `json:"complexity_level"`

	Sharpness            float64 `json:"sharpness"`
	Noise                float64 `json:"noise"`
	CompressionArtifacts float64 `json:"compression_artifacts"`
	QualityScore         float64 `json:"overall_quality_score"`
}

// ChunkType implements Metadata
func (*ImageMetadata) ChunkType() ChunkType { return ChunkImage }
func (*ImageMetadata) isMetadata()          {}
