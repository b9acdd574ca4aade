package model

// RegionType identifies what kind of content a region holds.
type RegionType int

const (
	RegionText RegionType = iota
	RegionTable
	RegionImage
)

// String returns the lower-case name of the region type
func (t RegionType) String() string {
	switch t {
	case RegionText:
		return "text"
	case RegionTable:
		return "table"
	case RegionImage:
		return "image"
	default:
		return "unknown"
	}
}

// ChunkType returns the chunk type produced from regions of this type.
func (t RegionType) ChunkType() ChunkType {
	switch t {
	case RegionTable:
		return ChunkTable
	case RegionImage:
		return ChunkImage
	default:
		return ChunkText
	}
}

// RawRegion is a page-scoped piece of content as detected by the extractor,
// before any structuring or analysis. Regions are created once per page and
// treated as immutable afterwards.
type RawRegion struct {
	// PageNumber is 1-based.
	PageNumber int

	// Index is the region's source order within its page (0-based).
	Index int

	Type RegionType

	// BBox is the region's position on the page when the source format has
	// geometry; nil otherwise.
	BBox *BBox

	// Text holds the content of text regions.
	Text string

	// Data holds encoded bytes for image regions.
	Data []byte

	// MIMEType describes Data, if known.
	MIMEType string

	// Table holds the raw cell grid for table regions.
	Table *RawTable
}

// RawTable is the unnormalized cell grid found by table detection.
type RawTable struct {
	// Rows holds cell text, top to bottom. Rows may be ragged.
	Rows [][]string

	// HeaderRows is the number of leading rows the source marked as header
	// rows (for example HTML th/thead). Zero means unknown, not "no header".
	HeaderRows int

	// Ruled is true when the grid came from ruling lines rather than text
	// alignment.
	Ruled bool
}
