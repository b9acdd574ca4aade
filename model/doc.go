// Package model defines the data shapes that flow through the extraction and
// chunking pipeline.
//
// Every stage of the pipeline produces or consumes one of these types, so this
// package has no dependencies on the rest of the module.
//
// # Regions
//
// A [RawRegion] is a page-scoped piece of content detected by the extractor:
//
//	region := model.RawRegion{
//	    PageNumber: 1,
//	    Index:      0,
//	    Type:       model.RegionText,
//	    Text:       "Quarterly results were strong.",
//	}
//
// Table regions carry a [RawTable] grid, image regions carry encoded bytes.
//
// # Structured content
//
//   - [TableContent] - a rectangular, normalized table grid
//   - [ImageContent] - a decoded image with its format and color mode
//
// # Metadata
//
// Derived metadata is a tagged variant keyed by [ChunkType]. The [Metadata]
// interface is sealed; its implementations are [TextMetadata],
// [*TableMetadata] and [*ImageMetadata]:
//
//	switch md := chunk.Metadata.(type) {
//	case *model.TableMetadata:
//	    fmt.Println(md.Purpose)
//	case *model.ImageMetadata:
//	    fmt.Println(md.LikelyType)
//	case model.TextMetadata:
//	}
//
// # Chunks
//
// A [Chunk] is the retrievable unit. It owns its embedding and metadata and
// refers back to its document only by identifier.
package model
