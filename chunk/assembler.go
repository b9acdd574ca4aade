package chunk

import (
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/tsawler/mosaic/model"
)

var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tsawler/mosaic/chunk"))

// Unit is one embedded piece of content awaiting assembly
type Unit struct {
	// Page is the 1-based source page
	Page int

	// Region is the document-wide source order of the originating region
	Region int

	// Part orders the passages split from one text region
	Part int

	Type        model.ChunkType
	Embedding   []float32
	Metadata    model.Metadata
	DisplayText string
}

// Assembler builds ordered chunks from units
type Assembler struct{}

// NewAssembler creates an assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble sorts units by source position and returns chunks numbered
// 0..n-1. The input slice is not modified.
func (a *Assembler) Assemble(documentID string, units []Unit) []model.Chunk {
	sorted := make([]Unit, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		if sorted[i].Region != sorted[j].Region {
			return sorted[i].Region < sorted[j].Region
		}
		return sorted[i].Part < sorted[j].Part
	})

	chunks := make([]model.Chunk, 0, len(sorted))
	for i, u := range sorted {
		md := u.Metadata
		if md == nil && u.Type == model.ChunkText {
			md = model.TextMetadata{}
		}
		chunks = append(chunks, model.Chunk{
			ID:          ChunkID(documentID, i),
			DocumentID:  documentID,
			PageNumber:  u.Page,
			ChunkIndex:  i,
			Type:        u.Type,
			Embedding:   u.Embedding,
			Metadata:    md,
			DisplayText: u.DisplayText,
		})
	}
	return chunks
}

// ChunkID returns the deterministic ID of a document's chunk
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"#"+strconv.Itoa(index))).String()
}
