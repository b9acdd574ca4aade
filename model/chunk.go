package model

// ChunkType identifies the kind of content a chunk carries
type ChunkType string

const (
	ChunkText  ChunkType = "text"
	ChunkTable ChunkType = "table"
	ChunkImage ChunkType = "image"
)

// Chunk is the unit exposed to retrieval. It exclusively owns its embedding
// and metadata and refers to its parent document only through DocumentID.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	PageNumber int       `json:"page_number"`
	ChunkIndex int       `json:"chunk_index"`
	Type       ChunkType `json:"chunk_type"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata"`

	// DisplayText is the passage for text chunks and a generated label for
	// table and image chunks. It is never the embedding input for the latter.
	DisplayText string `json:"display_text"`
}
