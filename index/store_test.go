package index

import (
	"context"
	"errors"
	"testing"

	"github.com/tsawler/mosaic/chunk"
	"github.com/tsawler/mosaic/model"
)

func testChunks(docID string) []model.Chunk {
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	metas := []model.Metadata{
		model.TextMetadata{},
		&model.TableMetadata{RowCount: 2, ColumnCount: 2, Purpose: model.PurposeFinancial},
		&model.ImageMetadata{Width: 10, Height: 10, Format: model.ImageFormatPNG, LikelyType: model.KindDiagramOrChart},
	}
	types := []model.ChunkType{model.ChunkText, model.ChunkTable, model.ChunkImage}

	chunks := make([]model.Chunk, len(vectors))
	for i := range vectors {
		chunks[i] = model.Chunk{
			ID:          chunk.ChunkID(docID, i),
			DocumentID:  docID,
			PageNumber:  1,
			ChunkIndex:  i,
			Type:        types[i],
			Embedding:   vectors[i],
			Metadata:    metas[i],
			DisplayText: "chunk text",
		}
	}
	return chunks
}

func TestStore_PutQueryDelete(t *testing.T) {
	ctx := context.Background()
	s, err := Open(DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if hits, err := s.Query(ctx, []float32{1, 0, 0, 0}, 5); err != nil || len(hits) != 0 {
		t.Errorf("Query() on empty store = %v, %v", hits, err)
	}

	if err := s.Put(ctx, testChunks("doc-a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, testChunks("doc-b")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if s.Count() != 6 {
		t.Errorf("Count() = %d, want 6", s.Count())
	}

	// re-putting the same chunks replaces them
	if err := s.Put(ctx, testChunks("doc-a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if s.Count() != 6 {
		t.Errorf("Count() after upsert = %d, want 6", s.Count())
	}

	hits, err := s.Query(ctx, []float32{0, 0.1, 1, 0}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 6 {
		t.Fatalf("Expected topK capped at 6, got %d", len(hits))
	}
	top := hits[0]
	if top.ChunkIndex != 2 || top.Type != "image" || top.Metadata["likely_type"] != "diagram_or_chart" {
		t.Errorf("top hit = %+v", top)
	}
	if top.Similarity < hits[len(hits)-1].Similarity {
		t.Error("Expected hits ordered by similarity")
	}

	if err := s.DeleteDocument(ctx, "doc-a"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("Count() after delete = %d, want 3", s.Count())
	}
	hits, _ = s.Query(ctx, []float32{1, 0, 0, 0}, 3)
	for _, h := range hits {
		if h.DocumentID != "doc-b" {
			t.Errorf("hit from deleted document: %+v", h)
		}
	}
}

func TestStore_PutRejectsMissingEmbedding(t *testing.T) {
	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	chunks := testChunks("doc")
	chunks[1].Embedding = nil
	if err := s.Put(context.Background(), chunks); !errors.Is(err, ErrNoEmbedding) {
		t.Errorf("Put() error = %v, want ErrNoEmbedding", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestFlatten(t *testing.T) {
	chunks := testChunks("doc")
	tests := []struct {
		chunk model.Chunk
		want  map[string]string
	}{
		{chunks[0], map[string]string{"chunk_type": "text", "label": "Text", "page": "1", "chunk_index": "0"}},
		{chunks[1], map[string]string{"chunk_type": "table", "purpose": "financial", "rows": "2", "label": "Table (financial): 2 rows x 2 columns"}},
		{chunks[2], map[string]string{"chunk_type": "image", "likely_type": "diagram_or_chart", "format": "png", "label": "Image (diagram_or_chart, 10x10 png)"}},
	}
	for _, tt := range tests {
		got := Flatten(tt.chunk)
		if got["document_id"] != "doc" {
			t.Errorf("document_id = %q", got["document_id"])
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("Flatten()[%q] = %q, want %q", k, got[k], v)
			}
		}
	}
}
