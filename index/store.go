// Package index stores chunks in an embedded chromem-go vector collection.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/tsawler/mosaic/chunk"
	"github.com/tsawler/mosaic/model"
)

// ErrNoEmbedding is returned by Put for a chunk without a vector
var ErrNoEmbedding = errors.New("index: chunk has no embedding")

// Config configures the store
type Config struct {
	// Path is the persistence directory. Empty keeps the store in memory.
	Path string `yaml:"path"`

	// Collection name (default: chunks)
	Collection string `yaml:"collection"`

	// Compress gzips persisted documents
	Compress bool `yaml:"compress"`
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() Config {
	return Config{Collection: "chunks"}
}

// Store is a chunk sink over a chromem collection
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// Hit is one query result
type Hit struct {
	ChunkID    string            `json:"chunk_id"`
	DocumentID string            `json:"document_id"`
	Page       int               `json:"page"`
	ChunkIndex int               `json:"chunk_index"`
	Type       string            `json:"chunk_type"`
	Text       string            `json:"text"`
	Similarity float32           `json:"similarity"`
	Metadata   map[string]string `json:"metadata"`
}

// Open opens or creates the store
func Open(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultConfig().Collection
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("open index at %s: %w", cfg.Path, err)
		}
	}

	// embeddings are always supplied, so no embedding function is needed
	col, err := db.GetOrCreateCollection(cfg.Collection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}
	return &Store{db: db, collection: col}, nil
}

// Put upserts chunks by ID
func (s *Store) Put(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: %s", ErrNoEmbedding, c.ID)
		}
		ids[i] = c.ID
		embeddings[i] = c.Embedding
		metadatas[i] = Flatten(c)
		contents[i] = c.DisplayText
	}
	if err := s.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes every chunk of a document
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return errors.New("index: empty document ID")
	}
	if err := s.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// Query returns the topK chunks most similar to vector. topK is capped at
// the collection size.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	n := min(topK, s.collection.Count())
	if n <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		hits = append(hits, Hit{
			ChunkID:    r.ID,
			DocumentID: r.Metadata["document_id"],
			Page:       page,
			ChunkIndex: idx,
			Type:       r.Metadata["chunk_type"],
			Text:       r.Content,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
		})
	}
	return hits, nil
}

// Count returns the number of stored chunks
func (s *Store) Count() int {
	return s.collection.Count()
}

// Flatten reduces a chunk's position and metadata to the string map stored
// alongside its vector
func Flatten(c model.Chunk) map[string]string {
	m := map[string]string{
		"document_id": c.DocumentID,
		"page":        strconv.Itoa(c.PageNumber),
		"chunk_index": strconv.Itoa(c.ChunkIndex),
		"chunk_type":  string(c.Type),
	}
	switch md := c.Metadata.(type) {
	case *model.TableMetadata:
		m["label"] = chunk.TableLabel(md)
		if md != nil {
			m["purpose"] = string(md.Purpose)
			m["rows"] = strconv.Itoa(md.RowCount)
			m["columns"] = strconv.Itoa(md.ColumnCount)
		}
	case *model.ImageMetadata:
		m["label"] = chunk.ImageLabel(md)
		if md != nil {
			m["likely_type"] = string(md.LikelyType)
			m["format"] = md.Format.String()
		}
	default:
		m["label"] = "Text"
	}
	return m
}
