// Package index defines the vector-index query contract used by the RAG
// pipeline. The embedding generation and the index storage engine are
// external; only this query surface is visible to the core.
package index

import "context"

// Candidate is one similarity match returned by the index.
type Candidate struct {
	// ChunkID identifies the indexed chunk.
	ChunkID string `json:"chunk_id"`

	// Similarity is the cosine similarity in [0,1], higher is closer.
	Similarity float64 `json:"similarity"`
}

// Chunk is the stored payload for one chunk id.
type Chunk struct {
	ChunkID  string `json:"chunk_id"`
	FilePath string `json:"file_path"`
	Content  string `json:"content"`

	// StartLine is the 1-based line of Content's first line within the
	// originating file, when the index recorded it. Zero when unknown.
	StartLine int `json:"start_line,omitempty"`
}

// Query is the capability contract implemented by the index side.
type Query interface {
	// SearchSimilar returns up to limit candidates ordered by similarity
	// descending.
	SearchSimilar(ctx context.Context, query string, limit int) ([]Candidate, error)

	// GetChunkByID resolves a candidate to its stored chunk.
	GetChunkByID(ctx context.Context, chunkID string) (*Chunk, error)
}

// FileReader resolves a file path to its full current content, used to
// expand chunks with surrounding context during enrichment.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (string, error)
}
