package rag

import (
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/avelichko/maestro/internal/index"
)

// Candidate is a retrieval hit that survived similarity filtering, with its
// stored chunk attached. Candidates are transient: produced and consumed
// entirely within one planning pass.
type Candidate struct {
	ChunkID    string
	Similarity float64
	Chunk      *index.Chunk
}

// Anchor marks a source location an IDE can jump to. The fingerprint is a
// content-independent hash of the location so the host side can match
// anchors across snapshots.
type Anchor struct {
	FilePath    string `json:"file_path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Fingerprint string `json:"fingerprint"`
}

// EnrichedChunk is a final context chunk handed to the plan builder:
// the original snippet expanded with surrounding lines, plus anchors.
type EnrichedChunk struct {
	ChunkID    string   `json:"chunk_id"`
	FilePath   string   `json:"file_path"`
	Content    string   `json:"content"`
	Similarity float64  `json:"similarity"`
	Anchors    []Anchor `json:"anchors,omitempty"`

	// Enriched is false when the originating file could not be read and
	// Content is the bare indexed snippet.
	Enriched bool `json:"enriched"`
}

// newAnchor builds an anchor for a line span of a file.
func newAnchor(filePath string, startLine, endLine int) Anchor {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s:%d-%d", filePath, startLine, endLine)))
	return Anchor{
		FilePath:    filePath,
		StartLine:   startLine,
		EndLine:     endLine,
		Fingerprint: fmt.Sprintf("%x", sum[:8]),
	}
}
