package rag

import (
	"context"
	"strings"
)

// Enrich expands each candidate's snippet with a window of surrounding
// lines from the originating file and attaches anchors. A failure on one
// chunk is isolated to that chunk: it is returned unenriched, the batch
// never fails.
func (p *Pipeline) Enrich(ctx context.Context, candidates []Candidate) []EnrichedChunk {
	chunks := make([]EnrichedChunk, 0, len(candidates))
	for _, c := range candidates {
		chunks = append(chunks, p.enrichOne(ctx, c))
	}
	return chunks
}

func (p *Pipeline) enrichOne(ctx context.Context, c Candidate) EnrichedChunk {
	bare := EnrichedChunk{
		ChunkID:    c.ChunkID,
		FilePath:   c.Chunk.FilePath,
		Content:    c.Chunk.Content,
		Similarity: c.Similarity,
		Enriched:   false,
	}

	if p.files == nil || c.Chunk.FilePath == "" {
		return bare
	}

	fileContent, err := p.files.ReadFile(ctx, c.Chunk.FilePath)
	if err != nil {
		p.logger.DebugContext(ctx, "file read failed, returning bare snippet",
			"file", c.Chunk.FilePath, "error", err)
		return bare
	}

	start, end, ok := locateSnippet(fileContent, c.Chunk.Content, c.Chunk.StartLine)
	if !ok {
		return bare
	}

	lines := strings.Split(fileContent, "\n")
	winStart := start - p.cfg.ContextLines
	if winStart < 1 {
		winStart = 1
	}
	winEnd := end + p.cfg.ContextLines
	if winEnd > len(lines) {
		winEnd = len(lines)
	}

	return EnrichedChunk{
		ChunkID:    c.ChunkID,
		FilePath:   c.Chunk.FilePath,
		Content:    strings.Join(lines[winStart-1:winEnd], "\n"),
		Similarity: c.Similarity,
		Enriched:   true,
		Anchors: []Anchor{
			newAnchor(c.Chunk.FilePath, start, end),
			newAnchor(c.Chunk.FilePath, winStart, winEnd),
		},
	}
}

// locateSnippet finds the 1-based line span of snippet within content.
// A recorded start line is trusted when it still matches; otherwise the
// snippet's first line is searched for. Returns ok=false when the snippet
// cannot be located at all.
func locateSnippet(content, snippet string, recordedStart int) (start, end int, ok bool) {
	snippetLines := strings.Split(strings.TrimRight(snippet, "\n"), "\n")
	if len(snippetLines) == 0 || strings.TrimSpace(snippet) == "" {
		return 0, 0, false
	}
	contentLines := strings.Split(content, "\n")

	matchesAt := func(lineIdx int) bool {
		if lineIdx+len(snippetLines) > len(contentLines) {
			return false
		}
		for i, sl := range snippetLines {
			if strings.TrimRight(contentLines[lineIdx+i], "\r") != strings.TrimRight(sl, "\r") {
				return false
			}
		}
		return true
	}

	if recordedStart >= 1 && matchesAt(recordedStart-1) {
		return recordedStart, recordedStart + len(snippetLines) - 1, true
	}

	for i := range contentLines {
		if matchesAt(i) {
			return i + 1, i + len(snippetLines), true
		}
	}
	return 0, 0, false
}
