package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/index"
	"github.com/avelichko/maestro/internal/provider"
)

type fakeIndex struct {
	hits      []index.Candidate
	chunks    map[string]*index.Chunk
	searchErr error
	lastLimit int
}

func (f *fakeIndex) SearchSimilar(ctx context.Context, query string, limit int) ([]index.Candidate, error) {
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) GetChunkByID(ctx context.Context, chunkID string) (*index.Chunk, error) {
	chunk, ok := f.chunks[chunkID]
	if !ok {
		return nil, errors.New("chunk not found")
	}
	return chunk, nil
}

type fakeFiles struct {
	files map[string]string
}

func (f *fakeFiles) ReadFile(ctx context.Context, path string) (string, error) {
	content, ok := f.files[path]
	if !ok {
		return "", errors.New("file not found")
	}
	return content, nil
}

type fakeLLM struct {
	response  string
	err       error
	available bool
	calls     int
}

func (f *fakeLLM) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &provider.GenerateResponse{Content: f.response, FinishReason: "stop"}, nil
}

func (f *fakeLLM) IsAvailable() bool                { return f.available }
func (f *fakeLLM) Health(ctx context.Context) error { return nil }
func (f *fakeLLM) Close() error                     { return nil }

func testConfig() config.RAGConfig {
	cfg := config.Default().RAG
	cfg.MinCandidates = 2
	cfg.MaxCandidates = 10
	cfg.SimilarityThreshold = 0.5
	cfg.TopN = 3
	cfg.ContextLines = 2
	return cfg
}

func newFakeIndex() *fakeIndex {
	idx := &fakeIndex{chunks: make(map[string]*index.Chunk)}
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("chunk-%d", i)
		idx.hits = append(idx.hits, index.Candidate{ChunkID: id, Similarity: 1.0 - float64(i)*0.1})
		idx.chunks[id] = &index.Chunk{
			ChunkID:  id,
			FilePath: fmt.Sprintf("src/file%d.go", i),
			Content:  fmt.Sprintf("func Helper%d() {}", i),
		}
	}
	return idx
}

func TestRetrieve_CoercesCandidateK(t *testing.T) {
	idx := newFakeIndex()
	p := NewPipeline(testConfig(), idx, nil, nil, nil)

	_, err := p.Retrieve(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.lastLimit, "below min coerces up")

	_, err = p.Retrieve(context.Background(), "query", 100)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.lastLimit, "above max coerces down")
}

func TestRetrieve_FiltersBySimilarity(t *testing.T) {
	idx := newFakeIndex()
	// similarities: 0.9, 0.8, 0.7, 0.6, 0.5; threshold 0.65 keeps three
	cfg := testConfig()
	cfg.SimilarityThreshold = 0.65
	p := NewPipeline(cfg, idx, nil, nil, nil)

	candidates, err := p.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Similarity, 0.65)
		assert.NotNil(t, c.Chunk, "file-path metadata attached")
	}
}

func TestRetrieve_DropsFailedChunkLookups(t *testing.T) {
	idx := newFakeIndex()
	delete(idx.chunks, "chunk-2")
	p := NewPipeline(testConfig(), idx, nil, nil, nil)

	candidates, err := p.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, "chunk-2", c.ChunkID)
	}
}

func TestRerank_DisabledKeepsSimilarityOrder(t *testing.T) {
	idx := newFakeIndex()
	cfg := testConfig()
	cfg.RerankEnabled = false
	p := NewPipeline(cfg, idx, nil, nil, nil)

	candidates, err := p.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	top := p.Rerank(context.Background(), "query", candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "chunk-1", top[0].ChunkID)
	assert.Equal(t, "chunk-2", top[1].ChunkID)
	assert.Equal(t, "chunk-3", top[2].ChunkID)
}

func TestRerank_AppliesModelOrder(t *testing.T) {
	idx := newFakeIndex()
	llm := &fakeLLM{available: true, response: "3,1,2"}
	providers := provider.NewRegistry()
	require.NoError(t, providers.Register("default", llm))

	p := NewPipeline(testConfig(), idx, nil, providers, nil)
	candidates, err := p.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	top := p.Rerank(context.Background(), "query", candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "chunk-3", top[0].ChunkID)
	assert.Equal(t, "chunk-1", top[1].ChunkID)
	assert.Equal(t, "chunk-2", top[2].ChunkID)
	assert.Equal(t, 1, llm.calls)
}

func TestRerank_MalformedOutputFallsBack(t *testing.T) {
	idx := newFakeIndex()
	llm := &fakeLLM{available: true, response: "I think the most relevant snippet would be the scheduler one."}
	providers := provider.NewRegistry()
	require.NoError(t, providers.Register("default", llm))

	p := NewPipeline(testConfig(), idx, nil, providers, nil)
	candidates, err := p.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	top := p.Rerank(context.Background(), "query", candidates, 3)

	// testable property: malformed reranker output == similarity-filtered topN
	require.Len(t, top, 3)
	assert.Equal(t, []string{"chunk-1", "chunk-2", "chunk-3"},
		[]string{top[0].ChunkID, top[1].ChunkID, top[2].ChunkID})
}

func TestRerank_ErrorFallsBack(t *testing.T) {
	idx := newFakeIndex()
	llm := &fakeLLM{available: true, err: errors.New("model overloaded")}
	providers := provider.NewRegistry()
	require.NoError(t, providers.Register("default", llm))

	p := NewPipeline(testConfig(), idx, nil, providers, nil)
	candidates, _ := p.Retrieve(context.Background(), "query", 5)

	top := p.Rerank(context.Background(), "query", candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "chunk-1", top[0].ChunkID)
}

func TestRerank_UnavailableProviderFallsBack(t *testing.T) {
	idx := newFakeIndex()
	llm := &fakeLLM{available: false}
	providers := provider.NewRegistry()
	require.NoError(t, providers.Register("default", llm))

	p := NewPipeline(testConfig(), idx, nil, providers, nil)
	candidates, _ := p.Retrieve(context.Background(), "query", 5)

	top := p.Rerank(context.Background(), "query", candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, 0, llm.calls)
}

func TestRerank_ShortResponsePadsWithOriginalOrder(t *testing.T) {
	idx := newFakeIndex()
	llm := &fakeLLM{available: true, response: "4"}
	providers := provider.NewRegistry()
	require.NoError(t, providers.Register("default", llm))

	p := NewPipeline(testConfig(), idx, nil, providers, nil)
	candidates, _ := p.Retrieve(context.Background(), "query", 5)

	top := p.Rerank(context.Background(), "query", candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "chunk-4", top[0].ChunkID)
	assert.Equal(t, "chunk-1", top[1].ChunkID, "padded with next-best original order")
	assert.Equal(t, "chunk-2", top[2].ChunkID)
}

func TestParseRerankResponse_Formats(t *testing.T) {
	candidates := []Candidate{
		{ChunkID: "a", Chunk: &index.Chunk{}},
		{ChunkID: "b", Chunk: &index.Chunk{}},
		{ChunkID: "c", Chunk: &index.Chunk{}},
	}

	tests := []struct {
		name    string
		content string
		wantIDs []string
		wantOK  bool
	}{
		{"comma separated numbers", "2,3,1", []string{"b", "c", "a"}, true},
		{"newline separated", "2\n1", []string{"b", "a"}, true},
		{"chunk ids", "c, a", []string{"c", "a"}, true},
		{"duplicates skipped", "1,1,2", []string{"a", "b"}, true},
		{"out of range skipped", "9,2", []string{"b"}, true},
		{"trailing period", "2.", []string{"b"}, true},
		{"prose", "the best match is clearly the first snippet", nil, false},
		{"empty", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, ok := parseRerankResponse(tt.content, candidates)
			assert.Equal(t, tt.wantOK, ok)
			var ids []string
			for _, c := range order {
				ids = append(ids, c.ChunkID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEnrich_ExpandsWindowAndAnchors(t *testing.T) {
	fileLines := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		fileLines = append(fileLines, fmt.Sprintf("line %d", i))
	}
	fileContent := strings.Join(fileLines, "\n")

	idx := &fakeIndex{chunks: map[string]*index.Chunk{
		"c1": {ChunkID: "c1", FilePath: "pkg/a.go", Content: "line 10\nline 11"},
	}}
	files := &fakeFiles{files: map[string]string{"pkg/a.go": fileContent}}

	p := NewPipeline(testConfig(), idx, files, nil, nil)
	chunks := p.Enrich(context.Background(), []Candidate{
		{ChunkID: "c1", Similarity: 0.9, Chunk: idx.chunks["c1"]},
	})

	require.Len(t, chunks, 1)
	got := chunks[0]
	assert.True(t, got.Enriched)
	// snippet at lines 10-11, window of 2 on each side: lines 8..13
	assert.Equal(t, strings.Join(fileLines[7:13], "\n"), got.Content)
	require.Len(t, got.Anchors, 2)
	assert.Equal(t, 10, got.Anchors[0].StartLine)
	assert.Equal(t, 11, got.Anchors[0].EndLine)
	assert.Equal(t, 8, got.Anchors[1].StartLine)
	assert.Equal(t, 13, got.Anchors[1].EndLine)
	assert.NotEmpty(t, got.Anchors[0].Fingerprint)
}

func TestEnrich_WindowClampedAtFileBounds(t *testing.T) {
	idx := &fakeIndex{chunks: map[string]*index.Chunk{
		"c1": {ChunkID: "c1", FilePath: "pkg/a.go", Content: "first"},
	}}
	files := &fakeFiles{files: map[string]string{"pkg/a.go": "first\nsecond\nthird"}}

	p := NewPipeline(testConfig(), idx, files, nil, nil)
	chunks := p.Enrich(context.Background(), []Candidate{
		{ChunkID: "c1", Similarity: 0.9, Chunk: idx.chunks["c1"]},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "first\nsecond\nthird", chunks[0].Content)
}

func TestEnrich_FileReadFailureIsIsolated(t *testing.T) {
	idx := newFakeIndex()
	files := &fakeFiles{files: map[string]string{}} // nothing readable

	p := NewPipeline(testConfig(), idx, files, nil, nil)
	chunks := p.Enrich(context.Background(), []Candidate{
		{ChunkID: "chunk-1", Similarity: 0.9, Chunk: idx.chunks["chunk-1"]},
		{ChunkID: "chunk-2", Similarity: 0.8, Chunk: idx.chunks["chunk-2"]},
	})

	require.Len(t, chunks, 2, "batch survives per-chunk failures")
	for _, c := range chunks {
		assert.False(t, c.Enriched)
		assert.NotEmpty(t, c.Content, "bare snippet retained")
		assert.Empty(t, c.Anchors)
	}
}

func TestEnrich_SnippetNotFoundReturnsBare(t *testing.T) {
	idx := &fakeIndex{chunks: map[string]*index.Chunk{
		"c1": {ChunkID: "c1", FilePath: "pkg/a.go", Content: "vanished snippet"},
	}}
	files := &fakeFiles{files: map[string]string{"pkg/a.go": "completely\ndifferent\ncontent"}}

	p := NewPipeline(testConfig(), idx, files, nil, nil)
	chunks := p.Enrich(context.Background(), []Candidate{
		{ChunkID: "c1", Similarity: 0.9, Chunk: idx.chunks["c1"]},
	})

	require.Len(t, chunks, 1)
	assert.False(t, chunks[0].Enriched)
	assert.Equal(t, "vanished snippet", chunks[0].Content)
}

func TestRun_IndexFailureYieldsEmptyContext(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("index offline")}
	p := NewPipeline(testConfig(), idx, nil, nil, nil)

	chunks := p.Run(context.Background(), "query", 5)
	assert.Empty(t, chunks, "degraded pipeline narrows context, never fails planning")
}

func TestRun_EndToEnd(t *testing.T) {
	idx := newFakeIndex()
	cfg := testConfig()
	cfg.RerankEnabled = false
	p := NewPipeline(cfg, idx, nil, nil, nil)

	chunks := p.Run(context.Background(), "query", 5)
	require.Len(t, chunks, 3)
	assert.Equal(t, "chunk-1", chunks[0].ChunkID)
}
