// Package rag implements the retrieval pipeline used while planning
// HIGH/VERY_HIGH requests: retrieve candidates from the vector index,
// filter by similarity, optionally rerank via an LLM, and enrich the final
// chunks with surrounding source context.
//
// The pipeline degrades, it does not fail: a broken reranker falls back to
// similarity order, an unreadable file yields an unenriched chunk, and a
// failed index query yields an empty context. None of these abort planning.
package rag

import (
	"context"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/index"
	"github.com/avelichko/maestro/internal/log"
	"github.com/avelichko/maestro/internal/provider"
)

// Pipeline runs retrieval for one planning pass. Safe for concurrent use;
// all state is configuration and collaborators.
type Pipeline struct {
	cfg       config.RAGConfig
	idx       index.Query
	files     index.FileReader
	providers *provider.Registry
	logger    *log.Logger
}

// NewPipeline wires the pipeline. providers may be nil when reranking is
// disabled; files may be nil, which disables enrichment.
func NewPipeline(cfg config.RAGConfig, idx index.Query, files index.FileReader, providers *provider.Registry, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Pipeline{
		cfg:       cfg,
		idx:       idx,
		files:     files,
		providers: providers,
		logger:    logger.With("component", "rag"),
	}
}

// Run executes the full pipeline for a query and returns up to TopN
// enriched chunks. Degradation is logged, never returned: the caller only
// ever sees a (possibly empty, possibly unenriched) context.
func (p *Pipeline) Run(ctx context.Context, query string, candidateK int) []EnrichedChunk {
	candidates, err := p.Retrieve(ctx, query, candidateK)
	if err != nil {
		p.logger.WarnContext(ctx, "index retrieval failed, planning continues without context", "error", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	ranked := p.Rerank(ctx, query, candidates, p.cfg.TopN)
	return p.Enrich(ctx, ranked)
}

// Retrieve queries the vector index once and filters the hits. candidateK
// is coerced into the configured [min,max] range. Surviving candidates get
// their stored chunk attached by a secondary lookup; a candidate whose
// lookup fails is dropped.
func (p *Pipeline) Retrieve(ctx context.Context, query string, candidateK int) ([]Candidate, error) {
	if candidateK < p.cfg.MinCandidates {
		candidateK = p.cfg.MinCandidates
	}
	if candidateK > p.cfg.MaxCandidates {
		candidateK = p.cfg.MaxCandidates
	}

	queryCtx := ctx
	if p.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, p.cfg.QueryTimeout)
		defer cancel()
	}

	hits, err := p.idx.SearchSimilar(queryCtx, query, candidateK)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < p.cfg.SimilarityThreshold {
			continue
		}
		chunk, err := p.idx.GetChunkByID(ctx, hit.ChunkID)
		if err != nil {
			p.logger.DebugContext(ctx, "chunk lookup failed, dropping candidate",
				"chunk_id", hit.ChunkID, "error", err)
			continue
		}
		candidates = append(candidates, Candidate{
			ChunkID:    hit.ChunkID,
			Similarity: hit.Similarity,
			Chunk:      chunk,
		})
	}
	return candidates, nil
}
