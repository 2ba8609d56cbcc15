package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avelichko/maestro/internal/provider"
)

const rerankSystemPrompt = `You rank code snippets by relevance to a query.
You receive a query and a numbered list of candidate snippets.
Respond with ONLY the candidate numbers in order of relevance, most relevant
first, comma-separated. Example: 3,1,2. No explanations.`

// Rerank reorders candidates by LLM-judged relevance and returns the top
// topN. Every failure mode (reranker disabled, provider missing or
// unavailable, call error, malformed output) falls back to the original
// similarity order. When the reranker returns fewer than topN entries, the
// result is padded with the next-best candidates in original order.
func (p *Pipeline) Rerank(ctx context.Context, query string, candidates []Candidate, topN int) []Candidate {
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	if !p.cfg.RerankEnabled || p.providers == nil {
		return candidates[:topN]
	}

	client, err := p.providers.Get(p.cfg.RerankProvider)
	if err != nil || !client.IsAvailable() {
		p.logger.DebugContext(ctx, "reranker unavailable, keeping similarity order",
			"provider", p.cfg.RerankProvider)
		return candidates[:topN]
	}

	rerankCtx := ctx
	if p.cfg.RerankTimeout > 0 {
		var cancel context.CancelFunc
		rerankCtx, cancel = context.WithTimeout(ctx, p.cfg.RerankTimeout)
		defer cancel()
	}

	resp, err := client.Generate(rerankCtx, &provider.GenerateRequest{
		SystemPrompt: rerankSystemPrompt,
		Prompt:       buildRerankPrompt(query, candidates),
		Temperature:  0,
		Metadata:     map[string]string{"purpose": "rerank"},
	})
	if err != nil {
		p.logger.WarnContext(ctx, "rerank call failed, keeping similarity order", "error", err)
		return candidates[:topN]
	}

	order, ok := parseRerankResponse(resp.Content, candidates)
	if !ok {
		p.logger.WarnContext(ctx, "rerank response malformed, keeping similarity order")
		return candidates[:topN]
	}

	return padWithOriginalOrder(order, candidates, topN)
}

// buildRerankPrompt renders the query and a numbered candidate list.
func buildRerankPrompt(query string, candidates []Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nCandidates:\n", query)
	for i, c := range candidates {
		snippet := c.Chunk.Content
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, c.Chunk.FilePath, snippet)
	}
	return b.String()
}

// parseRerankResponse interprets the model output as an ordered candidate
// list. Accepted entries are 1-based candidate numbers or literal chunk
// ids, separated by commas or newlines. Unknown and duplicate entries are
// skipped. Returns ok=false when nothing usable was parsed.
func parseRerankResponse(content string, candidates []Candidate) ([]Candidate, bool) {
	byID := make(map[string]int, len(candidates))
	for i, c := range candidates {
		byID[c.ChunkID] = i
	}

	seen := make(map[int]bool)
	var order []Candidate

	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	for _, field := range fields {
		token := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(field), "."))
		if token == "" {
			continue
		}

		idx := -1
		if n, err := strconv.Atoi(token); err == nil {
			if n >= 1 && n <= len(candidates) {
				idx = n - 1
			}
		} else if i, exists := byID[token]; exists {
			idx = i
		}

		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		order = append(order, candidates[idx])
	}

	return order, len(order) > 0
}

// padWithOriginalOrder extends a reranked prefix with the next-best
// candidates in original similarity order until topN is reached.
func padWithOriginalOrder(order, candidates []Candidate, topN int) []Candidate {
	if len(order) > topN {
		order = order[:topN]
	}

	included := make(map[string]bool, len(order))
	for _, c := range order {
		included[c.ChunkID] = true
	}
	for _, c := range candidates {
		if len(order) >= topN {
			break
		}
		if included[c.ChunkID] {
			continue
		}
		included[c.ChunkID] = true
		order = append(order, c)
	}
	return order
}
