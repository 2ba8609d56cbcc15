package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/maestro/internal/errors"
	"github.com/avelichko/maestro/internal/rag"
	"github.com/avelichko/maestro/internal/uncertainty"
)

// Builder turns a scored request into an initial execution plan. The step
// template is selected by complexity level; HIGH/VERY_HIGH templates get a
// context-search step populated from the RAG pipeline when available.
type Builder struct{}

// NewBuilder creates a plan builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildPlan constructs and validates the initial plan. LOW complexity
// requests take the direct-answer path and never reach the builder;
// calling it anyway is a construction error. Plan version starts at 1.
func (b *Builder) BuildPlan(request string, res uncertainty.Result, ragContext []rag.EnrichedChunk) (*ExecutionPlan, error) {
	if !res.NeedsPlan() {
		return nil, errors.New(errors.ErrCodePlanEmpty,
			"LOW complexity requests are answered directly, no plan to build")
	}

	p := &ExecutionPlan{
		ID:              uuid.NewString(),
		OriginalRequest: request,
		State:           StateCreated,
		Version:         1,
		CreatedAt:       time.Now(),
		Metadata: map[string]string{
			"complexity_level": string(res.ComplexityLevel),
		},
	}

	if res.NeedsContextSearch() {
		p.Steps = b.enrichedSteps(request, res, ragContext)
	} else {
		p.Steps = b.linearSteps(request)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// linearSteps is the MEDIUM template: a short linear sequence without
// retrieval.
func (b *Builder) linearSteps(request string) []*Step {
	return []*Step{
		{
			ID:                "contextual-answer",
			Title:             "Answer with conversation context",
			Description:       "Produce an answer using the request and dialogue history",
			AgentType:         AgentLLM,
			Input:             map[string]any{"request": request},
			Status:            StepPending,
			EstimatedDuration: 10 * time.Second,
		},
		{
			ID:                "report",
			Title:             "Format the result",
			Description:       "Prepare the final response for the caller",
			AgentType:         AgentReport,
			Dependencies:      []string{"contextual-answer"},
			Input:             map[string]any{"source_step": "contextual-answer"},
			Status:            StepPending,
			EstimatedDuration: 2 * time.Second,
		},
	}
}

// enrichedSteps is the HIGH/VERY_HIGH template: context search feeds
// analysis, analysis feeds the report.
func (b *Builder) enrichedSteps(request string, res uncertainty.Result, ragContext []rag.EnrichedChunk) []*Step {
	searchInput := map[string]any{"query": request}
	if len(ragContext) > 0 {
		searchInput["chunks"] = ragContext
	}

	analysisInput := map[string]any{
		"request":           request,
		"suggested_actions": res.SuggestedActions,
	}

	return []*Step{
		{
			ID:                "context-search",
			Title:             "Search project context",
			Description:       "Collect relevant code and document chunks for the request",
			AgentType:         AgentContextSearch,
			Input:             searchInput,
			Status:            StepPending,
			EstimatedDuration: 15 * time.Second,
		},
		{
			ID:                "analysis",
			Title:             "Analyze and execute",
			Description:       "Perform the requested work over the collected context",
			AgentType:         AgentCodeAnalysis,
			Dependencies:      []string{"context-search"},
			Input:             analysisInput,
			Status:            StepPending,
			EstimatedDuration: 60 * time.Second,
		},
		{
			ID:                "report",
			Title:             "Summarize findings",
			Description:       "Assemble the final report from the analysis output",
			AgentType:         AgentReport,
			Dependencies:      []string{"analysis"},
			Input:             map[string]any{"source_step": "analysis"},
			Status:            StepPending,
			EstimatedDuration: 5 * time.Second,
		},
	}
}
