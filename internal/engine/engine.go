// Package engine is the orchestration facade: it scores a request, either
// answers directly or builds and executes a plan, and exposes cancellation
// for running plans. Everything underneath (scorer, retrieval, builder,
// scheduler) is wired here from one Config.
package engine

import (
	"context"
	"sync"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/dialogue"
	"github.com/avelichko/maestro/internal/errors"
	"github.com/avelichko/maestro/internal/index"
	"github.com/avelichko/maestro/internal/log"
	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/provider"
	"github.com/avelichko/maestro/internal/rag"
	"github.com/avelichko/maestro/internal/scheduler"
	"github.com/avelichko/maestro/internal/uncertainty"
)

// DefaultProvider is the provider name used for direct answers when the
// caller does not pick one.
const DefaultProvider = "default"

// Option configures an Engine.
type Option func(*Engine)

// WithIndex wires the retrieval pipeline over a vector index. Without it
// plans are built without retrieved context.
func WithIndex(idx index.Query, files index.FileReader) Option {
	return func(e *Engine) {
		e.idx = idx
		e.files = files
	}
}

// WithModifier installs the runtime plan-modification hook.
func WithModifier(m plan.Modifier) Option {
	return func(e *Engine) { e.modifier = m }
}

// WithInputProvider installs the callback used when a step needs user
// input mid-plan.
func WithInputProvider(fn scheduler.InputProvider) Option {
	return func(e *Engine) { e.inputProvider = fn }
}

// WithLogger overrides the process logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine coordinates one request at a time per call; the engine itself is
// safe for concurrent use and tracks every running plan for cancellation.
type Engine struct {
	cfg       *config.Config
	scorer    *uncertainty.Scorer
	builder   *plan.Builder
	pipeline  *rag.Pipeline
	providers *provider.Registry
	runners   *scheduler.Registry
	logger    *log.Logger

	idx           index.Query
	files         index.FileReader
	modifier      plan.Modifier
	inputProvider scheduler.InputProvider

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// New assembles an engine from the configuration, an LLM provider
// registry and a step runner registry.
func New(cfg *config.Config, providers *provider.Registry, runners *scheduler.Registry, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		scorer:    uncertainty.NewScorer(cfg.Scoring),
		builder:   plan.NewBuilder(),
		providers: providers,
		runners:   runners,
		logger:    log.Default(),
		active:    make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.idx != nil {
		e.pipeline = rag.NewPipeline(cfg.RAG, e.idx, e.files, providers, e.logger)
	}
	return e, nil
}

// AnalyzeUncertainty scores a request without acting on it.
func (e *Engine) AnalyzeUncertainty(request string, dctx dialogue.Context) uncertainty.Result {
	return e.scorer.Score(request, dctx)
}

// Mode says how a request was handled.
type Mode string

const (
	// ModeDirect means the request was answered with a single LLM call.
	ModeDirect Mode = "direct"

	// ModePlan means the request went through plan execution.
	ModePlan Mode = "plan"
)

// Response is the outcome of Respond.
type Response struct {
	Mode        Mode
	Uncertainty uncertainty.Result

	// Answer is set in direct mode.
	Answer string

	// Execution is set in plan mode.
	Execution *scheduler.ExecutionResult
}

// Respond handles one request end to end: LOW complexity takes the
// direct-answer path, everything else goes through plan execution with
// the given progress callback (may be nil).
func (e *Engine) Respond(ctx context.Context, request string, dctx dialogue.Context, progress scheduler.ProgressFunc) (*Response, error) {
	res := e.scorer.Score(request, dctx)
	e.logger.InfoContext(ctx, "request scored",
		"complexity", res.Complexity,
		"level", string(res.ComplexityLevel),
		"uncertainty", res.Score,
	)

	if !res.NeedsPlan() {
		answer, err := e.directAnswer(ctx, request, dctx)
		if err != nil {
			return nil, err
		}
		return &Response{Mode: ModeDirect, Uncertainty: res, Answer: answer}, nil
	}

	exec, err := e.executePlan(ctx, request, res, dctx, progress)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModePlan, Uncertainty: res, Execution: exec}, nil
}

// BuildAndExecutePlan scores the request, optionally runs retrieval,
// builds the plan and drives it to a terminal state. The plan is
// cancellable through Cancel while it runs.
func (e *Engine) BuildAndExecutePlan(ctx context.Context, request string, dctx dialogue.Context, progress scheduler.ProgressFunc) (*scheduler.ExecutionResult, error) {
	res := e.scorer.Score(request, dctx)
	if !res.NeedsPlan() {
		return nil, errors.New(errors.ErrCodePlanEmpty,
			"request resolves to a direct answer, nothing to plan").
			WithSuggestion("use Respond for the combined path")
	}
	return e.executePlan(ctx, request, res, dctx, progress)
}

func (e *Engine) executePlan(ctx context.Context, request string, res uncertainty.Result, dctx dialogue.Context, progress scheduler.ProgressFunc) (*scheduler.ExecutionResult, error) {
	var ragContext []rag.EnrichedChunk
	if res.NeedsContextSearch() && e.pipeline != nil {
		ragContext = e.pipeline.Run(ctx, request, e.cfg.RAG.TopN)
	}

	p, err := e.builder.BuildPlan(request, res, ragContext)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.active[p.ID] = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.active, p.ID)
		e.mu.Unlock()
	}()

	sched := scheduler.New(e.cfg, e.runners,
		scheduler.WithLogger(e.logger),
		scheduler.WithModifier(e.modifier),
		scheduler.WithProgress(progress),
		scheduler.WithInputProvider(e.inputProvider),
	)

	e.logger.InfoContext(ctx, "executing plan",
		"plan", p.ID, "steps", len(p.Steps), "level", string(res.ComplexityLevel))

	return sched.Execute(runCtx, p)
}

// Cancel aborts a running plan by id. Returns false when no plan with
// that id is currently executing.
func (e *Engine) Cancel(planID string) bool {
	e.mu.Lock()
	cancel, ok := e.active[planID]
	e.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// ActivePlans returns the ids of plans currently executing.
func (e *Engine) ActivePlans() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	return ids
}

// directAnswer serves a LOW-complexity request with one provider call.
func (e *Engine) directAnswer(ctx context.Context, request string, dctx dialogue.Context) (string, error) {
	client, err := e.providers.Get(DefaultProvider)
	if err != nil {
		return "", err
	}

	req := &provider.GenerateRequest{
		Prompt:  request,
		History: historyMessages(dctx),
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeProviderCall, "direct answer failed", err)
	}
	return resp.Content, nil
}

func historyMessages(dctx dialogue.Context) []provider.Message {
	if dctx.Empty() {
		return nil
	}
	msgs := make([]provider.Message, 0, len(dctx.History))
	for _, turn := range dctx.History {
		msgs = append(msgs, provider.Message{Role: string(turn.Role), Content: turn.Content})
	}
	return msgs
}
