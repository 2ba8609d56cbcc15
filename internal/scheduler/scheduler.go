// Package scheduler executes a plan's DAG: ready steps are dispatched
// concurrently through the retry executor while all plan mutation happens
// on the scheduler's own goroutine, one result at a time. A modifier hook
// may restructure the plan between batches.
package scheduler

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/errors"
	"github.com/avelichko/maestro/internal/log"
	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/retry"
)

// DependencyOutputsKey is the input-bag key under which the scheduler
// places a map of dependency step id to output before dispatching a step.
const DependencyOutputsKey = "dependency_outputs"

// ProgressFunc is invoked after every serialized plan mutation: a step
// changing status, a state transition, or a version bump. step is nil for
// plan-level changes. The callback runs on the scheduler goroutine and
// must not block for long.
type ProgressFunc func(p *plan.ExecutionPlan, step *plan.Step)

// InputProvider collects an answer from the user while the plan sits in
// REQUIRES_INPUT.
type InputProvider func(ctx context.Context, prompt string) (string, error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithModifier installs the hook that may restructure the plan after each
// settled batch.
func WithModifier(m plan.Modifier) Option {
	return func(s *Scheduler) { s.modifier = m }
}

// WithProgress installs the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scheduler) { s.progress = fn }
}

// WithInputProvider installs the user-input callback. Without one, a step
// requesting input fails instead of pausing the plan.
func WithInputProvider(fn InputProvider) Option {
	return func(s *Scheduler) { s.input = fn }
}

// WithLogger overrides the process logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// Scheduler drives one plan at a time from CREATED to a terminal state.
// A Scheduler is stateless between Execute calls and safe to reuse.
type Scheduler struct {
	cfg      config.SchedulerConfig
	policy   retry.Policy
	runners  *Registry
	retrier  *retry.Executor
	modifier plan.Modifier
	progress ProgressFunc
	input    InputProvider
	logger   *log.Logger
}

// New creates a scheduler over the given runner registry.
func New(cfg *config.Config, runners *Registry, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:     cfg.Scheduler,
		policy:  retry.FromConfig(cfg.Retry),
		runners: runners,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.retrier = retry.NewExecutor(s.logger)
	return s
}

// ExecutionResult summarizes one finished execution. The plan inside has
// reached a terminal state; partial outputs of a FAILED or CANCELLED plan
// are preserved.
type ExecutionResult struct {
	Plan    *plan.ExecutionPlan
	Outputs map[string]any

	CompletedSteps int
	FailedSteps    int
	SkippedSteps   int

	Duration time.Duration

	// Retries maps step id to its retry history, for steps that had one.
	Retries map[string]*retry.History
}

// stepResult crosses from a worker goroutine back to the scheduler loop.
type stepResult struct {
	step    *plan.Step
	output  any
	history *retry.History
	err     error
}

// Execute runs the plan to a terminal state. Pre-flight problems (invalid
// plan, missing runner, wrong starting state) return an error with a nil
// result; once execution starts the outcome is reported through the
// returned result and the plan's terminal state, not through the error.
func (s *Scheduler) Execute(ctx context.Context, p *plan.ExecutionPlan) (*ExecutionResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.runners.ValidateFor(p); err != nil {
		return nil, err
	}
	if err := p.ApplyEvent(plan.EventStart); err != nil {
		return nil, err
	}

	started := time.Now()
	p.StartedAt = &started
	s.emit(p, nil)

	histories := make(map[string]*retry.History)

	for {
		if ctx.Err() != nil {
			s.cancelPlan(p)
			return s.result(p, histories, started), nil
		}

		ready := p.ReadySteps()
		if len(ready) == 0 {
			s.finishPlan(p)
			return s.result(p, histories, started), nil
		}

		if s.cfg.MaxParallelSteps > 0 && len(ready) > s.cfg.MaxParallelSteps {
			ready = ready[:s.cfg.MaxParallelSteps]
		}

		if err := p.ApplyEvent(plan.EventStepProgress); err != nil {
			s.cancelPlan(p)
			return s.result(p, histories, started), nil
		}

		settled, inputRequests := s.runBatch(ctx, p, ready, histories)

		for _, req := range inputRequests {
			s.collectInput(ctx, p, req)
		}

		s.applyModifier(ctx, p, settled)
	}
}

// runBatch dispatches the batch concurrently and applies results on this
// goroutine as they arrive. Returns the settled steps and any pending
// input requests.
func (s *Scheduler) runBatch(ctx context.Context, p *plan.ExecutionPlan, batch []*plan.Step, histories map[string]*retry.History) ([]*plan.Step, []inputRequest) {
	results := make(chan stepResult, len(batch))

	for _, step := range batch {
		now := time.Now()
		step.Status = plan.StepInProgress
		step.StartedAt = &now

		// Completed dependency outputs are handed to the runner through
		// the input bag.
		if len(step.Dependencies) > 0 {
			deps := make(map[string]any, len(step.Dependencies))
			for _, depID := range step.Dependencies {
				if dep := p.Step(depID); dep != nil {
					deps[depID] = dep.Output
				}
			}
			if step.Input == nil {
				step.Input = make(map[string]any, 1)
			}
			step.Input[DependencyOutputsKey] = deps
		}
		s.emit(p, step)

		runner, err := s.runners.Get(step.AgentType)
		if err != nil {
			results <- stepResult{step: step, err: err}
			continue
		}

		go func(step *plan.Step, runner StepRunner) {
			output, hist, err := s.retrier.Execute(ctx, step.ID, s.policy, s.performFor(step, runner))
			results <- stepResult{step: step, output: output, history: hist, err: err}
		}(step, runner)
	}

	var settled []*plan.Step
	var inputRequests []inputRequest

	for range batch {
		res := <-results
		step := res.step

		if res.history != nil && len(res.history.Attempts) > 0 {
			histories[step.ID] = res.history
		}

		now := time.Now()
		if step.StartedAt != nil {
			step.ActualDuration = now.Sub(*step.StartedAt)
		}

		switch {
		case res.err == nil:
			step.Status = plan.StepCompleted
			step.Output = res.output
			step.CompletedAt = &now
			settled = append(settled, step)

		case errors.HasCode(res.err, errors.ErrCodeRetryCancelled),
			stderrors.Is(res.err, context.Canceled):
			// The plan is being cancelled; the step was not given a full
			// chance, leave it pending.
			step.Status = plan.StepPending
			step.StartedAt = nil

		default:
			var inputErr *InputRequiredError
			if stderrors.As(res.err, &inputErr) {
				inputRequests = append(inputRequests, inputRequest{step: step, ask: inputErr})
				continue
			}

			step.Status = plan.StepFailed
			step.Error = res.err.Error()
			step.CompletedAt = &now
			settled = append(settled, step)
			s.logger.ErrorContext(ctx, "step failed",
				"plan", p.ID, "step", step.ID, "error", res.err.Error())
		}
		s.emit(p, step)
	}

	return settled, inputRequests
}

type inputRequest struct {
	step *plan.Step
	ask  *InputRequiredError
}

// collectInput pauses the plan in REQUIRES_INPUT, asks the provider and
// re-queues the step with the answer in its input bag. Without a provider
// the step fails.
func (s *Scheduler) collectInput(ctx context.Context, p *plan.ExecutionPlan, req inputRequest) {
	step := req.step

	if s.input == nil {
		now := time.Now()
		step.Status = plan.StepFailed
		step.Error = req.ask.Error()
		step.CompletedAt = &now
		s.emit(p, step)
		return
	}

	if err := p.ApplyEvent(plan.EventInputRequired); err != nil {
		s.logger.WarnContext(ctx, "cannot pause for input", "plan", p.ID, "error", err.Error())
	} else {
		s.emit(p, nil)
	}

	answer, err := s.input(ctx, req.ask.Prompt)
	if err != nil {
		now := time.Now()
		step.Status = plan.StepFailed
		step.Error = "user input not provided: " + err.Error()
		step.CompletedAt = &now
	} else {
		key := req.ask.Key
		if key == "" {
			key = "user_input"
		}
		if step.Input == nil {
			step.Input = make(map[string]any)
		}
		step.Input[key] = answer
		step.Status = plan.StepPending
		step.StartedAt = nil
	}

	if p.State == plan.StateRequiresInput {
		if err := p.ApplyEvent(plan.EventUserInput); err == nil {
			s.emit(p, nil)
		}
	}
	s.emit(p, step)
}

// applyModifier gives the hook a chance to restructure the plan. A hook
// error never kills the run; the change is simply dropped.
func (s *Scheduler) applyModifier(ctx context.Context, p *plan.ExecutionPlan, settled []*plan.Step) {
	if s.modifier == nil || len(settled) == 0 {
		return
	}

	req := s.modifier(p, settled)
	if req == nil {
		return
	}

	mod, err := p.ApplyModification(req)
	if err != nil {
		s.logger.WarnContext(ctx, "plan modification rejected",
			"plan", p.ID, "error", err.Error())
		return
	}
	if mod != nil {
		s.logger.InfoContext(ctx, "plan modified",
			"plan", p.ID, "version", p.Version, "added_steps", mod.AddedSteps)
		s.emit(p, nil)
	}
}

// performFor wraps the runner call with the per-attempt step timeout.
// A deadline expiry is surfaced as a STEP-003 error, which the retry
// policy always treats as retryable.
func (s *Scheduler) performFor(step *plan.Step, runner StepRunner) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if s.cfg.StepTimeout <= 0 {
			return runner.Run(ctx, step)
		}

		tctx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
		defer cancel()

		output, err := runner.Run(tctx, step)
		if err != nil && stderrors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errors.Wrap(errors.ErrCodeStepTimeout,
				"step "+step.ID+" attempt timed out", err)
		}
		return output, err
	}
}

// finishPlan drives the plan to COMPLETED or FAILED once no step is ready.
func (s *Scheduler) finishPlan(p *plan.ExecutionPlan) {
	event := plan.EventComplete
	if !p.AllStepsSucceeded() {
		event = plan.EventStepFailed
	}
	if err := p.ApplyEvent(event); err != nil {
		s.logger.Warn("cannot finish plan", "plan", p.ID, "error", err.Error())
		return
	}
	now := time.Now()
	p.CompletedAt = &now
	s.emit(p, nil)
}

// cancelPlan drives the plan to CANCELLED.
func (s *Scheduler) cancelPlan(p *plan.ExecutionPlan) {
	if p.State.Terminal() {
		return
	}
	if err := p.ApplyEvent(plan.EventCancel); err != nil {
		return
	}
	now := time.Now()
	p.CompletedAt = &now
	s.emit(p, nil)
}

func (s *Scheduler) result(p *plan.ExecutionPlan, histories map[string]*retry.History, started time.Time) *ExecutionResult {
	res := &ExecutionResult{
		Plan:     p,
		Outputs:  p.CompletedOutputs(),
		Duration: time.Since(started),
		Retries:  histories,
	}
	for _, step := range p.Steps {
		switch step.Status {
		case plan.StepCompleted:
			res.CompletedSteps++
		case plan.StepFailed:
			res.FailedSteps++
		case plan.StepSkipped:
			res.SkippedSteps++
		}
	}
	return res
}

func (s *Scheduler) emit(p *plan.ExecutionPlan, step *plan.Step) {
	if s.progress != nil {
		s.progress(p, step)
	}
}
