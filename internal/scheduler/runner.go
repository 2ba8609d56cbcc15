package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avelichko/maestro/internal/errors"
	"github.com/avelichko/maestro/internal/plan"
)

// StepRunner performs the work of one step. Runners must treat the step
// as read-only; the scheduler applies all results itself.
type StepRunner interface {
	Run(ctx context.Context, step *plan.Step) (any, error)
}

// RunnerFunc adapts a function to the StepRunner interface.
type RunnerFunc func(ctx context.Context, step *plan.Step) (any, error)

// Run calls the function.
func (f RunnerFunc) Run(ctx context.Context, step *plan.Step) (any, error) {
	return f(ctx, step)
}

// InputRequiredError is returned by a runner when the step cannot proceed
// without user input. The scheduler pauses the plan in REQUIRES_INPUT,
// collects the answer through the configured input provider and re-runs
// the step with the answer in its input bag.
type InputRequiredError struct {
	// Prompt is shown to the user.
	Prompt string

	// Key is the input-bag key the answer is stored under.
	Key string
}

// Error implements the error interface.
func (e *InputRequiredError) Error() string {
	return fmt.Sprintf("step requires user input: %s", e.Prompt)
}

// Registry maps agent types to their runners.
type Registry struct {
	mu      sync.RWMutex
	runners map[plan.AgentType]StepRunner
}

// NewRegistry creates an empty runner registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[plan.AgentType]StepRunner)}
}

// Register binds a runner to an agent type, replacing any previous one.
func (r *Registry) Register(agentType plan.AgentType, runner StepRunner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[agentType] = runner
}

// Get returns the runner for an agent type.
func (r *Registry) Get(agentType plan.AgentType) (StepRunner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runner, ok := r.runners[agentType]
	if !ok {
		return nil, errors.NewRunnerMissingError(string(agentType))
	}
	return runner, nil
}

// List returns the registered agent types in sorted order.
func (r *Registry) List() []plan.AgentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]plan.AgentType, 0, len(r.runners))
	for t := range r.runners {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ValidateFor checks that every agent type the plan references has a
// registered runner. Called before execution so a missing runner fails
// fast instead of mid-plan.
func (r *Registry) ValidateFor(p *plan.ExecutionPlan) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range p.Steps {
		if _, ok := r.runners[s.AgentType]; !ok {
			return errors.NewRunnerMissingError(string(s.AgentType))
		}
	}
	return nil
}
