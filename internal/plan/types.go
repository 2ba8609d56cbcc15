// Package plan holds the execution-plan model: a DAG of steps with
// dependencies, a lifecycle state machine, and an append-only modification
// log. A plan is produced once per request, owned exclusively by the
// scheduler while running, and discarded after reaching a terminal state.
package plan

import (
	"time"
)

// StepStatus tracks the execution status of one step. A step moves
// monotonically forward except for the explicit retry reset
// (FAILED → PENDING under a retry policy); COMPLETED and SKIPPED are
// terminal for the step.
type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepCompleted  StepStatus = "COMPLETED"
	StepFailed     StepStatus = "FAILED"
	StepSkipped    StepStatus = "SKIPPED"
)

// Terminal reports whether the status is final for the step.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepSkipped
}

// AgentType tags the external collaborator that performs a step's work.
// The set is open; the core never switches on concrete values.
type AgentType string

// Agent types used by the built-in plan templates.
const (
	AgentContextSearch AgentType = "context-search"
	AgentCodeAnalysis  AgentType = "code-analysis"
	AgentFilesystem    AgentType = "filesystem"
	AgentGit           AgentType = "git"
	AgentLLM           AgentType = "llm"
	AgentReport        AgentType = "report"
)

// Step is a single unit of work in the plan. Steps are mutated only by the
// scheduler's serialized result-application phase, one step at a time;
// concurrently running steps never share mutable fields.
type Step struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AgentType   AgentType `json:"agent_type"`

	// Input is the key-value bag handed to the step runner.
	Input map[string]any `json:"input,omitempty"`

	// Dependencies lists step ids that must reach COMPLETED before this
	// step becomes ready.
	Dependencies []string `json:"dependencies,omitempty"`

	Status StepStatus `json:"status"`

	// Output is the opaque runner result once the step completed.
	Output any `json:"output,omitempty"`

	// Error holds the failure message when the step failed.
	Error string `json:"error,omitempty"`

	EstimatedDuration time.Duration `json:"estimated_duration,omitempty"`
	ActualDuration    time.Duration `json:"actual_duration,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// State is the plan lifecycle state. See the transition table in
// statemachine.go.
type State string

const (
	StateCreated       State = "CREATED"
	StateAnalyzing     State = "ANALYZING"
	StateInProgress    State = "IN_PROGRESS"
	StatePaused        State = "PAUSED"
	StateRequiresInput State = "REQUIRES_INPUT"
	StateResumed       State = "RESUMED"
	StateCompleted     State = "COMPLETED"
	StateFailed        State = "FAILED"
	StateCancelled     State = "CANCELLED"
)

// Terminal reports whether the state is final for the plan.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Modification is one append-only record of a structural plan change.
type Modification struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`

	// Version is the plan version this modification produced.
	Version int `json:"version"`

	// AddedSteps lists ids of steps injected by this modification.
	AddedSteps []string `json:"added_steps,omitempty"`

	// AddedDependencies maps a step id to dependency ids added to it.
	AddedDependencies map[string][]string `json:"added_dependencies,omitempty"`
}

// ExecutionPlan is the plan for one request. Not safe for concurrent
// mutation: the scheduler owns it and serializes all writes.
type ExecutionPlan struct {
	ID              string `json:"id"`
	OriginalRequest string `json:"original_request"`

	Steps []*Step `json:"steps"`

	State State `json:"state"`

	// Version strictly increases; every structural modification bumps it
	// and appends exactly one ModificationHistory entry.
	Version int `json:"version"`

	ModificationHistory []Modification `json:"modification_history,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Step returns the step with the given id, or nil.
func (p *ExecutionPlan) Step(id string) *Step {
	for _, s := range p.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ReadySteps returns steps that are PENDING with every dependency
// COMPLETED. A step whose dependency was SKIPPED or FAILED is not ready.
func (p *ExecutionPlan) ReadySteps() []*Step {
	var ready []*Step
	for _, s := range p.Steps {
		if s.Status != StepPending {
			continue
		}
		ok := true
		for _, depID := range s.Dependencies {
			dep := p.Step(depID)
			if dep == nil || dep.Status != StepCompleted {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, s)
		}
	}
	return ready
}

// AllStepsSettled reports whether no step can make further progress:
// every step is COMPLETED, SKIPPED or FAILED.
func (p *ExecutionPlan) AllStepsSettled() bool {
	for _, s := range p.Steps {
		switch s.Status {
		case StepCompleted, StepSkipped, StepFailed:
		default:
			return false
		}
	}
	return true
}

// AllStepsSucceeded reports whether every step is COMPLETED or SKIPPED.
func (p *ExecutionPlan) AllStepsSucceeded() bool {
	for _, s := range p.Steps {
		if !s.Status.Terminal() {
			return false
		}
	}
	return true
}

// FailedSteps returns steps currently in FAILED status.
func (p *ExecutionPlan) FailedSteps() []*Step {
	var failed []*Step
	for _, s := range p.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// CompletedOutputs collects outputs of completed steps keyed by step id.
// A FAILED plan keeps these, so the caller can present partial results.
func (p *ExecutionPlan) CompletedOutputs() map[string]any {
	outputs := make(map[string]any)
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			outputs[s.ID] = s.Output
		}
	}
	return outputs
}
