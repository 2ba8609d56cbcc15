package plan

import (
	"github.com/avelichko/maestro/internal/errors"
)

// Event is a closed set of plan lifecycle events matched against the
// transition table below.
type Event string

const (
	// EventStart moves a freshly created plan into analysis.
	EventStart Event = "start"

	// EventStepProgress is the internal event fired when step execution
	// begins or continues.
	EventStepProgress Event = "step_progress"

	// EventPause suspends a running plan.
	EventPause Event = "pause"

	// EventResume continues a paused plan.
	EventResume Event = "resume"

	// EventInputRequired is the internal event fired when a step signals
	// it needs user input.
	EventInputRequired Event = "input_required"

	// EventUserInput delivers the awaited user input.
	EventUserInput Event = "user_input"

	// EventComplete finishes a plan whose steps all settled successfully.
	EventComplete Event = "complete"

	// EventStepFailed marks the plan failed after a step exhausted its
	// retries with no remediation path.
	EventStepFailed Event = "step_failed"

	// EventCancel aborts the plan.
	EventCancel Event = "cancel"
)

// anySource is a sentinel meaning "any non-terminal state".
var anySource = []State(nil)

// transition defines one row of the table: the event, its allowed source
// states (nil = any non-terminal) and the target state.
type transition struct {
	sources []State
	target  State
}

var transitions = map[Event]transition{
	EventStart:         {sources: []State{StateCreated}, target: StateAnalyzing},
	EventStepProgress:  {sources: []State{StateAnalyzing, StateInProgress, StateResumed}, target: StateInProgress},
	EventPause:         {sources: []State{StateInProgress}, target: StatePaused},
	EventResume:        {sources: []State{StatePaused}, target: StateResumed},
	EventInputRequired: {sources: []State{StateInProgress}, target: StateRequiresInput},
	EventUserInput:     {sources: []State{StateRequiresInput}, target: StateResumed},
	EventComplete:      {sources: []State{StateInProgress, StateResumed}, target: StateCompleted},
	EventStepFailed:    {sources: anySource, target: StateFailed},
	EventCancel:        {sources: anySource, target: StateCancelled},
}

// NextState resolves the target state for an event applied in the current
// state. An event whose source list does not include the current state is
// rejected with a STATE-001 error and the caller must leave the plan
// unchanged; transitions never silently no-op or force through.
func NextState(current State, event Event) (State, error) {
	tr, known := transitions[event]
	if !known {
		return current, errors.NewInvalidTransitionError(string(event), string(current))
	}

	if current.Terminal() {
		return current, errors.New(errors.ErrCodeStateTerminal,
			"plan already reached terminal state "+string(current))
	}

	if tr.sources == nil {
		return tr.target, nil
	}
	for _, src := range tr.sources {
		if src == current {
			return tr.target, nil
		}
	}
	return current, errors.NewInvalidTransitionError(string(event), string(current))
}

// ApplyEvent advances the plan's state through the transition table.
// On rejection the plan state is left untouched and the error returned.
// EventComplete additionally requires every step to be COMPLETED or
// SKIPPED.
func (p *ExecutionPlan) ApplyEvent(event Event) error {
	if event == EventComplete && !p.AllStepsSucceeded() {
		return errors.NewInvalidTransitionError(string(event), string(p.State)).
			WithSuggestion("complete is only valid once every step is COMPLETED or SKIPPED")
	}

	next, err := NextState(p.State, event)
	if err != nil {
		return err
	}
	p.State = next
	return nil
}
