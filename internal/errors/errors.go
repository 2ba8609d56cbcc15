package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan construction errors (PLAN-001 to PLAN-099)
	ErrCodePlanEmpty       ErrorCode = "PLAN-001"
	ErrCodePlanInvalid     ErrorCode = "PLAN-002"
	ErrCodePlanDanglingDep ErrorCode = "PLAN-003"
	ErrCodePlanCyclicDep   ErrorCode = "PLAN-004"
	ErrCodePlanDuplicateID ErrorCode = "PLAN-005"
	ErrCodePlanStepMissing ErrorCode = "PLAN-006"

	// State machine errors (STATE-001 to STATE-099)
	ErrCodeStateInvalidTransition ErrorCode = "STATE-001"
	ErrCodeStateTerminal          ErrorCode = "STATE-002"

	// Step execution errors (STEP-001 to STEP-099)
	ErrCodeStepRunnerMissing ErrorCode = "STEP-001"
	ErrCodeStepFailed        ErrorCode = "STEP-002"
	ErrCodeStepTimeout       ErrorCode = "STEP-003"

	// Retry errors (RETRY-001 to RETRY-099)
	ErrCodeRetryExhausted    ErrorCode = "RETRY-001"
	ErrCodeRetryNonRetryable ErrorCode = "RETRY-002"
	ErrCodeRetryCancelled    ErrorCode = "RETRY-003"

	// RAG pipeline errors (RAG-001 to RAG-099)
	ErrCodeRAGIndexQuery  ErrorCode = "RAG-001"
	ErrCodeRAGChunkLookup ErrorCode = "RAG-002"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderNotFound    ErrorCode = "PROVIDER-001"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER-002"
	ErrCodeProviderCall        ErrorCode = "PROVIDER-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-003"
)

// MaestroError represents an enhanced error with code, suggestions, and cause
type MaestroError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *MaestroError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *MaestroError) Unwrap() error {
	return e.Cause
}

// New creates a new MaestroError
func New(code ErrorCode, message string) *MaestroError {
	return &MaestroError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new MaestroError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *MaestroError {
	return &MaestroError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *MaestroError) WithSuggestion(suggestion string) *MaestroError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *MaestroError) WithSuggestions(suggestions ...string) *MaestroError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasCode reports whether err carries the given error code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if me, ok := err.(*MaestroError); ok && me.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NewDanglingDependencyError reports a dependency on a step id missing from the plan
func NewDanglingDependencyError(stepID, depID string) *MaestroError {
	return New(ErrCodePlanDanglingDep,
		fmt.Sprintf("step %q depends on %q which does not exist in the plan", stepID, depID)).
		WithSuggestion("check the step ids produced by the plan builder or modifier")
}

// NewCyclicDependencyError reports a dependency cycle through the given path
func NewCyclicDependencyError(path []string) *MaestroError {
	return New(ErrCodePlanCyclicDep,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(path, " -> ")))
}

// NewInvalidTransitionError reports an event applied to a state that does not allow it
func NewInvalidTransitionError(event, state string) *MaestroError {
	return New(ErrCodeStateInvalidTransition,
		fmt.Sprintf("event %q is not allowed in state %q", event, state))
}

// NewRunnerMissingError reports a plan referencing an agent type with no registered runner
func NewRunnerMissingError(agentType string) *MaestroError {
	return New(ErrCodeStepRunnerMissing,
		fmt.Sprintf("no step runner registered for agent type %q", agentType)).
		WithSuggestion("register a runner for this agent type before executing the plan")
}

// NewProviderNotFoundError reports a lookup of an unregistered provider
func NewProviderNotFoundError(name string) *MaestroError {
	return New(ErrCodeProviderNotFound, fmt.Sprintf("provider %q not found", name))
}

// NewConfigInvalidError reports a configuration value that fails validation
func NewConfigInvalidError(details string) *MaestroError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details))
}
