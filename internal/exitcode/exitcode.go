package exitcode

import (
	"errors"
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// PlanFailed indicates a plan reached the FAILED state
	PlanFailed = 3

	// PlanCancelled indicates a plan was cancelled before completion
	PlanCancelled = 4

	// ConfigError indicates invalid or unreadable configuration
	ConfigError = 5

	// Interrupted indicates the process received an interrupt signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// ErrPlanFailed is matched by DetermineExitCode via errors.Is.
var ErrPlanFailed = errors.New("plan failed")

// ErrPlanCancelled is matched by DetermineExitCode via errors.Is.
var ErrPlanCancelled = errors.New("plan cancelled")

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.Is(err, ErrPlanFailed) {
		return PlanFailed
	}
	if errors.Is(err, ErrPlanCancelled) {
		return PlanCancelled
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "config") && (strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "not found")) {
		return ConfigError
	}
	if strings.Contains(errMsg, "usage") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}

	return GeneralError
}
