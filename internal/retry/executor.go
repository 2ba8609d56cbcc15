package retry

import (
	"context"
	"time"

	"github.com/avelichko/maestro/internal/errors"
	"github.com/avelichko/maestro/internal/log"
)

// Attempt records one perform call that failed.
type Attempt struct {
	// Number is 1-based.
	Number    int        `json:"number"`
	Error     string     `json:"error"`
	Timestamp time.Time  `json:"timestamp"`
	NextRetry *time.Time `json:"next_retry,omitempty"`
}

// History is the full retry record for one step, kept with the step so a
// failed plan can explain what was tried.
type History struct {
	StepID   string    `json:"step_id"`
	Attempts []Attempt `json:"attempts,omitempty"`

	// Exhausted is true when the attempt budget ran out.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Executor runs a perform function under a retry policy.
type Executor struct {
	logger *log.Logger
}

// NewExecutor creates a retry executor.
func NewExecutor(logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{logger: logger}
}

// Execute calls perform until it succeeds, fails non-retryably, exhausts
// the attempt budget, or the context is cancelled. perform is called at
// most policy.MaxAttempts times, and exactly once for a non-retryable
// failure. The wait between attempts is cancellable; cancellation during
// a wait returns immediately without another attempt.
func (e *Executor) Execute(ctx context.Context, stepID string, policy Policy, perform func(context.Context) (any, error)) (any, *History, error) {
	hist := &History{StepID: stepID}

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, hist, errors.Wrap(errors.ErrCodeRetryCancelled,
				"step "+stepID+" cancelled before attempt", err)
		}

		output, err := perform(ctx)
		if err == nil {
			return output, hist, nil
		}

		rec := Attempt{Number: attempt, Error: err.Error(), Timestamp: time.Now()}

		if !policy.IsRetryable(err) {
			hist.Attempts = append(hist.Attempts, rec)
			return nil, hist, errors.Wrap(errors.ErrCodeRetryNonRetryable,
				"step "+stepID+" failed with a non-retryable error", err)
		}

		if attempt == maxAttempts {
			hist.Attempts = append(hist.Attempts, rec)
			hist.Exhausted = true
			return nil, hist, errors.Wrap(errors.ErrCodeRetryExhausted,
				"step "+stepID+" failed after exhausting all attempts", err)
		}

		delay := policy.DelayFor(attempt)
		next := rec.Timestamp.Add(delay)
		rec.NextRetry = &next
		hist.Attempts = append(hist.Attempts, rec)

		e.logger.WarnContext(ctx, "step attempt failed, retrying",
			"step", stepID,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay.String(),
			"error", err.Error(),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, hist, errors.Wrap(errors.ErrCodeRetryCancelled,
				"step "+stepID+" cancelled while waiting to retry", ctx.Err())
		case <-timer.C:
		}
	}

	// Unreachable: the loop always returns.
	return nil, hist, errors.New(errors.ErrCodeRetryExhausted, "step "+stepID+" exhausted retries")
}
