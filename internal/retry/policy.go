// Package retry implements per-step retry with configurable backoff.
// A failed attempt is classified as retryable or not; retryable failures
// are re-attempted up to the policy's budget with a delay between
// attempts, non-retryable failures surface immediately.
package retry

import (
	"math"
	"strings"
	"time"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/errors"
)

// Backoff selects how the delay between attempts grows.
type Backoff string

const (
	// BackoffFixed waits the initial delay between every attempt.
	BackoffFixed Backoff = "fixed"

	// BackoffLinear waits initialDelay * attempt, capped at MaxDelay.
	BackoffLinear Backoff = "linear"

	// BackoffExponential waits initialDelay * multiplier^(attempt-1),
	// capped at MaxDelay.
	BackoffExponential Backoff = "exponential"
)

// Policy is the retry budget and backoff shape for one step. The zero
// value is unusable; build policies with FromConfig or literal values
// validated by the caller.
type Policy struct {
	// MaxAttempts is the total attempt budget including the first one.
	// A perform function is never called more than MaxAttempts times.
	MaxAttempts int

	Backoff      Backoff
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// RetryableErrors classifies failures by substring match against the
	// error text. Empty means nothing is retryable unless Classify is set.
	RetryableErrors []string

	// Classify overrides the substring classification entirely when set.
	Classify func(error) bool
}

// FromConfig builds a policy from the engine retry configuration.
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts:     cfg.MaxAttempts,
		Backoff:         Backoff(cfg.Backoff),
		InitialDelay:    cfg.InitialDelay,
		MaxDelay:        cfg.MaxDelay,
		Multiplier:      cfg.Multiplier,
		RetryableErrors: cfg.RetryableErrors,
	}
}

// DelayFor returns the wait before the next attempt, given the 1-based
// number of the attempt that just failed.
func (p Policy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var d time.Duration
	switch p.Backoff {
	case BackoffLinear:
		d = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		d = time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
	default:
		d = p.InitialDelay
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// IsRetryable classifies an error. Step timeouts are always a retryable
// class; beyond that the Classify hook wins, falling back to substring
// matching against RetryableErrors.
func (p Policy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.HasCode(err, errors.ErrCodeStepTimeout) {
		return true
	}
	if p.Classify != nil {
		return p.Classify(err)
	}

	text := strings.ToLower(err.Error())
	for _, tag := range p.RetryableErrors {
		if strings.Contains(text, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
