package retry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/errors"
)

func TestDelayFor_Fixed(t *testing.T) {
	p := Policy{Backoff: BackoffFixed, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	for attempt := 1; attempt <= 5; attempt++ {
		assert.Equal(t, 2*time.Second, p.DelayFor(attempt))
	}
}

func TestDelayFor_Linear(t *testing.T) {
	p := Policy{Backoff: BackoffLinear, InitialDelay: 2 * time.Second, MaxDelay: 7 * time.Second}

	assert.Equal(t, 2*time.Second, p.DelayFor(1))
	assert.Equal(t, 4*time.Second, p.DelayFor(2))
	assert.Equal(t, 6*time.Second, p.DelayFor(3))
	assert.Equal(t, 7*time.Second, p.DelayFor(4), "capped at max delay")
}

func TestDelayFor_Exponential(t *testing.T) {
	p := Policy{
		Backoff:      BackoffExponential,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second}, // 32s capped
		{7, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, p.DelayFor(tt.attempt),
				"delay must be min(initial*multiplier^(k-1), max)")
		})
	}
}

func TestDelayFor_ClampsInvalidAttempt(t *testing.T) {
	p := Policy{Backoff: BackoffExponential, InitialDelay: time.Second, Multiplier: 2.0}
	assert.Equal(t, time.Second, p.DelayFor(0))
	assert.Equal(t, time.Second, p.DelayFor(-3))
}

func TestIsRetryable_SubstringMatch(t *testing.T) {
	p := FromConfig(config.Default().Retry)

	assert.True(t, p.IsRetryable(fmt.Errorf("request timeout after 30s")))
	assert.True(t, p.IsRetryable(fmt.Errorf("upstream Rate Limit exceeded")))
	assert.True(t, p.IsRetryable(fmt.Errorf("dial tcp: connection refused")))
	assert.False(t, p.IsRetryable(fmt.Errorf("invalid request payload")))
	assert.False(t, p.IsRetryable(nil))
}

func TestIsRetryable_StepTimeoutAlwaysRetryable(t *testing.T) {
	p := Policy{RetryableErrors: nil}
	err := errors.New(errors.ErrCodeStepTimeout, "step attempt deadline exceeded")
	assert.True(t, p.IsRetryable(err))
}

func TestIsRetryable_ClassifyOverride(t *testing.T) {
	p := Policy{
		RetryableErrors: []string{"timeout"},
		Classify:        func(error) bool { return false },
	}
	assert.False(t, p.IsRetryable(fmt.Errorf("timeout")),
		"classify hook wins over the substring list")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Retry
	p := FromConfig(cfg)

	assert.Equal(t, cfg.MaxAttempts, p.MaxAttempts)
	assert.Equal(t, BackoffExponential, p.Backoff)
	assert.Equal(t, cfg.InitialDelay, p.InitialDelay)
	assert.Equal(t, cfg.MaxDelay, p.MaxDelay)
	assert.Equal(t, cfg.Multiplier, p.Multiplier)
	assert.Equal(t, cfg.RetryableErrors, p.RetryableErrors)
}
