package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/retry"
	"github.com/avelichko/maestro/internal/scheduler"
)

func plainRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewRenderer(Config{Writer: &buf, Plain: true}), &buf
}

func TestObserve_StepEvents(t *testing.T) {
	r, buf := plainRenderer()
	observe := r.Observe()

	p := &plan.ExecutionPlan{ID: "p1", State: plan.StateInProgress, Version: 1}

	running := &plan.Step{ID: "a", Title: "Collect context", Status: plan.StepInProgress}
	observe(p, running)

	done := &plan.Step{
		ID: "a", Title: "Collect context",
		Status:         plan.StepCompleted,
		ActualDuration: 1200 * time.Millisecond,
	}
	observe(p, done)

	out := buf.String()
	assert.Contains(t, out, "● a  Collect context")
	assert.Contains(t, out, "✓ a  Collect context (1.2s)")
}

func TestObserve_FailedStepShowsError(t *testing.T) {
	r, buf := plainRenderer()
	observe := r.Observe()

	p := &plan.ExecutionPlan{ID: "p1", State: plan.StateInProgress, Version: 1}
	observe(p, &plan.Step{ID: "b", Title: "Analyze", Status: plan.StepFailed, Error: "agent crashed"})

	assert.Contains(t, buf.String(), "✗ b  Analyze: agent crashed")
}

func TestObserve_PlanStateDeduplicated(t *testing.T) {
	r, buf := plainRenderer()
	observe := r.Observe()

	p := &plan.ExecutionPlan{ID: "p1", State: plan.StateInProgress, Version: 1}
	observe(p, nil)
	observe(p, nil)
	p.State = plan.StateCompleted
	observe(p, nil)

	out := buf.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("plan IN_PROGRESS")))
	assert.Contains(t, out, "plan COMPLETED")
}

func TestObserve_VersionShownAfterModification(t *testing.T) {
	r, buf := plainRenderer()
	observe := r.Observe()

	p := &plan.ExecutionPlan{ID: "p1", State: plan.StateInProgress, Version: 2}
	observe(p, nil)

	assert.Contains(t, buf.String(), "plan IN_PROGRESS (v2)")
}

func TestSummary(t *testing.T) {
	r, buf := plainRenderer()

	failed := &plan.Step{ID: "b", Title: "Analyze", Status: plan.StepFailed, Error: "broken"}
	res := &scheduler.ExecutionResult{
		Plan: &plan.ExecutionPlan{
			ID:    "p1",
			State: plan.StateFailed,
			Steps: []*plan.Step{
				{ID: "a", Status: plan.StepCompleted},
				failed,
			},
		},
		CompletedSteps: 1,
		FailedSteps:    1,
		Duration:       3 * time.Second,
		Retries: map[string]*retry.History{
			"b": {StepID: "b", Attempts: []retry.Attempt{{Number: 1}, {Number: 2}, {Number: 3}}, Exhausted: true},
		},
	}

	r.Summary(res)

	out := buf.String()
	assert.Contains(t, out, "1 completed, 1 failed, 0 skipped in 3s")
	assert.Contains(t, out, "b: broken")
	assert.Contains(t, out, "after 3 attempts")
}
