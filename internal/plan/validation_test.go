package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/maestro/internal/errors"
)

func step(id string, deps ...string) *Step {
	return &Step{
		ID:           id,
		Title:        id,
		AgentType:    AgentLLM,
		Dependencies: deps,
		Status:       StepPending,
	}
}

func testPlan(steps ...*Step) *ExecutionPlan {
	return &ExecutionPlan{
		ID:      "plan-1",
		State:   StateCreated,
		Version: 1,
		Steps:   steps,
	}
}

func TestValidate_ValidPlan(t *testing.T) {
	p := testPlan(
		step("a"),
		step("b", "a"),
		step("c", "a", "b"),
	)
	assert.NoError(t, p.Validate())
}

func TestValidate_EmptyPlan(t *testing.T) {
	err := testPlan().Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanEmpty))
}

func TestValidate_DanglingDependency(t *testing.T) {
	p := testPlan(step("a"), step("b", "ghost"))
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanDanglingDep))
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidate_DuplicateStepID(t *testing.T) {
	p := testPlan(step("a"), step("a"))
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanDuplicateID))
}

func TestValidate_DirectCycle(t *testing.T) {
	p := testPlan(step("a", "b"), step("b", "a"))
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanCyclicDep))
}

func TestValidate_SelfCycle(t *testing.T) {
	p := testPlan(step("a", "a"))
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanCyclicDep))
}

func TestValidate_TransitiveCycle(t *testing.T) {
	p := testPlan(
		step("a", "c"),
		step("b", "a"),
		step("c", "b"),
	)
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlanCyclicDep))
}

func TestValidate_MissingAgentType(t *testing.T) {
	p := testPlan(&Step{ID: "a", Status: StepPending})
	assert.Error(t, p.Validate())
}

func TestReadySteps(t *testing.T) {
	a := step("a")
	b := step("b", "a")
	c := step("c")
	p := testPlan(a, b, c)

	ready := p.ReadySteps()
	assert.ElementsMatch(t, []*Step{a, c}, ready, "independent steps are ready together")

	a.Status = StepCompleted
	ready = p.ReadySteps()
	assert.ElementsMatch(t, []*Step{b, c}, ready)
}

func TestReadySteps_NeverReadyOnUnfinishedDependency(t *testing.T) {
	a := step("a")
	b := step("b", "a")
	p := testPlan(a, b)

	for _, status := range []StepStatus{StepPending, StepInProgress, StepFailed, StepSkipped} {
		a.Status = status
		for _, ready := range p.ReadySteps() {
			assert.NotEqual(t, "b", ready.ID, "b must not be ready while a is %s", status)
		}
	}
}

func TestCompletedOutputs_PartialResultsSurvive(t *testing.T) {
	a := step("a")
	a.Status = StepCompleted
	a.Output = "analysis result"
	b := step("b", "a")
	b.Status = StepFailed
	b.Error = "agent crashed"

	p := testPlan(a, b)
	p.State = StateFailed

	outputs := p.CompletedOutputs()
	assert.Equal(t, map[string]any{"a": "analysis result"}, outputs)
	assert.Equal(t, "agent crashed", p.Step("b").Error)
}
