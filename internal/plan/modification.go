package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/maestro/internal/errors"
)

// ModificationRequest is what a modifier asks to change: new steps to
// append and dependencies to add to existing steps.
type ModificationRequest struct {
	// Description explains why the change is made; it goes into the
	// modification history verbatim.
	Description string

	// Steps are appended to the plan. Status defaults to PENDING.
	Steps []*Step

	// Dependencies maps an existing step id to dependency ids to add.
	Dependencies map[string][]string
}

// Modifier inspects the plan and the steps settled in the last batch and
// may request a structural change. Returning nil means no change. The
// function must be pure: it never mutates the plan itself.
type Modifier func(p *ExecutionPlan, settled []*Step) *ModificationRequest

// ApplyModification applies a request atomically: on any validation
// failure the plan is left exactly as it was. On success the version is
// bumped by one and exactly one history entry is appended.
func (p *ExecutionPlan) ApplyModification(req *ModificationRequest) (*Modification, error) {
	if req == nil || (len(req.Steps) == 0 && len(req.Dependencies) == 0) {
		return nil, nil
	}

	prevSteps := p.Steps
	prevDeps := make(map[string][]string, len(req.Dependencies))

	// Append new steps.
	added := make([]string, 0, len(req.Steps))
	steps := make([]*Step, len(p.Steps), len(p.Steps)+len(req.Steps))
	copy(steps, p.Steps)
	for _, s := range req.Steps {
		if s.Status == "" {
			s.Status = StepPending
		}
		steps = append(steps, s)
		added = append(added, s.ID)
	}
	p.Steps = steps

	// Add dependencies to existing steps.
	for stepID, deps := range req.Dependencies {
		target := p.Step(stepID)
		if target == nil {
			p.Steps = prevSteps
			return nil, errors.New(errors.ErrCodePlanStepMissing,
				"modification targets unknown step "+stepID)
		}
		prevDeps[stepID] = target.Dependencies
		target.Dependencies = append(append([]string(nil), target.Dependencies...), deps...)
	}

	if err := p.Validate(); err != nil {
		// Roll back: restore the step list and every touched dependency
		// slice.
		p.Steps = prevSteps
		for stepID, deps := range prevDeps {
			if target := p.Step(stepID); target != nil {
				target.Dependencies = deps
			}
		}
		return nil, err
	}

	p.Version++
	mod := Modification{
		ID:                uuid.NewString(),
		Description:       req.Description,
		Timestamp:         time.Now(),
		Version:           p.Version,
		AddedSteps:        added,
		AddedDependencies: req.Dependencies,
	}
	p.ModificationHistory = append(p.ModificationHistory, mod)
	return &mod, nil
}
