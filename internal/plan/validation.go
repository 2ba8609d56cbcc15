package plan

import (
	"strings"

	"github.com/avelichko/maestro/internal/errors"
)

// Validate checks the plan's structural invariants: at least one step,
// unique step ids, no dangling dependencies, no cycles. Construction and
// every modification must pass it before the plan is (re)admitted to the
// scheduler.
func (p *ExecutionPlan) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New(errors.ErrCodePlanEmpty, "plan must have at least one step")
	}

	stepIDs := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if strings.TrimSpace(s.ID) == "" {
			return errors.New(errors.ErrCodePlanInvalid, "step id cannot be empty")
		}
		if s.AgentType == "" {
			return errors.New(errors.ErrCodePlanInvalid, "step "+s.ID+" has no agent type")
		}
		if stepIDs[s.ID] {
			return errors.New(errors.ErrCodePlanDuplicateID, "duplicate step id "+s.ID)
		}
		stepIDs[s.ID] = true
	}

	for _, s := range p.Steps {
		for _, depID := range s.Dependencies {
			if !stepIDs[depID] {
				return errors.NewDanglingDependencyError(s.ID, depID)
			}
		}
	}

	return p.checkCircularDependencies()
}

// checkCircularDependencies detects cycles in the dependency graph with a
// DFS over the adjacency list.
func (p *ExecutionPlan) checkCircularDependencies() error {
	graph := make(map[string][]string, len(p.Steps))
	for _, s := range p.Steps {
		graph[s.ID] = s.Dependencies
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(stepID string, path []string) error
	hasCycle = func(stepID string, path []string) error {
		visited[stepID] = true
		recStack[stepID] = true
		path = append(path, stepID)

		for _, dep := range graph[stepID] {
			if !visited[dep] {
				if err := hasCycle(dep, path); err != nil {
					return err
				}
			} else if recStack[dep] {
				return errors.NewCyclicDependencyError(append(path, dep))
			}
		}

		recStack[stepID] = false
		return nil
	}

	for _, s := range p.Steps {
		if !visited[s.ID] {
			if err := hasCycle(s.ID, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
