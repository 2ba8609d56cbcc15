// Package progress renders plan execution progress for the terminal. It
// plugs into the scheduler's progress callback and prints one line per
// event, so output stays readable when piped or captured in CI.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/scheduler"
)

// Config holds configuration for the renderer.
type Config struct {
	Writer io.Writer

	// Plain disables colors and symbols. Auto-enabled in CI.
	Plain bool
}

var (
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true)
	stateStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var stepSymbols = map[plan.StepStatus]string{
	plan.StepPending:    "○",
	plan.StepInProgress: "●",
	plan.StepCompleted:  "✓",
	plan.StepFailed:     "✗",
	plan.StepSkipped:    "◌",
}

// Renderer prints plan progress events. Safe for the scheduler's
// single-goroutine callback plus a concurrent Summary call.
type Renderer struct {
	writer io.Writer
	plain  bool

	mu        sync.Mutex
	lastState plan.State
}

// NewRenderer creates a renderer.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if !cfg.Plain {
		cfg.Plain = os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
	}
	return &Renderer{writer: cfg.Writer, plain: cfg.Plain}
}

// Observe returns the scheduler callback bound to this renderer.
func (r *Renderer) Observe() scheduler.ProgressFunc {
	return func(p *plan.ExecutionPlan, step *plan.Step) {
		if step != nil {
			r.stepEvent(step)
			return
		}
		r.planEvent(p)
	}
}

func (r *Renderer) stepEvent(step *plan.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbol := stepSymbols[step.Status]
	line := fmt.Sprintf("%s %s  %s", symbol, step.ID, step.Title)

	switch step.Status {
	case plan.StepCompleted:
		line += dimSuffix(r.plain, " ("+step.ActualDuration.Round(10*time.Millisecond).String()+")")
		line = r.style(completedStyle, line)
	case plan.StepFailed:
		line += dimSuffix(r.plain, ": "+step.Error)
		line = r.style(failedStyle, line)
	case plan.StepInProgress:
		line = r.style(runningStyle, line)
	case plan.StepSkipped:
		line = r.style(skippedStyle, line)
	default:
		line = r.style(pendingStyle, line)
	}

	fmt.Fprintln(r.writer, line)
}

func (r *Renderer) planEvent(p *plan.ExecutionPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.State == r.lastState {
		return
	}
	r.lastState = p.State

	line := "plan " + string(p.State)
	if p.Version > 1 {
		line += fmt.Sprintf(" (v%d)", p.Version)
	}
	fmt.Fprintln(r.writer, r.style(stateStyle, line))
}

// Summary prints the final execution summary.
func (r *Renderer) Summary(res *scheduler.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.writer, "\n%d completed, %d failed, %d skipped in %s\n",
		res.CompletedSteps, res.FailedSteps, res.SkippedSteps,
		res.Duration.Round(10*time.Millisecond))

	for _, step := range res.Plan.FailedSteps() {
		fmt.Fprintf(r.writer, "  %s: %s\n", step.ID, step.Error)
		if hist, ok := res.Retries[step.ID]; ok && len(hist.Attempts) > 1 {
			fmt.Fprintf(r.writer, "    after %d attempts\n", len(hist.Attempts))
		}
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

func dimSuffix(plain bool, text string) string {
	if plain {
		return text
	}
	return dimStyle.Render(text)
}
