// Package prompt collects user input for plans paused in REQUIRES_INPUT
// and for CLI confirmations.
package prompt

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/avelichko/maestro/internal/scheduler"
)

// Interactive returns an input provider backed by a terminal form. The
// plan stays paused until the user answers or the context is cancelled.
func Interactive() scheduler.InputProvider {
	return func(ctx context.Context, question string) (string, error) {
		var value string

		input := huh.NewInput().
			Title(question).
			Value(&value)

		form := huh.NewForm(huh.NewGroup(input))
		if err := form.RunWithContext(ctx); err != nil {
			return "", fmt.Errorf("prompt failed: %w", err)
		}
		return value, nil
	}
}

// Static returns an input provider serving canned answers in order, for
// non-interactive runs. Once answers run out, every request fails.
func Static(answers ...string) scheduler.InputProvider {
	i := 0
	return func(_ context.Context, question string) (string, error) {
		if i >= len(answers) {
			return "", fmt.Errorf("no answer available for: %s", question)
		}
		answer := answers[i]
		i++
		return answer, nil
	}
}

// Confirm displays a yes/no confirmation prompt.
func Confirm(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// IsInteractive reports whether stdin is a terminal (not piped).
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
