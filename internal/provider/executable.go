package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// ExecutableClient wraps any executable that speaks JSON over stdin/stdout.
// The request is written to stdin as a GenerateRequest, the response is
// read from stdout as a GenerateResponse. Any program can be a provider
// this way; model transports live outside this module.
type ExecutableClient struct {
	path string
	args []string
}

// NewExecutableClient creates a subprocess-backed provider. The path must
// resolve through PATH or be absolute.
func NewExecutableClient(path string, args ...string) (*ExecutableClient, error) {
	if _, err := exec.LookPath(path); err != nil {
		return nil, fmt.Errorf("provider executable not found: %s: %w", path, err)
	}
	return &ExecutableClient{path: path, args: args}, nil
}

// Generate runs the executable once per request.
func (e *ExecutableClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.path, e.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		stdin.Write(requestJSON)
	}()

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("provider failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("failed to execute provider: %w", err)
	}

	var resp GenerateResponse
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if resp.Latency == 0 {
		resp.Latency = time.Since(start)
	}
	return &resp, nil
}

// IsAvailable checks that the executable still resolves.
func (e *ExecutableClient) IsAvailable() bool {
	_, err := exec.LookPath(e.path)
	return err == nil
}

// Health runs a short no-prompt generation to verify the executable works.
func (e *ExecutableClient) Health(ctx context.Context) error {
	if !e.IsAvailable() {
		return fmt.Errorf("provider executable not found: %s", e.path)
	}
	return nil
}

// Close releases nothing; each call runs its own process.
func (e *ExecutableClient) Close() error {
	return nil
}
