// Package provider defines the LLM call contract consumed by the core.
// Concrete transports (HTTP APIs, CLI tools, local models) are implemented
// outside this module; the core only depends on this interface, the
// success/error response shape and an availability check.
package provider

import "context"

// Client is the universal interface every LLM provider must implement.
type Client interface {
	// Generate sends a prompt and returns a complete response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is accessible and ready to use.
	// It must be cheap; it gates optional stages such as reranking.
	IsAvailable() bool

	// Health performs a deeper health check on the provider.
	// Returns nil if healthy, an error describing the problem otherwise.
	Health(ctx context.Context) error

	// Close cleans up any resources used by the provider.
	Close() error
}
