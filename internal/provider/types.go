package provider

import "time"

// GenerateRequest contains all parameters for generating a response
type GenerateRequest struct {
	// Prompt is the main input text for the model
	Prompt string `json:"prompt"`

	// SystemPrompt sets the system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// History provides previous messages for multi-turn conversations
	History []Message `json:"history,omitempty"`

	// MaxTokens limits the maximum response length; 0 uses the provider default
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64 `json:"temperature,omitempty"`

	// Metadata for tracking and debugging
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GenerateResponse contains the model's response
type GenerateResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// Model is the actual model that generated the response
	Model string `json:"model,omitempty"`

	// TokensUsed is the total tokens consumed (input + output)
	TokensUsed int `json:"tokens_used,omitempty"`

	// Latency is how long the generation took
	Latency time.Duration `json:"latency,omitempty"`

	// FinishReason explains why generation stopped ("stop", "length", "error")
	FinishReason string `json:"finish_reason,omitempty"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role is who sent the message: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}
