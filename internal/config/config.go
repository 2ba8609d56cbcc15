// Package config holds the explicit engine configuration. A Config is
// constructed once (defaults, optionally overlaid from YAML) and passed by
// reference into the scorer, builder, pipeline and scheduler constructors.
// Nothing in the engine resolves settings through globals.
package config

import (
	"time"

	"github.com/avelichko/maestro/internal/errors"
)

// Config is the root configuration for the orchestration engine.
type Config struct {
	Scoring   ScoringConfig   `yaml:"scoring"`
	RAG       RAGConfig       `yaml:"rag"`
	Retry     RetryConfig     `yaml:"retry"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ScoringConfig tunes the uncertainty scorer's cut points and adjustments.
type ScoringConfig struct {
	// MediumThreshold is the complexity score at or above which a request
	// is at least MEDIUM. Strictly-below resolves to the lower level.
	MediumThreshold float64 `yaml:"medium_threshold"`

	// HighThreshold is the complexity score at or above which a request
	// is at least HIGH.
	HighThreshold float64 `yaml:"high_threshold"`

	// VeryHighThreshold splits HIGH from VERY_HIGH.
	VeryHighThreshold float64 `yaml:"very_high_threshold"`

	// ShortRequestRunes is the length under which a request counts as
	// "very short" for the uncertainty adjustment.
	ShortRequestRunes int `yaml:"short_request_runes"`

	// ShortRequestPenalty is added to uncertainty for very short requests.
	ShortRequestPenalty float64 `yaml:"short_request_penalty"`

	// NoQuestionPenalty is added to uncertainty when the request carries
	// no question mark and complexity is below HighThreshold.
	NoQuestionPenalty float64 `yaml:"no_question_penalty"`

	// MultiTopicPenalty is added to uncertainty when keywords from several
	// unrelated topic groups fire together.
	MultiTopicPenalty float64 `yaml:"multi_topic_penalty"`

	// HistoryPenalty is the flat complexity contribution of a non-empty
	// dialogue history.
	HistoryPenalty float64 `yaml:"history_penalty"`
}

// RAGConfig tunes the retrieval pipeline.
type RAGConfig struct {
	// MinCandidates and MaxCandidates bound the candidate K requested from
	// the vector index; callers asking outside the range are coerced.
	MinCandidates int `yaml:"min_candidates"`
	MaxCandidates int `yaml:"max_candidates"`

	// SimilarityThreshold drops candidates scoring below it.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// TopN is the number of chunks handed to the plan builder.
	TopN int `yaml:"top_n"`

	// ContextLines is the window of surrounding lines added on each side
	// of a chunk during enrichment.
	ContextLines int `yaml:"context_lines"`

	// RerankEnabled toggles the LLM reranking stage.
	RerankEnabled bool `yaml:"rerank_enabled"`

	// RerankProvider names the LLM provider used for reranking.
	RerankProvider string `yaml:"rerank_provider"`

	// QueryTimeout bounds a single vector index call.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// RerankTimeout bounds the rerank call; on expiry the pipeline falls
	// back to similarity order.
	RerankTimeout time.Duration `yaml:"rerank_timeout"`
}

// RetryConfig carries the default per-step retry policy values.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	Backoff      string        `yaml:"backoff"` // fixed, linear, exponential
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`

	// RetryableErrors is the default set of substrings that classify an
	// error as transient.
	RetryableErrors []string `yaml:"retryable_errors"`
}

// SchedulerConfig tunes plan execution.
type SchedulerConfig struct {
	// MaxParallelSteps caps how many ready steps run concurrently.
	// Zero means no cap.
	MaxParallelSteps int `yaml:"max_parallel_steps"`

	// StepTimeout bounds a single step attempt. Timeouts are a retryable
	// error class. Zero disables the bound.
	StepTimeout time.Duration `yaml:"step_timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the engine defaults. Numeric scoring and RAG values are
// tunable, not load-bearing; these are the shipped starting points.
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			MediumThreshold:     0.3,
			HighThreshold:       0.7,
			VeryHighThreshold:   0.85,
			ShortRequestRunes:   12,
			ShortRequestPenalty: 0.15,
			NoQuestionPenalty:   0.1,
			MultiTopicPenalty:   0.15,
			HistoryPenalty:      0.1,
		},
		RAG: RAGConfig{
			MinCandidates:       5,
			MaxCandidates:       50,
			SimilarityThreshold: 0.55,
			TopN:                5,
			ContextLines:        6,
			RerankEnabled:       true,
			RerankProvider:      "default",
			QueryTimeout:        5 * time.Second,
			RerankTimeout:       10 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			Backoff:      "exponential",
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			RetryableErrors: []string{
				"timeout",
				"temporarily unavailable",
				"rate limit",
				"connection refused",
				"connection reset",
			},
		},
		Scheduler: SchedulerConfig{
			MaxParallelSteps: 4,
			StepTimeout:      2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks invariants the rest of the engine relies on.
func (c *Config) Validate() error {
	if c.Scoring.MediumThreshold <= 0 || c.Scoring.MediumThreshold >= c.Scoring.HighThreshold {
		return errors.NewConfigInvalidError("scoring thresholds must satisfy 0 < medium < high")
	}
	if c.Scoring.HighThreshold >= c.Scoring.VeryHighThreshold || c.Scoring.VeryHighThreshold > 1 {
		return errors.NewConfigInvalidError("scoring thresholds must satisfy high < very_high <= 1")
	}
	if c.RAG.MinCandidates <= 0 || c.RAG.MaxCandidates < c.RAG.MinCandidates {
		return errors.NewConfigInvalidError("rag candidate bounds must satisfy 0 < min <= max")
	}
	if c.RAG.SimilarityThreshold < 0 || c.RAG.SimilarityThreshold > 1 {
		return errors.NewConfigInvalidError("rag similarity_threshold must be within [0,1]")
	}
	if c.RAG.TopN <= 0 {
		return errors.NewConfigInvalidError("rag top_n must be positive")
	}
	if c.Retry.MaxAttempts <= 0 {
		return errors.NewConfigInvalidError("retry max_attempts must be positive")
	}
	switch c.Retry.Backoff {
	case "fixed", "linear", "exponential":
	default:
		return errors.NewConfigInvalidError("retry backoff must be fixed, linear or exponential")
	}
	if c.Retry.Backoff == "exponential" && c.Retry.Multiplier <= 1 {
		return errors.NewConfigInvalidError("exponential backoff requires multiplier > 1")
	}
	if c.Scheduler.MaxParallelSteps < 0 {
		return errors.NewConfigInvalidError("scheduler max_parallel_steps cannot be negative")
	}
	return nil
}
