package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
rag:
  similarity_threshold: 0.8
  top_n: 3
retry:
  max_attempts: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, 3, cfg.RAG.TopN)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	// untouched keys keep defaults
	assert.Equal(t, 50, cfg.RAG.MaxCandidates)
	assert.Equal(t, "exponential", cfg.Retry.Backoff)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("rag: ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "medium above high",
			mutate:  func(c *Config) { c.Scoring.MediumThreshold = 0.9 },
			wantErr: true,
		},
		{
			name:    "very high above one",
			mutate:  func(c *Config) { c.Scoring.VeryHighThreshold = 1.2 },
			wantErr: true,
		},
		{
			name:    "candidate bounds inverted",
			mutate:  func(c *Config) { c.RAG.MinCandidates = 60 },
			wantErr: true,
		},
		{
			name:    "similarity out of range",
			mutate:  func(c *Config) { c.RAG.SimilarityThreshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:    "unknown backoff",
			mutate:  func(c *Config) { c.Retry.Backoff = "jittered" },
			wantErr: true,
		},
		{
			name:    "exponential multiplier too small",
			mutate:  func(c *Config) { c.Retry.Multiplier = 1.0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "maestro.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  max_parallel_steps: 8\n"), 0o644))

		cfg, err := LoadOrDefault(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Scheduler.MaxParallelSteps)
	})
}
