// Package cmd implements the maestro CLI.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/log"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "maestro",
	Short: "Assistant request orchestration engine",
	Long: `maestro scores incoming assistant requests, answers simple ones
directly and turns complex ones into an execution plan: a dependency
graph of agent steps with retries, runtime modification and progress
reporting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig builds the configuration and installs the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	log.SetDefaultLogger(log.New(logCfg))

	return cfg, nil
}
