package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelichko/maestro/internal/dialogue"
	"github.com/avelichko/maestro/internal/engine"
	"github.com/avelichko/maestro/internal/provider"
	"github.com/avelichko/maestro/internal/scheduler"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request>",
	Short: "Score a request without executing anything",
	Long: `Score a request and print its complexity and uncertainty estimate,
the suggested actions and the heuristics that fired. Nothing is executed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, provider.NewRegistry(), scheduler.NewRegistry())
	if err != nil {
		return err
	}

	request := strings.Join(args, " ")
	res := eng.AnalyzeUncertainty(request, dialogue.Context{})

	if analyzeJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "complexity:  %.2f (%s)\n", res.Complexity, res.ComplexityLevel)
	fmt.Fprintf(out, "uncertainty: %.2f\n", res.Score)
	fmt.Fprintf(out, "actions:     %s\n", strings.Join(res.SuggestedActions, ", "))
	if res.Reasoning != "" {
		fmt.Fprintf(out, "reasoning:   %s\n", res.Reasoning)
	}
	return nil
}
