package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelichko/maestro/internal/agent"
	"github.com/avelichko/maestro/internal/dialogue"
	"github.com/avelichko/maestro/internal/engine"
	"github.com/avelichko/maestro/internal/exitcode"
	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/progress"
	"github.com/avelichko/maestro/internal/prompt"
	"github.com/avelichko/maestro/internal/provider"
	"github.com/avelichko/maestro/internal/scheduler"
)

var (
	runProviderCmd  string
	runProviderArgs []string
	runPlain        bool
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Handle a request end to end",
	Long: `Score the request and act on it: simple requests are answered with a
single provider call, complex ones become an execution plan driven to
completion with live progress output.

The LLM provider is an executable speaking JSON over stdin/stdout,
selected with --provider.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runProviderCmd, "provider", "", "provider executable (required)")
	runCmd.Flags().StringArrayVar(&runProviderArgs, "provider-arg", nil, "extra argument for the provider executable (repeatable)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "disable styled output")
	_ = runCmd.MarkFlagRequired("provider")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := provider.NewExecutableClient(runProviderCmd, runProviderArgs...)
	if err != nil {
		return err
	}
	providers := provider.NewRegistry()
	if err := providers.Register(engine.DefaultProvider, client); err != nil {
		return err
	}
	defer providers.CloseAll()

	runners := scheduler.NewRegistry()
	agent.Register(runners, providers, engine.DefaultProvider)

	opts := []engine.Option{}
	if prompt.IsInteractive() {
		opts = append(opts, engine.WithInputProvider(prompt.Interactive()))
	}

	eng, err := engine.New(cfg, providers, runners, opts...)
	if err != nil {
		return err
	}

	renderer := progress.NewRenderer(progress.Config{
		Writer: cmd.ErrOrStderr(),
		Plain:  runPlain,
	})

	request := strings.Join(args, " ")
	resp, err := eng.Respond(cmd.Context(), request, dialogue.Context{}, renderer.Observe())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resp.Mode == engine.ModeDirect {
		fmt.Fprintln(out, resp.Answer)
		return nil
	}

	renderer.Summary(resp.Execution)
	if answer, ok := resp.Execution.Outputs["report"]; ok {
		fmt.Fprintf(out, "%v\n", answer)
	}

	switch resp.Execution.Plan.State {
	case plan.StateFailed:
		return fmt.Errorf("%w: %s", exitcode.ErrPlanFailed, resp.Execution.Plan.ID)
	case plan.StateCancelled:
		return fmt.Errorf("%w: %s", exitcode.ErrPlanCancelled, resp.Execution.Plan.ID)
	}
	return nil
}
