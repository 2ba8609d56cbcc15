// Package agent provides the built-in step runners for the core plan
// templates. They keep a plan executable with nothing but an LLM provider;
// hosts embedding the engine register richer runners for filesystem, git
// and other tool-backed agents.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avelichko/maestro/internal/plan"
	"github.com/avelichko/maestro/internal/provider"
	"github.com/avelichko/maestro/internal/rag"
	"github.com/avelichko/maestro/internal/scheduler"
)

// Register installs the built-in runners for the plan templates'
// agent types. providerName selects the LLM client used by the llm and
// code-analysis runners.
func Register(reg *scheduler.Registry, providers *provider.Registry, providerName string) {
	reg.Register(plan.AgentContextSearch, ContextSearchRunner())
	reg.Register(plan.AgentLLM, LLMRunner(providers, providerName))
	reg.Register(plan.AgentCodeAnalysis, AnalysisRunner(providers, providerName))
	reg.Register(plan.AgentReport, ReportRunner())
}

// ContextSearchRunner surfaces the chunks the retrieval pipeline already
// attached to the step input. Retrieval itself happens during planning,
// so this runner only shapes the result for downstream steps.
func ContextSearchRunner() scheduler.StepRunner {
	return scheduler.RunnerFunc(func(_ context.Context, s *plan.Step) (any, error) {
		if chunks, ok := s.Input["chunks"].([]rag.EnrichedChunk); ok {
			return chunks, nil
		}
		return []rag.EnrichedChunk{}, nil
	})
}

// LLMRunner answers the step's request with one provider call, carrying
// any dependency outputs as extra context.
func LLMRunner(providers *provider.Registry, providerName string) scheduler.StepRunner {
	return scheduler.RunnerFunc(func(ctx context.Context, s *plan.Step) (any, error) {
		client, err := providers.Get(providerName)
		if err != nil {
			return nil, err
		}

		prompt := requestFromInput(s)
		if deps := dependencyOutputs(s); deps != "" {
			prompt += "\n\nContext from earlier steps:\n" + deps
		}
		if answer, ok := s.Input["user_input"].(string); ok {
			prompt += "\n\nUser clarification: " + answer
		}

		resp, err := client.Generate(ctx, &provider.GenerateRequest{Prompt: prompt})
		if err != nil {
			return nil, err
		}
		return resp.Content, nil
	})
}

const analysisSystemPrompt = "You are a code analysis agent. Work through the request " +
	"against the provided project context and report concrete findings."

// AnalysisRunner performs the analysis step: the request plus retrieved
// chunks go to the provider as one structured prompt.
func AnalysisRunner(providers *provider.Registry, providerName string) scheduler.StepRunner {
	return scheduler.RunnerFunc(func(ctx context.Context, s *plan.Step) (any, error) {
		client, err := providers.Get(providerName)
		if err != nil {
			return nil, err
		}

		var b strings.Builder
		b.WriteString(requestFromInput(s))

		for _, chunks := range dependencyChunks(s) {
			b.WriteString("\n\n--- ")
			b.WriteString(chunks.FilePath)
			b.WriteString(" ---\n")
			b.WriteString(chunks.Content)
		}

		resp, err := client.Generate(ctx, &provider.GenerateRequest{
			Prompt:       b.String(),
			SystemPrompt: analysisSystemPrompt,
		})
		if err != nil {
			return nil, err
		}
		return resp.Content, nil
	})
}

// ReportRunner assembles the final answer from dependency outputs without
// another model call.
func ReportRunner() scheduler.StepRunner {
	return scheduler.RunnerFunc(func(_ context.Context, s *plan.Step) (any, error) {
		deps, _ := s.Input[scheduler.DependencyOutputsKey].(map[string]any)
		if len(deps) == 0 {
			return "", nil
		}
		if sourceID, ok := s.Input["source_step"].(string); ok {
			if out, ok := deps[sourceID]; ok {
				return fmt.Sprintf("%v", out), nil
			}
		}

		ids := make([]string, 0, len(deps))
		for id := range deps {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var b strings.Builder
		for _, id := range ids {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "%s:\n%v", id, deps[id])
		}
		return b.String(), nil
	})
}

func requestFromInput(s *plan.Step) string {
	for _, key := range []string{"request", "query"} {
		if v, ok := s.Input[key].(string); ok && v != "" {
			return v
		}
	}
	return s.Description
}

func dependencyOutputs(s *plan.Step) string {
	deps, _ := s.Input[scheduler.DependencyOutputsKey].(map[string]any)
	if len(deps) == 0 {
		return ""
	}

	ids := make([]string, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s: %v\n", id, deps[id])
	}
	return b.String()
}

func dependencyChunks(s *plan.Step) []rag.EnrichedChunk {
	deps, _ := s.Input[scheduler.DependencyOutputsKey].(map[string]any)
	for _, out := range deps {
		if chunks, ok := out.([]rag.EnrichedChunk); ok {
			return chunks
		}
	}
	return nil
}
