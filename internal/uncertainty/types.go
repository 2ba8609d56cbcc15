package uncertainty

// ComplexityLevel is the coarse work-estimate bucket driving the execution
// strategy: direct answer, lightweight plan, or fully-enriched plan.
type ComplexityLevel string

const (
	ComplexityLow      ComplexityLevel = "LOW"
	ComplexityMedium   ComplexityLevel = "MEDIUM"
	ComplexityHigh     ComplexityLevel = "HIGH"
	ComplexityVeryHigh ComplexityLevel = "VERY_HIGH"
)

// Action tags suggested to the caller per complexity level.
const (
	ActionDirectAnswer     = "direct_answer"
	ActionContextualAnswer = "contextual_answer"
	ActionClarifyIfNeeded  = "clarify_if_needed"
	ActionBuildPlan        = "build_plan"
	ActionSearchContext    = "search_context"
	ActionUseOrchestration = "use_orchestration"
	ActionAskClarification = "ask_clarification"
)

// Result is the immutable outcome of scoring one request. It is produced
// once per request and never mutated afterwards.
type Result struct {
	// Score is the uncertainty estimate in [0,1]: how unsure the system is
	// that a direct/simple response suffices. Inverse of confidence.
	Score float64 `json:"score"`

	// Complexity is the clamped weighted-sum work estimate in [0,1].
	// Correlated with Score but intentionally a separate number:
	// complexity estimates how much work is needed, Score how confident
	// the interpretation is.
	Complexity float64 `json:"complexity"`

	// ComplexityLevel buckets Complexity via the configured cut points.
	ComplexityLevel ComplexityLevel `json:"complexity_level"`

	// SuggestedActions is the ordered action list for the caller.
	SuggestedActions []string `json:"suggested_actions"`

	// Reasoning is a human-readable trace of which rules fired.
	Reasoning string `json:"reasoning"`

	// DetectedFeatures is the set of heuristic tags that fired.
	DetectedFeatures map[string]bool `json:"detected_features"`
}

// HasFeature reports whether the given heuristic tag fired.
func (r Result) HasFeature(tag string) bool {
	return r.DetectedFeatures[tag]
}

// NeedsPlan reports whether the request should go through the plan builder
// instead of a direct answer.
func (r Result) NeedsPlan() bool {
	return r.ComplexityLevel != ComplexityLow
}

// NeedsContextSearch reports whether planning should run the retrieval
// pipeline first.
func (r Result) NeedsContextSearch() bool {
	return r.ComplexityLevel == ComplexityHigh || r.ComplexityLevel == ComplexityVeryHigh
}
