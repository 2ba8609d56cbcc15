// Package uncertainty estimates how much work a request needs (complexity)
// and how confident the system is about its interpretation (uncertainty).
// Scoring is a pure function of its inputs: no I/O, no network calls, so it
// can run on every request without breaking the fast-answer latency goal.
package uncertainty

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avelichko/maestro/internal/config"
	"github.com/avelichko/maestro/internal/dialogue"
)

// Scorer computes uncertainty results. It is stateless and safe for
// concurrent use.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a scorer with the given tuning.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// fastPathScore is the near-zero score assigned to fast-path matches.
const fastPathScore = 0.05

// Score evaluates one request against the dialogue context.
func (s *Scorer) Score(request string, dctx dialogue.Context) Result {
	features := make(map[string]bool)
	var reasons []string

	// 1. Fast path: trivial queries resolve immediately as LOW.
	if tag := matchFastPath(request); tag != "" {
		features[tag] = true
		return Result{
			Score:            fastPathScore,
			Complexity:       fastPathScore,
			ComplexityLevel:  ComplexityLow,
			SuggestedActions: suggestedActions(ComplexityLow),
			Reasoning:        fmt.Sprintf("fast-path pattern %s matched; treated as trivial query", tag),
			DetectedFeatures: features,
		}
	}

	lower := strings.ToLower(request)
	runes := len([]rune(request))

	// 2. Weighted complexity sum. An empty request simply contributes
	// nothing on every axis and falls out as LOW.
	var sum float64

	keywordScore := 0.0
	for kw, w := range actionKeywords {
		if strings.Contains(lower, kw) {
			keywordScore += w
			features["keyword:"+kw] = true
		}
	}
	if keywordScore > actionKeywordCap {
		keywordScore = actionKeywordCap
	}
	if keywordScore > 0 {
		reasons = append(reasons, fmt.Sprintf("action keywords contributed %.2f", keywordScore))
	}
	sum += keywordScore

	lengthScore, bucket := lengthBucketWeight(runes)
	features["length:"+bucket] = true
	if lengthScore > 0 {
		reasons = append(reasons, fmt.Sprintf("request length bucket %q contributed %.2f", bucket, lengthScore))
	}
	sum += lengthScore

	questionMarks := strings.Count(request, "?")
	if questionMarks > 0 {
		qScore := 0.05 * float64(questionMarks)
		if qScore > 0.15 {
			qScore = 0.15
		}
		features["question_marks"] = true
		reasons = append(reasons, fmt.Sprintf("%d question mark(s) contributed %.2f", questionMarks, qScore))
		sum += qScore
	}

	nounScore := 0.0
	for _, noun := range projectNouns {
		if strings.Contains(lower, noun) {
			nounScore += projectNounWeight
		}
	}
	if nounScore > projectNounCap {
		nounScore = projectNounCap
	}
	if nounScore > 0 {
		features["project_nouns"] = true
		reasons = append(reasons, fmt.Sprintf("project-related nouns contributed %.2f (capped)", nounScore))
	}
	sum += nounScore

	techScore := 0.0
	for _, term := range technicalTerms {
		if strings.Contains(lower, term) {
			techScore += technicalTermWeight
		}
	}
	if techScore > technicalTermCap {
		techScore = technicalTermCap
	}
	if techScore > 0 {
		features["technical_terms"] = true
		reasons = append(reasons, fmt.Sprintf("technical terms contributed %.2f (capped)", techScore))
	}
	sum += techScore

	if !dctx.Empty() {
		features["history_present"] = true
		reasons = append(reasons, fmt.Sprintf("non-empty dialogue history contributed %.2f", s.cfg.HistoryPenalty))
		sum += s.cfg.HistoryPenalty
	}

	// 3. Clamp and bucket. Ties resolve to the lower level (strict <).
	complexity := clamp01(sum)
	level := s.levelFor(complexity)
	reasons = append(reasons, fmt.Sprintf("complexity %.2f mapped to %s", complexity, level))

	// 4. Uncertainty is a second number: complexity plus independent
	// interpretation-confidence adjustments.
	score := complexity

	if runes > 0 && runes < s.cfg.ShortRequestRunes {
		features["short_request"] = true
		reasons = append(reasons, fmt.Sprintf("very short request raised uncertainty by %.2f", s.cfg.ShortRequestPenalty))
		score += s.cfg.ShortRequestPenalty
	}

	if questionMarks == 0 && complexity < s.cfg.HighThreshold {
		features["no_question_mark"] = true
		reasons = append(reasons, fmt.Sprintf("no question mark below high threshold raised uncertainty by %.2f", s.cfg.NoQuestionPenalty))
		score += s.cfg.NoQuestionPenalty
	}

	if groups := matchedTopicGroups(lower); len(groups) >= 2 {
		features["multi_topic"] = true
		reasons = append(reasons, fmt.Sprintf("keywords from unrelated topics (%s) raised uncertainty by %.2f",
			strings.Join(groups, ", "), s.cfg.MultiTopicPenalty))
		score += s.cfg.MultiTopicPenalty
	}

	return Result{
		Score:            clamp01(score),
		Complexity:       complexity,
		ComplexityLevel:  level,
		SuggestedActions: suggestedActions(level),
		Reasoning:        strings.Join(reasons, "; "),
		DetectedFeatures: features,
	}
}

// levelFor maps a complexity score to its bucket using strict thresholds.
func (s *Scorer) levelFor(complexity float64) ComplexityLevel {
	switch {
	case complexity < s.cfg.MediumThreshold:
		return ComplexityLow
	case complexity < s.cfg.HighThreshold:
		return ComplexityMedium
	case complexity < s.cfg.VeryHighThreshold:
		return ComplexityHigh
	default:
		return ComplexityVeryHigh
	}
}

// suggestedActions is the fixed action lookup per complexity level.
func suggestedActions(level ComplexityLevel) []string {
	switch level {
	case ComplexityLow:
		return []string{ActionDirectAnswer}
	case ComplexityMedium:
		return []string{ActionContextualAnswer, ActionClarifyIfNeeded}
	case ComplexityHigh:
		return []string{ActionBuildPlan, ActionSearchContext, ActionUseOrchestration}
	default:
		return []string{ActionBuildPlan, ActionSearchContext, ActionUseOrchestration, ActionAskClarification}
	}
}

// matchedTopicGroups returns the names of topic groups with at least one
// keyword present, sorted for a deterministic reasoning trace.
func matchedTopicGroups(lower string) []string {
	var matched []string
	for group, keywords := range topicGroups {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, group)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
