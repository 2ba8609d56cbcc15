package uncertainty

import "regexp"

// fastPathPattern short-circuits scoring for trivial queries. The table is
// checked before any weighted scoring so that clock/weather/greeting style
// requests stay well under the latency budget of a direct answer.
type fastPathPattern struct {
	tag     string
	pattern *regexp.Regexp
	// maxRunes additionally bounds the request length; 0 means unbounded.
	maxRunes int
}

var fastPathPatterns = []fastPathPattern{
	{
		tag:     "fast_path:time",
		pattern: regexp.MustCompile(`(?i)^\s*(который\s+час|сколько\s+(сейчас\s+)?времени|what('| i)?s the time|what time is it)\s*\??\s*$`),
	},
	{
		tag:     "fast_path:date",
		pattern: regexp.MustCompile(`(?i)^\s*(какое\s+сегодня\s+число|какой\s+сегодня\s+день|what('| i)?s (the date|today'?s date))\s*\??\s*$`),
	},
	{
		tag:     "fast_path:weather",
		pattern: regexp.MustCompile(`(?i)(какая\s+(сегодня\s+)?погода|прогноз\s+погоды|weather\s+(today|tomorrow|forecast|like))`),
	},
	{
		tag:     "fast_path:greeting",
		pattern: regexp.MustCompile(`(?i)^\s*(привет|здравствуй(те)?|добрый\s+(день|вечер|утро)|hi|hello|hey|good\s+(morning|afternoon|evening))[\s!.,]*$`),
	},
	{
		tag:      "fast_path:fact",
		pattern:  regexp.MustCompile(`(?i)^\s*(что\s+такое|кто\s+такой|кто\s+такая|what\s+is|who\s+is|define)\s+\S+`),
		maxRunes: 40,
	},
	{
		tag:      "fast_path:short_question",
		pattern:  regexp.MustCompile(`\?\s*$`),
		maxRunes: 16,
	},
}

// matchFastPath returns the tag of the first matching fast-path pattern,
// or "" when none applies.
func matchFastPath(request string) string {
	runes := len([]rune(request))
	for _, fp := range fastPathPatterns {
		if fp.maxRunes > 0 && runes > fp.maxRunes {
			continue
		}
		if fp.pattern.MatchString(request) {
			return fp.tag
		}
	}
	return ""
}
