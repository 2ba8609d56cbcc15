package uncertainty

// Keyword weights are substring matches against the lowercased request.
// Russian entries are stems so that inflected forms match
// ("проанализируй", "проанализировать" → "анализ").
var actionKeywords = map[string]float64{
	// technical/action verbs carry the most weight
	"анализ":        0.30,
	"analy":         0.30,
	"рефактор":      0.30,
	"refactor":      0.30,
	"оптимизир":     0.30,
	"optimiz":       0.30,
	"спроектир":     0.30,
	"design":        0.25,
	"мигрир":        0.30,
	"migrat":        0.30,
	"исправ":        0.25,
	"почини":        0.25,
	"fix":           0.25,
	"реализ":        0.25,
	"implement":     0.25,
	"интегрир":      0.25,
	"integrat":      0.25,
	"создай":        0.20,
	"напиши":        0.20,
	"create":        0.20,
	"write":         0.20,
	"найди":         0.20,
	"find":          0.20,
	"провер":        0.20,
	"review":        0.20,
	"настрой":       0.20,
	"configure":     0.20,
	"перенеси":      0.20,
	"улучши":        0.20,
	"improve":       0.20,

	// explanatory verbs carry less
	"объясни": 0.10,
	"explain": 0.10,
	"расскаж": 0.08,
	"describe": 0.08,
	"покажи":  0.05,
	"show":    0.05,
}

// actionKeywordCap bounds the total action-verb contribution so stacking
// many verbs does not dominate length and noun signals.
const actionKeywordCap = 0.5

// projectNouns signal that the request is about the codebase/project.
var projectNouns = []string{
	"архитектур", "architecture",
	"проект", "project",
	"код", "code",
	"файл", "file",
	"модул", "module",
	"класс", "class",
	"функци", "function",
	"репозитор", "repositor",
	"codebase",
	"тест", "test",
	"зависимост", "dependenc",
}

const projectNounWeight = 0.10
const projectNounCap = 0.20

// technicalTerms signal domain depth beyond the project itself.
var technicalTerms = []string{
	"api", "база данных", "database", "сервер", "server",
	"docker", "kubernetes", "алгоритм", "algorithm",
	"производительност", "performance", "память", "memory",
	"поток", "thread", "concurren", "кэш", "cache",
	"сеть", "network", "безопасност", "security",
}

const technicalTermWeight = 0.05
const technicalTermCap = 0.15

// topicGroups are unrelated areas; keywords firing across several groups
// suggest the request mixes concerns and its interpretation is less certain.
var topicGroups = map[string][]string{
	"frontend": {"ui", "интерфейс", "фронтенд", "frontend", "css", "верстк", "react", "компонент"},
	"backend":  {"бэкенд", "backend", "api", "сервер", "server", "endpoint"},
	"data":     {"база данных", "database", "sql", "миграци", "schema", "схем"},
	"infra":    {"docker", "kubernetes", "деплой", "deploy", "ci", "pipeline", "инфраструктур"},
	"docs":     {"документаци", "documentation", "readme", "changelog"},
}

// lengthBuckets maps request length (in runes) to a flat contribution.
func lengthBucketWeight(runes int) (float64, string) {
	switch {
	case runes < 20:
		return 0.0, "very_short"
	case runes < 80:
		return 0.05, "short"
	case runes < 200:
		return 0.10, "medium"
	default:
		return 0.20, "long"
	}
}
