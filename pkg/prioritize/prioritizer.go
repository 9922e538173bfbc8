// Package prioritize ranks content sections by how much an agent in a
// given role, working on a given task, needs them.
package prioritize

import (
	"sort"
	"strings"

	"github.com/condense-ai/condense/pkg/models"
)

// roleKeywords biases relevance per agent role. Unknown roles fall back to
// neutral scoring.
var roleKeywords = map[string][]string{
	"architect":   {"interface", "struct", "class", "design", "module", "import", "package", "api", "schema"},
	"coder":       {"func", "def", "function", "return", "implement", "logic", "algorithm", "method"},
	"tester":      {"test", "assert", "mock", "expect", "fixture", "case", "verify", "coverage"},
	"security":    {"auth", "token", "password", "secret", "crypt", "permission", "validate", "sanitize", "credential"},
	"documenter":  {"readme", "usage", "example", "guide", "api", "reference", "install", "overview"},
	"performance": {"cache", "benchmark", "latency", "memory", "alloc", "concurrent", "pool", "optimize"},
}

// Ranked pairs a section with its computed priority.
type Ranked struct {
	Section models.Section
	Score   models.PriorityScore
}

// Ranker orders sections by priority for a role and task.
type Ranker struct{}

// NewRanker creates a Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank scores every section and returns them ordered highest priority
// first. Ties break on section order so ranking is deterministic.
func (r *Ranker) Rank(sections []models.Section, role, task string) []Ranked {
	ranked := make([]Ranked, len(sections))
	for i, s := range sections {
		ranked[i] = Ranked{Section: s, Score: r.score(s, role, task)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})
	return ranked
}

func (r *Ranker) score(s models.Section, role, task string) models.PriorityScore {
	lower := strings.ToLower(s.Text)
	lowerName := strings.ToLower(s.Name)

	relevance := keywordDensity(lower, roleKeywords[strings.ToLower(role)])
	taskAlignment := taskOverlap(lower, lowerName, task)
	contextScore := clamp01(0.5 + s.ComplexityScore/2)

	// File type and recency have no signal for a single in-memory blob;
	// they stay neutral so the weight model keeps its shape.
	return models.NewPriorityScore(
		relevance,
		s.ImportanceScore,
		taskAlignment,
		contextScore,
		0.5,
		0.5,
	)
}

// keywordDensity scores 0.5 neutral plus a bonus per matched role keyword.
func keywordDensity(lowerText string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.5
	}
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			matched++
		}
	}
	return clamp01(0.5 + 0.1*float64(matched))
}

// taskOverlap scores how many meaningful task words appear in the section
// text or its name.
func taskOverlap(lowerText, lowerName, task string) float64 {
	words := meaningfulWords(task)
	if len(words) == 0 {
		return 0.5
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(lowerText, w) || strings.Contains(lowerName, w) {
			matched++
		}
	}
	return clamp01(0.3 + 0.7*float64(matched)/float64(len(words)))
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "for": true, "with": true, "on": true, "is": true,
	"this": true, "that": true, "all": true, "any": true, "by": true,
}

func meaningfulWords(text string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if len(w) < 3 || stopWords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
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
