package prune

import (
	"regexp"
	"sort"
	"strings"

	"github.com/condense-ai/condense/pkg/models"
)

const truncationMarker = "\n[... content truncated ...]"

// Fraction of the byte budget left for content when a hard cut is needed;
// the rest absorbs the marker and keeps the result safely under target.
const hardCutFraction = 0.8

var (
	signatureLineRe = regexp.MustCompile(`^\s*(func\s|def\s|class\s|function\s|type\s+\w+\s|interface\s)`)
	importLineRe    = regexp.MustCompile(`^\s*(import\s|from\s+\S+\s+import\s|#include\s|package\s|require\()`)
	securityVocabRe = regexp.MustCompile(`(?i)(auth|token|password|secret|crypt|permission|credential|validate|sanitize)`)
	apiVocabRe      = regexp.MustCompile(`(?i)\b(api|endpoint|usage|parameter|returns?|example)\b`)
	listItemRe      = regexp.MustCompile(`^\s*([-*+]|\d+\.)\s`)
)

// SmartTruncate cuts content down to roughly targetBytes while keeping the
// lines the given agent role needs most. It is the last resort after
// pruning; the result may end mid-thought, which the marker makes visible.
func SmartTruncate(content string, targetBytes int, role, task string) (string, models.TruncationStats) {
	stats := models.TruncationStats{
		OriginalSize: len(content),
		Operations:   []string{},
	}
	if targetBytes <= 0 || len(content) <= targetBytes {
		stats.FinalSize = len(content)
		return content, stats
	}

	lines := strings.Split(content, "\n")
	essential := essentialLines(lines, role, task)

	kept := selectWithinBudget(lines, essential, targetBytes)
	result := joinKept(lines, kept)
	stats.Operations = append(stats.Operations, "smart_truncate:"+roleLabel(role))

	if len(result) > targetBytes {
		cut := int(float64(targetBytes) * hardCutFraction)
		if cut < 0 {
			cut = 0
		}
		result = cutAtRuneBoundary(result, cut) + truncationMarker
		stats.Operations = append(stats.Operations, "hard_cut")
	}

	stats.FinalSize = len(result)
	if stats.OriginalSize > 0 {
		stats.ReductionPercentage = float64(stats.OriginalSize-stats.FinalSize) / float64(stats.OriginalSize) * 100
	}
	return result, stats
}

func roleLabel(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "architect", "security", "documenter":
		return role
	default:
		return "default"
	}
}

// essentialLines marks the line indices a role cannot lose.
func essentialLines(lines []string, role, task string) map[int]bool {
	essential := make(map[int]bool)
	taskWords := meaningfulTaskWords(task)

	mark := func(i int) { essential[i] = true }

	switch roleLabel(role) {
	case "architect":
		// Shape over substance: declarations, imports, and the first line
		// of each body sketch the structure.
		for i, line := range lines {
			if importLineRe.MatchString(line) || signatureLineRe.MatchString(line) {
				mark(i)
				if signatureLineRe.MatchString(line) && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
					mark(i + 1)
				}
			}
		}
	case "security":
		for i, line := range lines {
			if importLineRe.MatchString(line) || securityVocabRe.MatchString(line) {
				mark(i)
			}
		}
	case "documenter":
		inFence := false
		for i, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = !inFence
				mark(i)
				continue
			}
			if inFence || docHeaderRe.MatchString(line) || apiVocabRe.MatchString(line) || listItemRe.MatchString(line) {
				mark(i)
			}
		}
	default:
		for i, line := range lines {
			if signatureLineRe.MatchString(line) || importLineRe.MatchString(line) || docHeaderRe.MatchString(line) {
				mark(i)
			}
		}
	}

	if len(taskWords) > 0 {
		for i, line := range lines {
			lower := strings.ToLower(line)
			for _, w := range taskWords {
				if strings.Contains(lower, w) {
					mark(i)
					break
				}
			}
		}
	}
	return essential
}

func meaningfulTaskWords(task string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(task)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if len(w) >= 4 {
			words = append(words, w)
		}
	}
	return words
}

// selectWithinBudget keeps every essential line, then fills leftover budget
// with regular lines taken alternately from the start and end of the
// document so both context edges survive. Essential lines may overshoot
// the budget; the caller's hard cut enforces it.
func selectWithinBudget(lines []string, essential map[int]bool, targetBytes int) map[int]bool {
	kept := make(map[int]bool)
	used := 0

	for i, line := range lines {
		if essential[i] {
			kept[i] = true
			used += len(line) + 1
		}
	}

	var regular []int
	for i := range lines {
		if !kept[i] {
			regular = append(regular, i)
		}
	}

	front, back := 0, len(regular)-1
	fromFront := true
	for front <= back {
		var idx int
		if fromFront {
			idx = regular[front]
			front++
		} else {
			idx = regular[back]
			back--
		}
		fromFront = !fromFront
		cost := len(lines[idx]) + 1
		if used+cost > targetBytes {
			break
		}
		kept[idx] = true
		used += cost
	}
	return kept
}

func joinKept(lines []string, kept map[int]bool) string {
	idx := make([]int, 0, len(kept))
	for i := range kept {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}
