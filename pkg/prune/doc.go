package prune

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/models"
)

var (
	docHeaderRe   = regexp.MustCompile(`^#{1,6}\s+`)
	fencedBlockRe = regexp.MustCompile("(?s)```[^\n]*\n.*?```")
)

// Sections longer than this many paragraphs get summarized.
const summarizeParagraphThreshold = 6

// Fenced examples at or above this token-set similarity are duplicates.
const duplicateExampleSimilarity = 0.8

// DocStrategy prunes markdown-style documentation. Headers are load-bearing
// structure and always survive; the cuts come from duplicate examples,
// whitespace, and over-long section bodies.
type DocStrategy struct {
	cfg config.PruningConfig
}

// NewDocStrategy creates a DocStrategy.
func NewDocStrategy(cfg config.PruningConfig) *DocStrategy {
	return &DocStrategy{cfg: cfg}
}

func (d *DocStrategy) Name() string { return "documentation" }

func (d *DocStrategy) CanHandle(ct models.ContentType) bool {
	return ct == models.ContentDocumentation || ct == models.ContentMarkup
}

func (d *DocStrategy) Priority() int { return 20 }

func (d *DocStrategy) EstimateReduction(content string) float64 {
	if content == "" {
		return 0
	}
	pruned, _ := compressWhitespace(content)
	pruned, _ = dedupeFencedExamples(pruned)
	return reductionOf(content, pruned)
}

func (d *DocStrategy) Prune(content string, targetReduction float64) (models.PruningResult, error) {
	pruned := content
	var ops []string
	var warnings []string
	quality := 1.0

	met := func() bool { return reductionOf(content, pruned) >= targetReduction }

	if d.cfg.CompressWhitespace {
		next, changed := compressWhitespace(pruned)
		if changed {
			pruned = next
			ops = append(ops, opCompressWhitespace)
			quality += 0.02
		}
	}

	if !met() {
		next, removed := dedupeFencedExamples(pruned)
		if removed > 0 {
			pruned = next
			ops = append(ops, opDeduplicateExamples)
			quality += 0.02
		}
	}

	if d.cfg.SummarizeDocstrings && !met() {
		next, summarized := summarizeLongSections(pruned)
		if summarized > 0 {
			pruned = next
			ops = append(ops, opSummarizeSections)
			quality -= 0.1
			warnings = append(warnings, fmt.Sprintf("%d long sections condensed", summarized))
		}
	}

	if d.cfg.AllowAggressive && !met() {
		next, truncated := truncateLongLines(pruned, longLineLimit)
		if truncated > 0 {
			pruned = next
			ops = append(ops, opTruncateLongLines)
			quality -= 0.3
			warnings = append(warnings, "long lines truncated, content may be incomplete")
		}
	}

	if problem := d.validate(content, pruned); problem != "" {
		warnings = append(warnings, problem+", falling back to safe operations")
		pruned = content
		ops = nil
		if d.cfg.CompressWhitespace {
			pruned, _ = compressWhitespace(pruned)
			ops = append(ops, opCompressWhitespace)
		}
		quality = 1.0
	}

	quality *= headerPreservation(content, pruned)
	return models.NewPruningResult(content, pruned, ops, clamp01(quality), warnings), nil
}

func (d *DocStrategy) validate(original, pruned string) string {
	if strings.TrimSpace(pruned) == "" && strings.TrimSpace(original) != "" {
		return "pruning emptied the content"
	}
	if reductionOf(original, pruned) > d.cfg.MaxGenericReduction {
		return "reduction exceeds the cap"
	}
	return ""
}

func countHeaders(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if docHeaderRe.MatchString(line) {
			n++
		}
	}
	return n
}

func headerPreservation(original, pruned string) float64 {
	orig := countHeaders(original)
	if orig == 0 {
		return 1.0
	}
	ratio := float64(countHeaders(pruned)) / float64(orig)
	if ratio > 1 {
		ratio = 1
	}
	return 0.8 + 0.2*ratio
}

// dedupeFencedExamples removes fenced code blocks that are near-duplicates
// of an earlier block, keeping the first occurrence.
func dedupeFencedExamples(content string) (string, int) {
	blocks := fencedBlockRe.FindAllStringIndex(content, -1)
	if len(blocks) < 2 {
		return content, 0
	}

	var kept []map[string]bool
	removed := 0
	var b strings.Builder
	last := 0
	for _, loc := range blocks {
		block := content[loc[0]:loc[1]]
		tokens := tokenSet(block)
		duplicate := false
		for _, prior := range kept {
			if jaccard(tokens, prior) >= duplicateExampleSimilarity {
				duplicate = true
				break
			}
		}
		b.WriteString(content[last:loc[0]])
		if duplicate {
			removed++
		} else {
			kept = append(kept, tokens)
			b.WriteString(block)
		}
		last = loc[1]
	}
	b.WriteString(content[last:])
	if removed == 0 {
		return content, 0
	}
	return b.String(), removed
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// sectionKeepRe marks paragraphs that survive section summarization even in
// the middle of a long section.
var sectionKeepRe = regexp.MustCompile(`(?i)\b(api|important|critical|security|warning|deprecated)\b`)

// summarizeLongSections keeps the first paragraph, keyword-bearing middle
// paragraphs, and the last paragraph of over-long header sections, marking
// the cut.
func summarizeLongSections(content string) (string, int) {
	lines := strings.Split(content, "\n")
	var out []string
	summarized := 0

	flush := func(section []string) {
		paragraphs := splitParagraphs(section)
		if len(paragraphs) <= summarizeParagraphThreshold {
			out = append(out, section...)
			return
		}
		condensed := 0
		out = append(out, paragraphs[0]...)
		for _, p := range paragraphs[1 : len(paragraphs)-1] {
			if sectionKeepRe.MatchString(strings.Join(p, "\n")) {
				out = append(out, "")
				out = append(out, p...)
				continue
			}
			condensed++
		}
		out = append(out, "",
			fmt.Sprintf("*[Summary: %d paragraphs condensed]*", condensed), "")
		out = append(out, paragraphs[len(paragraphs)-1]...)
		summarized++
	}

	start := 0
	for i, line := range lines {
		if docHeaderRe.MatchString(line) && i > start {
			flush(lines[start:i])
			start = i
		}
	}
	flush(lines[start:])
	return strings.Join(out, "\n"), summarized
}

// splitParagraphs groups a section's lines into blank-line-separated
// paragraphs; the header line stays attached to the first paragraph.
func splitParagraphs(section []string) [][]string {
	var paragraphs [][]string
	var current []string
	for _, line := range section {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	return paragraphs
}
