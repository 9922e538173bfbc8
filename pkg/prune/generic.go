package prune

import (
	"strings"

	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/models"
)

const longLineLimit = 500

// GenericStrategy prunes structure-agnostic content. It handles every
// content type and serves as the fallback when a specialized strategy
// fails validation.
type GenericStrategy struct {
	cfg config.PruningConfig
}

// NewGenericStrategy creates a GenericStrategy.
func NewGenericStrategy(cfg config.PruningConfig) *GenericStrategy {
	return &GenericStrategy{cfg: cfg}
}

func (g *GenericStrategy) Name() string { return "generic" }

func (g *GenericStrategy) CanHandle(models.ContentType) bool { return true }

func (g *GenericStrategy) Priority() int { return 100 }

// EstimateReduction counts removable whitespace and duplicate lines.
func (g *GenericStrategy) EstimateReduction(content string) float64 {
	if content == "" {
		return 0
	}
	compressed, _ := compressWhitespace(content)
	deduped, _ := removeDuplicateLines(compressed)
	return reductionOf(content, deduped)
}

// Prune applies whitespace compression, duplicate-line removal, and, when
// aggressive pruning is allowed and the target is still unmet, long-line
// truncation.
func (g *GenericStrategy) Prune(content string, targetReduction float64) (models.PruningResult, error) {
	pruned := content
	var ops []string
	var warnings []string
	quality := 1.0

	if g.cfg.CompressWhitespace {
		next, changed := compressWhitespace(pruned)
		if changed {
			pruned = next
			ops = append(ops, opCompressWhitespace)
			quality += 0.02
		}
	}

	next, changed := removeDuplicateLines(pruned)
	if changed {
		pruned = next
		ops = append(ops, opRemoveDuplicateLines)
		quality += 0.02
	}

	if g.cfg.AllowAggressive && reductionOf(content, pruned) < targetReduction {
		next, truncated := truncateLongLines(pruned, longLineLimit)
		if truncated > 0 {
			pruned = next
			ops = append(ops, opTruncateLongLines)
			quality -= 0.3
			warnings = append(warnings, "long lines truncated, content may be incomplete")
		}
	}

	if reductionOf(content, pruned) > g.cfg.MaxGenericReduction {
		warnings = append(warnings, "reduction cap exceeded, reverting the risky cuts")
		pruned = content
		ops = nil
		if g.cfg.CompressWhitespace {
			pruned, _ = compressWhitespace(pruned)
			ops = append(ops, opCompressWhitespace)
		}
		quality = 1.0
	}
	if strings.TrimSpace(pruned) == "" && strings.TrimSpace(content) != "" {
		pruned = content
		ops = nil
		warnings = append(warnings, "pruning emptied the content, keeping original")
		quality = 1.0
	}

	return models.NewPruningResult(content, pruned, ops, clamp01(quality), warnings), nil
}

// compressWhitespace strips trailing whitespace and collapses runs of blank
// lines down to one.
func compressWhitespace(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			line = ""
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	result := strings.Join(out, "\n")
	return result, result != content
}

// removeDuplicateLines drops consecutive repeats of the same non-blank line.
func removeDuplicateLines(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	prev := ""
	for i, line := range lines {
		if i > 0 && line == prev && strings.TrimSpace(line) != "" {
			continue
		}
		out = append(out, line)
		prev = line
	}
	result := strings.Join(out, "\n")
	return result, result != content
}

// truncateLongLines hard-cuts lines past limit, marking the cut.
func truncateLongLines(content string, limit int) (string, int) {
	lines := strings.Split(content, "\n")
	truncated := 0
	for i, line := range lines {
		if len(line) > limit {
			lines[i] = cutAtRuneBoundary(line, limit) + "..."
			truncated++
		}
	}
	return strings.Join(lines, "\n"), truncated
}
