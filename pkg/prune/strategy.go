// Package prune reduces content size through staged, validated pruning
// strategies and a last-resort smart truncation pass.
package prune

import (
	"unicode/utf8"

	"github.com/condense-ai/condense/pkg/models"
)

// Strategy is one pruning approach. Prune never mutates its input; failure
// to reach the target reduction is not an error, the orchestrator scores
// whatever was achieved.
type Strategy interface {
	// Name identifies the strategy in operation logs.
	Name() string
	// CanHandle reports whether the strategy applies to the content type.
	CanHandle(ct models.ContentType) bool
	// EstimateReduction predicts the achievable reduction fraction without
	// doing the work.
	EstimateReduction(content string) float64
	// Prune reduces content, aiming for targetReduction in (0, 1).
	Prune(content string, targetReduction float64) (models.PruningResult, error)
	// Priority orders candidate strategies; lower runs first.
	Priority() int
}

// Operation names shared across strategies. The orchestrator treats the
// aggressive set as quality-risky when scoring results.
const (
	opRemoveDebug          = "remove_debug_statements"
	opCompressWhitespace   = "compress_whitespace"
	opRemoveComments       = "remove_comments"
	opSummarizeDocstrings  = "summarize_docstrings"
	opAggressiveStrip      = "aggressive_strip"
	opTruncateLongLines    = "truncate_long_lines"
	opRemoveDuplicateLines = "remove_duplicate_lines"
	opDeduplicateExamples  = "deduplicate_examples"
	opSummarizeSections    = "summarize_sections"
)

var aggressiveOps = map[string]bool{
	opAggressiveStrip:   true,
	opTruncateLongLines: true,
}

func countOps(ops []string) (safe, aggressive int) {
	for _, op := range ops {
		if aggressiveOps[op] {
			aggressive++
		} else {
			safe++
		}
	}
	return safe, aggressive
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

// cutAtRuneBoundary truncates s to at most n bytes without splitting a
// multi-byte rune.
func cutAtRuneBoundary(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func reductionOf(original, pruned string) float64 {
	if len(original) == 0 {
		return 0
	}
	return float64(len(original)-len(pruned)) / float64(len(original))
}
