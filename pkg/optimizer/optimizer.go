// Package optimizer wires analysis, prioritization, pruning, truncation,
// and caching into the content optimization engine.
package optimizer

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/condense-ai/condense/pkg/analyzer"
	"github.com/condense-ai/condense/pkg/cache"
	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/fingerprint"
	"github.com/condense-ai/condense/pkg/models"
	"github.com/condense-ai/condense/pkg/prioritize"
	"github.com/condense-ai/condense/pkg/prune"
	"github.com/condense-ai/condense/pkg/token"
)

const opNoOptimizationNeeded = "no_optimization_needed"
const opDropLowPriority = "drop_low_priority_sections"

// Engine runs the optimization pipeline. Safe for concurrent use; the
// pipeline itself is stateless and the cache and metrics carry their own
// locks.
type Engine struct {
	cfg      *config.Config
	counter  token.Counter
	store    *cache.Store
	analyzer *analyzer.Analyzer
	ranker   *prioritize.Ranker
	pruner   *prune.Orchestrator
	metrics  *Metrics
}

// New creates an Engine. A nil store disables caching.
func New(cfg *config.Config, counter token.Counter, store *cache.Store) *Engine {
	return &Engine{
		cfg:      cfg,
		counter:  counter,
		store:    store,
		analyzer: analyzer.New(counter),
		ranker:   prioritize.NewRanker(),
		pruner:   prune.NewOrchestrator(cfg.Pruning),
		metrics:  NewMetrics(),
	}
}

// Optimize reduces content toward targetTokens for the given agent role and
// task. It never fails: the worst case returns the original content
// untouched. pathHint, when non-empty, steers content type detection.
func (e *Engine) Optimize(content, role, task string, targetTokens int, pathHint string) models.OptimizationResult {
	start := time.Now()

	if strings.TrimSpace(content) == "" {
		return e.finish(models.OptimizationResult{
			OriginalContent:   content,
			OptimizedContent:  content,
			OperationsApplied: []string{opNoOptimizationNeeded},
			QualityScore:      1.0,
			Warnings:          []string{},
		}, start)
	}

	if targetTokens <= 0 {
		targetTokens = e.cfg.Token.DefaultTargetTokens
	}

	key := fingerprint.Key(content, fingerprint.Params{
		AgentRole:       role,
		TaskDescription: task,
		TargetTokens:    targetTokens,
		Strategy:        e.cfg.Strategy,
	})

	if e.store != nil {
		if hit, ok := e.store.Get(key); ok {
			e.metrics.RecordCacheHit()
			return models.OptimizationResult{
				OriginalContent:     content,
				OptimizedContent:    string(hit.Payload),
				OriginalTokens:      hit.Meta.OriginalTokens,
				OptimizedTokens:     hit.Meta.OptimizedTokens,
				ReductionPercentage: hit.Meta.ReductionPercentage,
				OperationsApplied:   hit.Meta.Operations,
				ProcessingTimeMs:    elapsedMs(start),
				QualityScore:        hit.Meta.QualityScore,
				CacheUsed:           true,
				Warnings:            hit.Meta.Warnings,
			}
		}
		e.metrics.RecordCacheMiss()
	}

	analysis := e.analyzer.Analyze(content, pathHint)
	ct := analysis.ContentType
	originalTokens := e.counter.Count(content, string(ct))

	if originalTokens <= targetTokens {
		return e.finish(models.OptimizationResult{
			OriginalContent:   content,
			OptimizedContent:  content,
			OriginalTokens:    originalTokens,
			OptimizedTokens:   originalTokens,
			OperationsApplied: []string{opNoOptimizationNeeded},
			QualityScore:      1.0,
			Warnings:          []string{},
		}, start)
	}

	targetReduction := 1 - float64(targetTokens)/float64(originalTokens)

	pruned := e.pruner.Prune(content, ct, targetReduction)
	optimized := pruned.PrunedContent
	ops := append([]string{}, pruned.OperationsApplied...)
	warnings := append([]string{}, pruned.Warnings...)
	quality := pruned.QualityScore

	// Pruning alone may not reach the budget; fall back to dropping the
	// least important sections, then to smart truncation.
	if e.counter.Count(optimized, string(ct)) > targetTokens && len(analysis.Sections) > 1 {
		reduced, dropped := e.dropLowPrioritySections(analysis.Sections, role, task, targetTokens)
		if dropped > 0 {
			reprunedTarget := 1 - float64(targetTokens)/float64(e.counter.Count(reduced, string(ct)))
			if reprunedTarget > 0 {
				rp := e.pruner.Prune(reduced, ct, reprunedTarget)
				reduced = rp.PrunedContent
			}
			optimized = reduced
			ops = append(ops, opDropLowPriority)
			warnings = append(warnings, "low-priority sections dropped to meet the budget")
			quality -= 0.1
		}
	}

	if e.counter.Count(optimized, string(ct)) > targetTokens {
		bytesPerToken := float64(len(content)) / float64(originalTokens)
		targetBytes := int(float64(targetTokens) * bytesPerToken)
		truncated, stats := prune.SmartTruncate(optimized, targetBytes, role, task)
		if len(stats.Operations) > 0 {
			optimized = truncated
			ops = append(ops, stats.Operations...)
			warnings = append(warnings, "content truncated to fit the token budget")
			quality -= 0.3
		}
	}

	if strings.TrimSpace(optimized) == "" {
		optimized = content
		ops = append(ops, "restored_original")
		warnings = append(warnings, "optimization emptied the content, original restored")
		quality = 1.0
	}
	if quality < 0 {
		quality = 0
	}

	optimizedTokens := e.counter.Count(optimized, string(ct))
	reductionPct := 0.0
	if originalTokens > 0 {
		reductionPct = float64(originalTokens-optimizedTokens) / float64(originalTokens) * 100
	}

	result := models.OptimizationResult{
		OriginalContent:     content,
		OptimizedContent:    optimized,
		OriginalTokens:      originalTokens,
		OptimizedTokens:     optimizedTokens,
		ReductionPercentage: reductionPct,
		OperationsApplied:   ops,
		QualityScore:        quality,
		Warnings:            warnings,
	}

	if e.store != nil {
		e.store.Set(key, []byte(optimized), models.EntryMetadata{
			OriginalTokens:      originalTokens,
			OptimizedTokens:     optimizedTokens,
			ReductionPercentage: reductionPct,
			Operations:          ops,
			QualityScore:        quality,
			Warnings:            warnings,
		})
	}

	return e.finish(result, start)
}

// dropLowPrioritySections keeps the highest-priority sections that fit the
// token budget and reassembles them in document order. Returns the
// reassembled content and the number of sections dropped.
func (e *Engine) dropLowPrioritySections(sections []models.Section, role, task string, targetTokens int) (string, int) {
	ranked := e.ranker.Rank(sections, role, task)

	type pick struct {
		startLine int
		text      string
	}
	var picks []pick
	used := 0
	dropped := 0
	for _, r := range ranked {
		if used+r.Section.TokenCount > targetTokens && used > 0 {
			dropped++
			continue
		}
		picks = append(picks, pick{r.Section.StartLine, r.Section.Text})
		used += r.Section.TokenCount
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].startLine < picks[j].startLine })
	parts := make([]string, len(picks))
	for i, p := range picks {
		parts[i] = p.text
	}
	return strings.Join(parts, "\n"), dropped
}

// OptimizeFile reads a file and optimizes its content, using the path for
// content type detection.
func (e *Engine) OptimizeFile(path, role, task string, targetTokens int) (models.OptimizationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.OptimizationResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Optimize(string(data), role, task, targetTokens, path), nil
}

// EstimatePotential predicts the reduction fraction pruning could achieve
// without running the pipeline.
func (e *Engine) EstimatePotential(content, pathHint string) float64 {
	ct := analyzer.DetectContentType(content, pathHint)
	return e.pruner.EstimateReduction(content, ct)
}

// Analyze exposes content analysis for inspection tooling.
func (e *Engine) Analyze(content, pathHint string) analyzer.Analysis {
	return e.analyzer.Analyze(content, pathHint)
}

// Metrics returns a snapshot of aggregate engine metrics, including the
// cache hit rate observed by this engine.
func (e *Engine) Metrics() models.EngineMetrics {
	return e.metrics.Snapshot()
}

// CacheStats returns cache counters; zero stats when caching is disabled.
func (e *Engine) CacheStats() models.CacheStats {
	if e.store == nil {
		return models.CacheStats{}
	}
	return e.store.Stats()
}

// CacheInfo returns the diagnostic cache snapshot.
func (e *Engine) CacheInfo() models.CacheInfo {
	if e.store == nil {
		return models.CacheInfo{}
	}
	return e.store.Describe()
}

// ClearCache drops every cached entry.
func (e *Engine) ClearCache() {
	if e.store != nil {
		e.store.Clear()
	}
}

// CleanupExpiredCache removes expired entries and returns the count.
func (e *Engine) CleanupExpiredCache() int {
	if e.store == nil {
		return 0
	}
	return e.store.CleanupExpired()
}

// Close releases the cache's durable tier.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

func (e *Engine) finish(result models.OptimizationResult, start time.Time) models.OptimizationResult {
	result.ProcessingTimeMs = elapsedMs(start)
	e.metrics.RecordOptimization(result)
	return result
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
