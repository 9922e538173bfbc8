package optimizer

import (
	"sync"

	"github.com/condense-ai/condense/pkg/models"
)

// Metrics aggregates engine outcomes across the process lifetime. It has
// its own lock so metric updates never contend with cache operations.
type Metrics struct {
	mu sync.Mutex

	optimizations   int64
	tokensSaved     int64
	reductionSum    float64
	processingMsSum float64
	qualitySum      float64
	cacheHits       int64
	cacheMisses     int64
}

// NewMetrics creates a Metrics aggregate.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordOptimization folds one completed optimization into the aggregate.
func (m *Metrics) RecordOptimization(result models.OptimizationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.optimizations++
	m.tokensSaved += int64(result.TokensSaved())
	m.reductionSum += result.ReductionPercentage
	m.processingMsSum += result.ProcessingTimeMs
	m.qualitySum += result.QualityScore
}

// RecordCacheHit counts a fingerprint lookup that was served from cache.
func (m *Metrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// RecordCacheMiss counts a fingerprint lookup that required real work.
func (m *Metrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// Snapshot returns the aggregate as averages.
func (m *Metrics) Snapshot() models.EngineMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := models.EngineMetrics{
		OptimizationsCount:    m.optimizations,
		TotalTokensSaved:      m.tokensSaved,
		TotalProcessingTimeMs: m.processingMsSum,
	}
	if m.optimizations > 0 {
		n := float64(m.optimizations)
		snap.AverageReductionPercentage = m.reductionSum / n
		snap.AverageProcessingTimeMs = m.processingMsSum / n
		snap.AverageQualityScore = m.qualitySum / n
	}
	if lookups := m.cacheHits + m.cacheMisses; lookups > 0 {
		snap.CacheHitRate = float64(m.cacheHits) / float64(lookups) * 100
	}
	return snap
}
