package models

import "time"

// EntryMetadata is the optimization outcome stored alongside a cached payload.
// It is JSON-serialized into the durable tier.
type EntryMetadata struct {
	OriginalTokens      int      `json:"original_tokens"`
	OptimizedTokens     int      `json:"optimized_tokens"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	Operations          []string `json:"operations"`
	QualityScore        float64  `json:"quality_score"`
	Warnings            []string `json:"warnings"`
}

// CacheStats reports cache performance counters. Recomputed incrementally on
// every mutating operation; never persisted.
type CacheStats struct {
	TotalEntries            int     `json:"total_entries"`
	TotalSizeBytes          int64   `json:"total_size_bytes"`
	HitCount                int64   `json:"hit_count"`
	MissCount               int64   `json:"miss_count"`
	EvictionCount           int64   `json:"eviction_count"`
	CompressionSavingsBytes int64   `json:"compression_savings_bytes"`
	AverageAccessTimeMs     float64 `json:"average_access_time_ms"`
	HitRate                 float64 `json:"hit_rate"`
}

// CacheEntryInfo is a diagnostic view of a single cache entry.
type CacheEntryInfo struct {
	Key              string    `json:"key"`
	SizeBytes        int64     `json:"size_bytes"`
	CreatedAt        time.Time `json:"created_at"`
	AccessCount      int64     `json:"access_count"`
	CompressionRatio float64   `json:"compression_ratio"`
}

// CacheInfo is a diagnostic snapshot: top entries by access count plus
// size utilization against the configured byte budget.
type CacheInfo struct {
	Stats              CacheStats       `json:"stats"`
	TopEntries         []CacheEntryInfo `json:"top_entries"`
	UtilizationPercent float64          `json:"utilization_percent"`
	AverageEntrySize   int64            `json:"average_entry_size"`
}

// EngineMetrics aggregates optimizer performance across a process lifetime.
type EngineMetrics struct {
	OptimizationsCount         int64   `json:"optimizations_count"`
	TotalTokensSaved           int64   `json:"total_tokens_saved"`
	AverageReductionPercentage float64 `json:"average_reduction_percentage"`
	TotalProcessingTimeMs      float64 `json:"total_processing_time_ms"`
	AverageProcessingTimeMs    float64 `json:"average_processing_time_ms"`
	AverageQualityScore        float64 `json:"average_quality_score"`
	CacheHitRate               float64 `json:"cache_hit_rate"`
}
