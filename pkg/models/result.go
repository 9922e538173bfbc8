package models

// PruningResult describes the outcome of one pruning pass over a piece of
// content. It is immutable once constructed; sizes are UTF-8 byte counts.
type PruningResult struct {
	OriginalContent     string   `json:"-"`
	PrunedContent       string   `json:"-"`
	OriginalSize        int      `json:"original_size"`
	PrunedSize          int      `json:"pruned_size"`
	ReductionBytes      int      `json:"reduction_bytes"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	OperationsApplied   []string `json:"operations_applied"`
	QualityScore        float64  `json:"quality_score"`
	Warnings            []string `json:"warnings"`
}

// NewPruningResult builds a PruningResult with derived size metrics.
func NewPruningResult(original, pruned string, operations []string, quality float64, warnings []string) PruningResult {
	originalSize := len(original)
	prunedSize := len(pruned)
	reduction := originalSize - prunedSize
	pct := 0.0
	if originalSize > 0 {
		pct = float64(reduction) / float64(originalSize) * 100
	}
	if operations == nil {
		operations = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return PruningResult{
		OriginalContent:     original,
		PrunedContent:       pruned,
		OriginalSize:        originalSize,
		PrunedSize:          prunedSize,
		ReductionBytes:      reduction,
		ReductionPercentage: pct,
		OperationsApplied:   operations,
		QualityScore:        quality,
		Warnings:            warnings,
	}
}

// OptimizationResult is the complete outcome of one optimize call.
type OptimizationResult struct {
	OriginalContent     string   `json:"-"`
	OptimizedContent    string   `json:"-"`
	OriginalTokens      int      `json:"original_tokens"`
	OptimizedTokens     int      `json:"optimized_tokens"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	OperationsApplied   []string `json:"operations_applied"`
	ProcessingTimeMs    float64  `json:"processing_time_ms"`
	QualityScore        float64  `json:"quality_score"`
	CacheUsed           bool     `json:"cache_used"`
	Warnings            []string `json:"warnings"`
}

// TokensSaved returns the number of tokens removed by optimization.
func (r OptimizationResult) TokensSaved() int {
	return r.OriginalTokens - r.OptimizedTokens
}

// WasSuccessful reports whether any reduction was achieved.
func (r OptimizationResult) WasSuccessful() bool {
	return r.ReductionPercentage > 0
}

// TruncationStats describes a smart-truncation pass.
type TruncationStats struct {
	OriginalSize        int      `json:"original_size"`
	FinalSize           int      `json:"final_size"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	Operations          []string `json:"operations"`
}
