package models

// Sub-score weights for the composite priority score. Fixed by design;
// sub-scores themselves are produced by the prioritizer.
const (
	WeightRelevance     = 0.30
	WeightImportance    = 0.25
	WeightTaskAlignment = 0.20
	WeightContext       = 0.15
	WeightFileType      = 0.05
	WeightRecency       = 0.05
)

// PriorityScore is the composite ranking score for a content section,
// with its sub-score breakdown. All values are in [0, 1].
type PriorityScore struct {
	Total         float64 `json:"total"`
	Relevance     float64 `json:"relevance"`
	Importance    float64 `json:"importance"`
	TaskAlignment float64 `json:"task_alignment"`
	Context       float64 `json:"context"`
	FileType      float64 `json:"file_type"`
	Recency       float64 `json:"recency"`
}

// NewPriorityScore combines sub-scores using the fixed weights.
func NewPriorityScore(relevance, importance, taskAlignment, contextScore, fileType, recency float64) PriorityScore {
	return PriorityScore{
		Total: relevance*WeightRelevance +
			importance*WeightImportance +
			taskAlignment*WeightTaskAlignment +
			contextScore*WeightContext +
			fileType*WeightFileType +
			recency*WeightRecency,
		Relevance:     relevance,
		Importance:    importance,
		TaskAlignment: taskAlignment,
		Context:       contextScore,
		FileType:      fileType,
		Recency:       recency,
	}
}
