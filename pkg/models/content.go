package models

// ContentType classifies input content for strategy selection.
type ContentType string

const (
	ContentCode          ContentType = "code"
	ContentDocumentation ContentType = "documentation"
	ContentConfig        ContentType = "config"
	ContentData          ContentType = "data"
	ContentMarkup        ContentType = "markup"
	ContentUnknown       ContentType = "unknown"
)

// Section is a named, scored slice of the input produced by content analysis.
type Section struct {
	Name            string  `json:"name"`
	Text            string  `json:"text"`
	StartLine       int     `json:"start_line"`
	EndLine         int     `json:"end_line"`
	TokenCount      int     `json:"token_count"`
	ImportanceScore float64 `json:"importance_score"`
	ComplexityScore float64 `json:"complexity_score"`
}
