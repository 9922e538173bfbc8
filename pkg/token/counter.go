// Package token estimates token counts for content headed to an
// LLM-bounded consumer.
package token

import "github.com/condense-ai/condense/pkg/models"

// Counter counts tokens in text. Implementations must be deterministic for
// identical input; the optimizer treats the count as ground truth for
// reduction-target math.
type Counter interface {
	Count(text string, typeHint string) int
}

// charsPerToken are per-content-type density estimates. Code is more
// token-dense than prose; markup is denser still.
var charsPerToken = map[string]float64{
	string(models.ContentCode):          3.5,
	string(models.ContentDocumentation): 4.0,
	string(models.ContentConfig):        3.0,
	string(models.ContentData):          3.0,
	string(models.ContentMarkup):        2.5,
}

const defaultCharsPerToken = 4.0

// Estimator is a character-ratio token counter. It needs no model files or
// network access and is stable across runs, which is what the cache
// fingerprint requires.
type Estimator struct{}

// NewEstimator creates an Estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Count estimates the token count of text for the given content type hint.
func (e *Estimator) Count(text string, typeHint string) int {
	if text == "" {
		return 0
	}
	ratio, ok := charsPerToken[typeHint]
	if !ok {
		ratio = defaultCharsPerToken
	}
	return int(float64(len(text))/ratio) + 1
}
