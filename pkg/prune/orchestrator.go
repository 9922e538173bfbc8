package prune

import (
	"log"
	"sort"

	"github.com/condense-ai/condense/pkg/config"
	"github.com/condense-ai/condense/pkg/models"
)

// Orchestrator dispatches content to candidate strategies, scores their
// results, and returns the best one. It never fails: when every strategy
// errors out the original content comes back untouched with a warning.
type Orchestrator struct {
	strategies []Strategy
}

// NewOrchestrator creates an Orchestrator with the code, documentation, and
// generic strategies configured from cfg.
func NewOrchestrator(cfg config.PruningConfig) *Orchestrator {
	return &Orchestrator{
		strategies: []Strategy{
			NewCodeStrategy(cfg),
			NewDocStrategy(cfg),
			NewGenericStrategy(cfg),
		},
	}
}

// candidates returns the strategies applicable to a content type, ordered
// by priority. The generic strategy handles everything, so the list is
// never empty.
func (o *Orchestrator) candidates(ct models.ContentType) []Strategy {
	var out []Strategy
	for _, s := range o.strategies {
		if s.CanHandle(ct) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

// EstimateReduction predicts the best achievable reduction fraction across
// the applicable strategies without pruning anything.
func (o *Orchestrator) EstimateReduction(content string, ct models.ContentType) float64 {
	best := 0.0
	for _, s := range o.candidates(ct) {
		if est := s.EstimateReduction(content); est > best {
			best = est
		}
	}
	return best
}

// Prune runs every applicable strategy and picks the highest-scoring
// result.
func (o *Orchestrator) Prune(content string, ct models.ContentType, targetReduction float64) models.PruningResult {
	var best models.PruningResult
	bestScore := -1.0

	for _, s := range o.candidates(ct) {
		result, err := s.Prune(content, targetReduction)
		if err != nil {
			log.Printf("prune: strategy %s: %v", s.Name(), err)
			continue
		}
		if score := scoreResult(result, targetReduction); score > bestScore {
			best = result
			bestScore = score
		}
	}

	if bestScore >= 0 {
		return best
	}

	// Every strategy errored. One more try with the generic strategy at a
	// minimal target, then fail open.
	generic := o.strategies[len(o.strategies)-1]
	fallbackTarget := targetReduction
	if fallbackTarget > 0.1 {
		fallbackTarget = 0.1
	}
	if result, err := generic.Prune(content, fallbackTarget); err == nil {
		return result
	}

	return models.NewPruningResult(content, content, nil, 1.0,
		[]string{"all pruning strategies failed, content returned unchanged"})
}

// scoreResult ranks a pruning result. Quality dominates; hitting the
// target earns a bonus while a shortfall costs proportionally, and
// warnings and aggressive operations discount the score.
func scoreResult(r models.PruningResult, targetReduction float64) float64 {
	score := r.QualityScore * 100

	achieved := r.ReductionPercentage / 100
	if achieved >= targetReduction {
		score += 20
	} else {
		score -= 50 * (targetReduction - achieved)
	}

	score -= 5 * float64(len(r.Warnings))

	safe, aggressive := countOps(r.OperationsApplied)
	score += 2 * float64(safe)
	score -= 5 * float64(aggressive)

	if score < 0 {
		score = 0
	}
	return score
}
