// Package learning implements the Learning stage: scoring one
// Execution run and folding a learned behavior pattern back into the
// World Model when the run went well enough to be worth remembering.
// Ported from original_source/layers/learning.py's analyze_results and
// update_world_model.
package learning

import (
	"fmt"
	"time"

	"github.com/shun1423/sia/internal/engerr"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/worldmodel"
)

// successRateThreshold and satisfactionThreshold gate whether a run
// is good enough to record as a learned Pattern, matching
// update_world_model's > 0.8 / > 0.7 literals.
const (
	successRateThreshold  = 0.8
	satisfactionThreshold = 0.7

	// defaultSatisfaction is analyze_results' fallback when no
	// UserFeedback was supplied.
	defaultSatisfaction = 0.5
)

// Analysis is analyze_results' return shape: what one Execution run
// says about itself, independent of whether it gets persisted.
type Analysis struct {
	SuccessRate      float64
	ProcessedItems   int
	Domain           string
	UserSatisfaction float64
	Timestamp        time.Time
}

// Analyze scores an ExecutionResult, matching analyze_results. The
// success rate is recomputed directly from ActionResults rather than
// read back off result.Summary.SuccessRate, staying faithful to the
// Python's independent recount over workflow_results.
func Analyze(result model.ExecutionResult, feedback *model.UserFeedback, now time.Time) Analysis {
	total := len(result.ActionResults)
	success := 0
	for _, r := range result.ActionResults {
		if r.Outcome == model.OutcomeSuccess {
			success++
		}
	}

	var rate float64
	if total > 0 {
		rate = float64(success) / float64(total)
	}

	satisfaction := defaultSatisfaction
	if feedback != nil {
		satisfaction = feedback.Satisfaction
	}

	return Analysis{
		SuccessRate:      rate,
		ProcessedItems:   len(result.ProcessedData),
		Domain:           result.Domain,
		UserSatisfaction: satisfaction,
		Timestamp:        now,
	}
}

// behaviorByDomain ports update_world_model's behavior_map: a
// human-readable description of what pattern is being learned.
var behaviorByDomain = map[string]string{
	"email":   "automatic email classification in use",
	"github":  "automatic PR review notification in use",
	"health":  "health data analysis in use",
	"finance": "spending pattern analysis in use",
}

func behaviorFor(domain string) string {
	if b, ok := behaviorByDomain[domain]; ok {
		return b
	}
	return fmt.Sprintf("%s domain agent in use", domain)
}

// UpdateWorldModel ports update_world_model: when an Analysis clears
// both thresholds, it appends a learned Pattern to the World Model.
// A run that doesn't clear the bar is a no-op, not an error — unlike
// a missing domain, which update_world_model treats as fatal since
// there is no onboarding-free default to fall back to.
func UpdateWorldModel(store *worldmodel.Store, analysis Analysis) error {
	if analysis.Domain == "" {
		return &engerr.DomainError{Stage: "learning", Reason: "execution result carried no domain"}
	}

	return store.Update(func(doc *worldmodel.Document) error {
		if analysis.SuccessRate <= successRateThreshold || analysis.UserSatisfaction <= satisfactionThreshold {
			return nil
		}

		doc.Patterns = append(doc.Patterns, model.Pattern{
			ID:               fmt.Sprintf("pattern_%d", len(doc.Patterns)+1),
			Type:             "learned",
			Behavior:         behaviorFor(analysis.Domain),
			Domain:           analysis.Domain,
			LearnedAt:        analysis.Timestamp,
			SuccessRate:      analysis.SuccessRate,
			UserSatisfaction: analysis.UserSatisfaction,
		})
		return nil
	})
}
