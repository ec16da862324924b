// Package comparison implements the Comparison stage's tiered
// inference: cheap rule-based gap detection (internal/comparison/rules)
// runs first and is always authoritative, Problem Scoring filters the
// result, and an optional LLM enrichment pass
// (internal/comparison/enrich) may only append gaps the rules missed.
// Ported from original_source/layers/comparison.py's compare_states.
package comparison

import (
	"context"

	"github.com/shun1423/sia/internal/baseline"
	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/comparison/enrich"
	"github.com/shun1423/sia/internal/comparison/rules"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/scoring"
)

// Compare runs the tiered comparison for one domain's current state
// against its expectation, scores and filters the result, and
// returns the final gap list.
func Compare(
	ctx context.Context,
	llm capability.LLMPort,
	currentState model.CurrentState,
	expectation model.Expectation,
	history []model.HistoryRecord,
	wm scoring.WorldModelView,
	scoringCtx *scoring.Context,
	threshold float64,
) ([]model.Gap, error) {
	domain := currentState.Domain
	baselineWindow, err := baseline.Calculate(domain, history, baseline.DefaultWindowWeeks)
	if err != nil {
		return nil, err
	}

	gaps := detectByDomain(domain, currentState)

	if llm != nil {
		extra, err := enrich.Enrich(ctx, llm, currentState, expectation, gaps)
		if err == nil {
			gaps = append(gaps, extra...)
		}
	}

	return scoring.FilterAndSort(gaps, baselineWindow, wm, scoringCtx, threshold), nil
}

func detectByDomain(domain string, cs model.CurrentState) []model.Gap {
	switch domain {
	case "email":
		emails, _ := cs.Data["emails"].([]map[string]any)
		return rules.DetectEmailGaps(emails)
	case "github":
		prs, _ := cs.Data["prs"].([]map[string]any)
		return rules.DetectGithubGaps(prs)
	case "health":
		records, _ := cs.Data["health_records"].([]map[string]any)
		avgSleep, _ := cs.Data["average_sleep_hours"].(float64)
		return rules.DetectHealthGaps(records, avgSleep)
	case "finance":
		transactions, _ := cs.Data["transactions"].([]map[string]any)
		spending, _ := cs.Data["category_spending"].(map[string]float64)
		return rules.DetectFinanceGaps(transactions, spending)
	default:
		return nil
	}
}
