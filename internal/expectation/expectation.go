// Package expectation implements the Expectation stage: deriving the
// ideal state for a domain from the World Model, optionally enriched
// by an LLM call, ported from
// original_source/layers/expectation.py's generate_expectation.
package expectation

import (
	"context"
	"fmt"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/llmjson"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/prompt"
)

// idealState mirrors one entry of the World Model's ideal_states
// section (and _get_default_ideal_states' shape).
type idealState struct {
	ID           string
	Domain       string
	Criterion    string
	TargetValue  any
	Description  string
	Priority     string
}

// Context is the "day/time" situational input generate_expectation
// defaults to datetime.now() when not given explicitly.
type Context struct {
	Day  string
	Time string
}

// NowContext derives Context from now, matching the Python's
// now.strftime("%A").lower() / now.strftime("%H:%M").
func NowContext(now time.Time) Context {
	return Context{Day: lowerWeekday(now), Time: now.Format("15:04")}
}

func lowerWeekday(t time.Time) string {
	return toLower(t.Weekday().String())
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// llmExpectation is the shape an LLM response or the template fallback
// both produce, matching generate_expectation's return dict.
type llmExpectation struct {
	Domain       string           `json:"domain"`
	Context      map[string]any   `json:"context"`
	IdealStates  []idealStateJSON `json:"ideal_states"`
	Expectations []expectationJSON `json:"expectations"`
}

type idealStateJSON struct {
	ID          string `json:"id"`
	Domain      string `json:"domain"`
	Criterion   string `json:"criterion"`
	TargetValue any    `json:"target_value"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type expectationJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Criterion   string `json:"criterion"`
	TargetValue any    `json:"target_value"`
	Priority    string `json:"priority"`
}

// Derive generates the ideal state for domain. It tries llm first (if
// non-nil); on any error or nil llm it falls back to the World
// Model's ideal_states section, and if that has nothing for this
// domain, to a built-in per-domain default table, matching
// generate_expectation's try-LLM-then-fallback structure.
func Derive(ctx context.Context, llm capability.LLMPort, worldModelJSON string, idealStates []model.Expectation, domain string, sitCtx Context) (model.Expectation, error) {
	if llm != nil {
		if exp, ok := tryLLM(ctx, llm, worldModelJSON, domain, sitCtx); ok {
			return exp, nil
		}
	}
	return fallback(idealStates, domain, sitCtx), nil
}

func tryLLM(ctx context.Context, llm capability.LLMPort, worldModelJSON, domain string, sitCtx Context) (model.Expectation, bool) {
	contextJSON := fmt.Sprintf(`{"day":"%s","time":"%s"}`, sitCtx.Day, sitCtx.Time)
	rendered, err := prompt.FormatExpectation(worldModelJSON, contextJSON, domain)
	if err != nil {
		return model.Expectation{}, false
	}

	response, err := llm.Generate(ctx, rendered, 2000)
	if err != nil {
		return model.Expectation{}, false
	}

	var parsed llmExpectation
	if err := llmjson.Extract(response, &parsed); err != nil {
		return model.Expectation{}, false
	}

	idealMap := make(map[string]any, len(parsed.IdealStates))
	for _, is := range parsed.IdealStates {
		idealMap[is.ID] = is
	}
	var expectations []string
	for _, e := range parsed.Expectations {
		expectations = append(expectations, e.Description)
	}

	return model.Expectation{
		Domain:       domain,
		Day:          sitCtx.Day,
		Time:         sitCtx.Time,
		IdealStates:  idealMap,
		Expectations: expectations,
	}, true
}

// fallback reuses the World Model's ideal_states for this domain, or
// the built-in defaults if none are recorded yet, matching
// generate_expectation's fallback branch.
func fallback(idealStates []model.Expectation, domain string, sitCtx Context) model.Expectation {
	for _, exp := range idealStates {
		if exp.Domain == domain {
			return exp
		}
	}

	defaults := defaultIdealStates(domain)
	idealMap := make(map[string]any, len(defaults))
	var expectations []string
	for _, d := range defaults {
		idealMap[d.ID] = d
		expectations = append(expectations, d.Description)
	}

	return model.Expectation{
		Domain:       domain,
		Day:          sitCtx.Day,
		Time:         sitCtx.Time,
		IdealStates:  idealMap,
		Expectations: expectations,
	}
}

// defaultIdealStates ports _get_default_ideal_states' per-domain table.
func defaultIdealStates(domain string) []idealState {
	switch domain {
	case "email":
		return []idealState{
			{ID: "ideal_email_1", Domain: "email", Criterion: "response_time_minutes", TargetValue: 30, Description: "important mail is checked within 30 minutes", Priority: "high"},
			{ID: "ideal_email_2", Domain: "email", Criterion: "important_emails_visible", TargetValue: true, Description: "important mail surfaces at the top of the inbox", Priority: "medium"},
		}
	case "github":
		return []idealState{
			{ID: "ideal_github_1", Domain: "github", Criterion: "review_time_hours", TargetValue: 24, Description: "PRs are reviewed within 24 hours", Priority: "high"},
			{ID: "ideal_github_2", Domain: "github", Criterion: "review_time_hours", TargetValue: 12, Description: "release PRs are reviewed within 12 hours", Priority: "high"},
		}
	case "health":
		return []idealState{
			{ID: "ideal_health_1", Domain: "health", Criterion: "sleep_duration_hours", TargetValue: 7, Description: "average sleep duration is at least 7 hours", Priority: "high"},
			{ID: "ideal_health_2", Domain: "health", Criterion: "bedtime_variance_hours", TargetValue: 1, Description: "bedtime varies by less than 1 hour night to night", Priority: "medium"},
		}
	case "finance":
		return []idealState{
			{ID: "ideal_finance_1", Domain: "finance", Criterion: "weekly_spending_limit", TargetValue: 50000, Description: "weekly delivery-app spending stays under the limit", Priority: "medium"},
			{ID: "ideal_finance_2", Domain: "finance", Criterion: "unused_subscription_days", TargetValue: 90, Description: "subscriptions unused for 90 days are flagged", Priority: "low"},
		}
	default:
		return nil
	}
}
