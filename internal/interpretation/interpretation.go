// Package interpretation implements the Interpretation stage: turning
// a Comparison Gap into a named Problem with a cause, an impact, and
// an initial Problem State Machine status. Ported from
// original_source/layers/interpretation.py's interpret_gap /
// interpret_gaps.
package interpretation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/llmjson"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/prompt"
)

const maxTokens = 1500

type template struct {
	name        string
	description string
	cause       string
	impact      string
}

// problemTemplates ports interpret_gap's fallback problem_templates
// table, translated to English.
var problemTemplates = map[string]map[string]template{
	"email": {
		"visibility": {
			name:        "important mail visibility problem",
			description: "important work mail is not visible near the top of the inbox and may be missed",
			cause:       "the inbox is fixed to chronological order and does not reflect priority",
			impact:      "delayed responses to important mail, potential work disruption and schedule slippage",
		},
		"response_time": {
			name:        "important mail response-delay problem",
			description: "important mail is going unchecked, delaying responses",
			cause:       "too much mail has piled up in the inbox, making important mail hard to find",
			impact:      "delayed communication with managers/teammates, eroding trust",
		},
	},
	"github": {
		"review_delay": {
			name:        "PR review-delay problem",
			description: "PRs awaiting review have been delayed more than 48 hours",
			cause:       "the PR review process is not structured, so reviews accumulate",
			impact:      "delayed merges, delayed deployment schedule, reduced team productivity",
		},
	},
	"health": {
		"sleep_deficit": {
			name:        "sleep-deficit problem",
			description: "average sleep time is below the recommended 7 hours",
			cause:       "work stress or an irregular schedule reducing sleep",
			impact:      "reduced focus, lower work efficiency, declining health",
		},
	},
	"finance": {
		"overspending": {
			name:        "excessive-spending problem",
			description: "delivery-app spending exceeded the configured limit",
			cause:       "convenience-driven spending increasing without notice",
			impact:      "budget overrun, disrupted financial plans, harder savings goals",
		},
	},
}

type llmProblem struct {
	ID            string   `json:"id"`
	GapID         string   `json:"gap_id"`
	Domain        string   `json:"domain"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Cause         string   `json:"cause"`
	Impact        string   `json:"impact"`
	Severity      string   `json:"severity"`
	AffectedItems []string `json:"affected_items"`
}

// Interpret turns gap into a Problem, preferring an LLM-authored
// definition and falling back to the domain/type problem template
// when llm is nil or the call fails, matching interpret_gap's
// try-then-fallback structure.
func Interpret(ctx context.Context, llm capability.LLMPort, gap model.Gap, now time.Time) model.Problem {
	if llm != nil {
		if problem, err := tryLLM(ctx, llm, gap, now); err == nil {
			return problem
		}
	}
	return fallback(gap, now)
}

// InterpretAll interprets every gap in gaps, preserving order.
func InterpretAll(ctx context.Context, llm capability.LLMPort, gaps []model.Gap, now time.Time) []model.Problem {
	problems := make([]model.Problem, 0, len(gaps))
	for _, gap := range gaps {
		problems = append(problems, Interpret(ctx, llm, gap, now))
	}
	return problems
}

func tryLLM(ctx context.Context, llm capability.LLMPort, gap model.Gap, now time.Time) (model.Problem, error) {
	affectedJSON, err := json.Marshal(gap.AffectedItems)
	if err != nil {
		return model.Problem{}, fmt.Errorf("interpretation: marshal affected items: %w", err)
	}
	gapJSON, err := json.Marshal(gap)
	if err != nil {
		return model.Problem{}, fmt.Errorf("interpretation: marshal gap: %w", err)
	}

	p, err := prompt.FormatInterpretation(string(gapJSON), gap.ID, string(gap.Severity), string(affectedJSON))
	if err != nil {
		return model.Problem{}, fmt.Errorf("interpretation: format prompt: %w", err)
	}

	raw, err := llm.Generate(ctx, p, maxTokens)
	if err != nil {
		return model.Problem{}, fmt.Errorf("interpretation: generate: %w", err)
	}

	var parsed llmProblem
	if err := llmjson.Extract(raw, &parsed); err != nil {
		return model.Problem{}, fmt.Errorf("interpretation: parse response: %w", err)
	}

	return model.Problem{
		ID:            parsed.ID,
		GapID:         gap.ID,
		Domain:        parsed.Domain,
		Name:          parsed.Name,
		Description:   parsed.Description,
		Cause:         parsed.Cause,
		Impact:        parsed.Impact,
		Severity:      model.Severity(parsed.Severity),
		AffectedItems: parsed.AffectedItems,
		Status:        model.StatusCandidate,
		DetectedAt:    now,
		UpdatedAt:     now,
		ProblemScore:  scoreOrDefault(gap),
	}, nil
}

func fallback(gap model.Gap, now time.Time) model.Problem {
	domain := gap.Domain
	if domain == "" {
		domain = "email"
	}

	tpl, ok := problemTemplates[domain][gap.Type]
	if !ok {
		tpl = template{
			name:        fmt.Sprintf("%s domain problem", domain),
			description: gap.Description,
			cause:       "cause analysis needed",
			impact:      "impact analysis needed",
		}
	}

	severity := gap.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}

	return model.Problem{
		ID:            fmt.Sprintf("problem_%s", gap.ID),
		GapID:         gap.ID,
		Domain:        domain,
		Name:          tpl.name,
		Description:   tpl.description,
		Cause:         tpl.cause,
		Impact:        tpl.impact,
		Severity:      severity,
		AffectedItems: gap.AffectedItems,
		Status:        model.StatusCandidate,
		DetectedAt:    now,
		UpdatedAt:     now,
		ProblemScore:  scoreOrDefault(gap),
	}
}

// scoreOrDefault mirrors interpret_gap's gap.get("problem_score", 0.5):
// an un-scored gap (the zero value) defaults to a neutral midpoint
// score rather than reading as "no problem at all."
func scoreOrDefault(gap model.Gap) float64 {
	if gap.ProblemScore == 0 {
		return 0.5
	}
	return gap.ProblemScore
}
