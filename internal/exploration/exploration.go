// Package exploration implements the Exploration stage: generating up
// to three candidate Solutions for a Problem. Ported from
// original_source/layers/exploration.py's explore_solutions.
package exploration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/llmjson"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/prompt"
)

const maxTokens = 2000
const maxSolutions = 3

// solutionTemplates ports explore_solutions' fallback
// solution_templates table, keyed by domain then by the Problem name
// internal/interpretation assigns (English rather than the source's
// Korean problem names, to match problemTemplates there).
var solutionTemplates = map[string]map[string][]model.Solution{
	"email": {
		"important mail visibility problem": {
			{
				ID:            "sol_1",
				Name:          "automatic classification system",
				Description:   "analyze sender and keyword patterns to auto-classify important mail and surface it at the top",
				Pros:          []string{"addresses the root cause", "keeps working once configured", "no notification fatigue"},
				Cons:          []string{"needs initial setup", "classification accuracy takes time to learn"},
				Complexity:    "medium",
				RequiredTools: []string{"email_reader", "classifier", "label_applier"},
				RiskLevel:     model.RiskLow,
			},
			{
				ID:            "sol_2",
				Name:          "real-time important-mail alert",
				Description:   "send an immediate alert the moment important mail arrives",
				Pros:          []string{"can apply immediately", "simple to implement"},
				Cons:          []string{"may increase notification fatigue", "not a root-cause fix"},
				Complexity:    "low",
				RequiredTools: []string{"email_reader", "notification"},
				RiskLevel:     model.RiskLow,
			},
			{
				ID:            "sol_3",
				Name:          "morning summary report",
				Description:   "auto-generate a daily morning summary of important mail",
				Pros:          []string{"non-intrusive", "quick to scan"},
				Cons:          []string{"not real-time", "report generation takes time"},
				Complexity:    "medium",
				RequiredTools: []string{"email_reader", "summarizer", "report_generator"},
				RiskLevel:     model.RiskLow,
			},
		},
		"important mail response-delay problem": {
			{
				ID:            "sol_4",
				Name:          "priority-based sorting",
				Description:   "auto-sort the inbox by priority so important mail surfaces at the top",
				Pros:          []string{"immediate effect", "minimal user involvement"},
				Cons:          []string{"needs a priority-scoring logic"},
				Complexity:    "medium",
				RequiredTools: []string{"email_reader", "priority_scorer", "sorter"},
				RiskLevel:     model.RiskLow,
			},
		},
	},
	"github": {
		"PR review-delay problem": {
			{
				ID:            "sol_github_1",
				Name:          "PR review notification system",
				Description:   "auto-detect PRs needing review and notify the team",
				Pros:          []string{"can apply immediately", "prevents review delay"},
				Cons:          []string{"possible notification fatigue"},
				Complexity:    "low",
				RequiredTools: []string{"pr_reader", "notifier"},
				RiskLevel:     model.RiskLow,
			},
			{
				ID:            "sol_github_2",
				Name:          "automatic PR priority classification",
				Description:   "auto-determine PR importance (release, hotfix, etc.) and assign priority",
				Pros:          []string{"addresses the root cause", "improves review efficiency"},
				Cons:          []string{"needs a priority-scoring logic"},
				Complexity:    "medium",
				RequiredTools: []string{"pr_reader", "reviewer", "priority_scorer"},
				RiskLevel:     model.RiskLow,
			},
		},
	},
	"health": {
		"sleep-deficit problem": {
			{
				ID:            "sol_health_1",
				Name:          "sleep pattern analysis and alerting",
				Description:   "analyze sleep patterns and alert when falling short of the target",
				Pros:          []string{"raises awareness", "supports health management"},
				Cons:          []string{"possible notification fatigue"},
				Complexity:    "low",
				RequiredTools: []string{"health_reader", "analyzer", "notifier"},
				RiskLevel:     model.RiskLow,
			},
			{
				ID:            "sol_health_2",
				Name:          "sleep goal tracking system",
				Description:   "set a daily sleep goal and track the achievement rate",
				Pros:          []string{"provides motivation", "supports long-term improvement"},
				Cons:          []string{"requires setting a goal"},
				Complexity:    "medium",
				RequiredTools: []string{"health_reader", "analyzer"},
				RiskLevel:     model.RiskLow,
			},
		},
	},
	"finance": {
		"excessive-spending problem": {
			{
				ID:            "sol_finance_1",
				Name:          "spending-limit alert",
				Description:   "alert when per-category spending exceeds the configured limit",
				Pros:          []string{"can apply immediately", "controls spending"},
				Cons:          []string{"possible notification fatigue"},
				Complexity:    "low",
				RequiredTools: []string{"transaction_reader", "analyzer", "notifier"},
				RiskLevel:     model.RiskLow,
			},
			{
				ID:            "sol_finance_2",
				Name:          "spending pattern analysis and report",
				Description:   "analyze weekly/monthly spending patterns and produce a report",
				Pros:          []string{"raises awareness", "supports long-term planning"},
				Cons:          []string{"report generation takes time"},
				Complexity:    "medium",
				RequiredTools: []string{"transaction_reader", "analyzer", "report_generator"},
				RiskLevel:     model.RiskLow,
			},
		},
	},
}

// Explore generates up to three candidate Solutions for problem,
// preferring an LLM-authored set and falling back to the domain/name
// solution template when llm is nil or the call fails.
func Explore(ctx context.Context, llm capability.LLMPort, problem model.Problem) []model.Solution {
	if llm != nil {
		if solutions, err := tryLLM(ctx, llm, problem); err == nil && len(solutions) > 0 {
			return cap3(solutions)
		}
	}
	return cap3(fallback(problem))
}

func tryLLM(ctx context.Context, llm capability.LLMPort, problem model.Problem) ([]model.Solution, error) {
	problemJSON, err := json.Marshal(problem)
	if err != nil {
		return nil, fmt.Errorf("exploration: marshal problem: %w", err)
	}

	p, err := prompt.FormatExploration(string(problemJSON))
	if err != nil {
		return nil, fmt.Errorf("exploration: format prompt: %w", err)
	}

	raw, err := llm.Generate(ctx, p, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("exploration: generate: %w", err)
	}

	var solutions []model.Solution
	if err := llmjson.Extract(raw, &solutions); err != nil {
		var single model.Solution
		if err2 := llmjson.Extract(raw, &single); err2 != nil {
			return nil, fmt.Errorf("exploration: parse response: %w", err)
		}
		solutions = []model.Solution{single}
	}

	return solutions, nil
}

func fallback(problem model.Problem) []model.Solution {
	domainTemplates := solutionTemplates[problem.Domain]
	solutions, ok := domainTemplates[problem.Name]
	if !ok || len(solutions) == 0 {
		return []model.Solution{{
			ID:            fmt.Sprintf("sol_default_%s", problem.Domain),
			Name:          fmt.Sprintf("%s domain general remediation", problem.Domain),
			Description:   "analyzes the problem and proposes a suitable remediation",
			Pros:          []string{"applicable"},
			Cons:          []string{"needs further specification"},
			Complexity:    "medium",
			RequiredTools: nil,
			RiskLevel:     model.RiskMedium,
		}}
	}
	return solutions
}

func cap3(solutions []model.Solution) []model.Solution {
	if len(solutions) > maxSolutions {
		return solutions[:maxSolutions]
	}
	return solutions
}
