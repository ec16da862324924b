package composition

import (
	"strings"

	"github.com/shun1423/sia/internal/model"
)

// GenerateLogic ports _generate_logic: a handful of rule-based
// if/then entries keyed by domain and a solution-name keyword, plus
// an always-enabled LLM task. Keyword dispatch uses the same English
// substrings GenerateTrigger checks, preserving the Python's
// keyword-match behavior across the composed solution names.
func GenerateLogic(solutionName, domain string) ([]model.LogicRule, string) {
	name := strings.ToLower(solutionName)
	var rules []model.LogicRule

	switch domain {
	case "email":
		switch {
		case strings.Contains(name, "classif"):
			rules = append(rules,
				model.LogicRule{If: "sender in vip_list", Then: "importance = high"},
				model.LogicRule{If: "subject contains ['deadline', 'urgent', 'request']", Then: "importance = high"},
			)
		case strings.Contains(name, "priority"):
			rules = append(rules, model.LogicRule{If: "hidden_priority == 'high'", Then: "priority_score = 3"})
		}
	case "github":
		if strings.Contains(name, "review") {
			rules = append(rules,
				model.LogicRule{If: "pr.age_hours > 48", Then: "review_priority = high"},
				model.LogicRule{If: "pr.is_release_branch == true", Then: "review_priority = high"},
			)
		}
	case "health":
		if strings.Contains(name, "sleep") {
			rules = append(rules, model.LogicRule{If: "sleep.duration_hours < 7", Then: "alert = true"})
		}
	case "finance":
		if strings.Contains(name, "spending") {
			rules = append(rules, model.LogicRule{If: "category == 'delivery_app' and weekly_total > 50000", Then: "alert = true"})
		}
	}

	return rules, llmTask(name, domain)
}

// llmTask ports _generate_logic's llm_task_map.
func llmTask(lowerName, domain string) string {
	switch domain {
	case "email":
		if strings.Contains(lowerName, "classif") {
			return "classify_importance"
		}
		return "score_priority"
	case "github":
		if strings.Contains(lowerName, "review") {
			return "review_priority"
		}
		return "score_priority"
	case "health":
		if strings.Contains(lowerName, "sleep") {
			return "analyze_sleep"
		}
		return "analyze_patterns"
	case "finance":
		if strings.Contains(lowerName, "categor") {
			return "categorize_transactions"
		}
		return "analyze_spending"
	default:
		return "process"
	}
}
