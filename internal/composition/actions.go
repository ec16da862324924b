package composition

import (
	"fmt"
	"strings"

	"github.com/shun1423/sia/internal/model"
)

// GenerateActions ports _generate_actions: domain/keyword-specific
// actions, falling back to one generic read action per domain when
// no keyword branch produced anything.
func GenerateActions(solutionName, domain string) []model.Action {
	name := strings.ToLower(solutionName)
	var actions []model.Action

	switch domain {
	case "email":
		switch {
		case strings.Contains(name, "classif"):
			actions = append(actions,
				model.Action{If: "importance == high", Do: "gmail.apply_label('important')", Type: model.ActionWrite, RequiresApproval: true},
				model.Action{Schedule: "daily_09:00", Do: "notification.send_dm(daily_summary)", Type: model.ActionNotification},
			)
		case strings.Contains(name, "priority"):
			actions = append(actions, model.Action{Do: "sort_emails_by_priority()", Type: model.ActionRead})
		}
	case "github":
		switch {
		case strings.Contains(name, "review"):
			actions = append(actions,
				model.Action{If: "pr.review_status == 'pending' and pr.age_hours > 48", Do: "slack.send_dm(review needed)", Type: model.ActionNotification},
				model.Action{If: "pr.is_release_branch == true", Do: "slack.send_dm(release pr review needed)", Type: model.ActionNotification},
			)
		case strings.Contains(name, "priority"):
			actions = append(actions, model.Action{Do: "sort_prs_by_priority()", Type: model.ActionRead})
		}
	case "health":
		switch {
		case strings.Contains(name, "sleep"):
			actions = append(actions, model.Action{If: "sleep.duration_hours < 7", Do: "notification.send_push(sleep deficit alert)", Type: model.ActionNotification})
		case strings.Contains(name, "pattern"):
			actions = append(actions, model.Action{Schedule: "daily_08:00", Do: "notification.send_push(health_summary)", Type: model.ActionNotification})
		}
	case "finance":
		switch {
		case strings.Contains(name, "spending"):
			actions = append(actions, model.Action{If: "weekly_spending > limit", Do: "notification.send_dm(weekly spending limit exceeded)", Type: model.ActionNotification})
		case strings.Contains(name, "categor"):
			actions = append(actions, model.Action{Do: "categorize_transactions()", Type: model.ActionRead})
		}
	}

	if len(actions) == 0 {
		if do, ok := defaultAction(domain); ok {
			actions = append(actions, do)
		}
	}

	return actions
}

// defaultAction ports _generate_actions' fallback default action per
// domain.
func defaultAction(domain string) (model.Action, bool) {
	verb, ok := map[string]string{
		"email":   "process_emails",
		"github":  "process_prs",
		"health":  "process_health_data",
		"finance": "process_transactions",
	}[domain]
	if !ok {
		return model.Action{}, false
	}
	return model.Action{Do: fmt.Sprintf("%s()", verb), Type: model.ActionRead}, true
}
