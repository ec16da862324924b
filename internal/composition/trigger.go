package composition

import "strings"

// GenerateTrigger ports _generate_trigger: a domain-specific default,
// refined for email/github by a keyword found in the solution's name.
// Variant dispatch is keyed off the solution name's English substrings
// rather than the source's Korean literals ("분류"/"우선순위" etc.),
// preserving the same behavior the Python's keyword match produces.
func GenerateTrigger(solutionName, domain string) TriggerSpec {
	name := strings.ToLower(solutionName)

	switch domain {
	case "email":
		switch {
		case strings.Contains(name, "classif") || strings.Contains(name, "priority"):
			return TriggerSpec{Type: "event", Source: "gmail", Event: "new_email", Description: "runs when a new email arrives"}
		case strings.Contains(name, "summary") || strings.Contains(name, "report"):
			return TriggerSpec{Type: "schedule", Cron: "0 9 * * *", Description: "runs every day at 9am"}
		}
	case "calendar":
		return TriggerSpec{Type: "schedule", Cron: "0 8 * * *", Description: "runs every day at 8am"}
	case "github":
		if strings.Contains(name, "review") {
			return TriggerSpec{Type: "event", Source: "github", Event: "new_pr", Description: "runs when a new PR is opened or needs review"}
		}
		return TriggerSpec{Type: "schedule", Cron: "0 10 * * 1-5", Description: "runs weekdays at 10am"}
	case "health":
		return TriggerSpec{Type: "schedule", Cron: "0 8 * * *", Description: "checks health data every day at 8am"}
	case "finance":
		return TriggerSpec{Type: "schedule", Cron: "0 22 * * *", Description: "checks spending every day at 10pm"}
	}

	return TriggerSpec{Type: "event", Source: domain, Event: "data_update", Description: "runs when the domain's data updates"}
}

// TriggerSpec carries GenerateTrigger's human-readable description
// alongside the model.Trigger fields; the description is surfaced to
// a Presenter but is not itself part of model.Trigger.
type TriggerSpec struct {
	Type        string
	Source      string
	Event       string
	Cron        string
	Description string
}
