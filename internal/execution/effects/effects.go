// Package effects simulates the domain-specific side effects of one
// executed action, ported from execute_agent's per-domain action
// branches (apply_label / review_pr / track_goal / categorize). These
// are simulations over the in-memory item list, not real calls out to
// Gmail/GitHub/health/finance providers — the same stance the
// original takes (it mutates a local copy and reports a count, never
// reaching an external API).
package effects

import "fmt"

// Item is one domain record (an email, a PR, a health record, a
// transaction) flowing through an action's effect.
type Item = map[string]any

// ApplyEmailLabel marks every high-priority email as labeled
// "Important" and reports how many were touched.
func ApplyEmailLabel(emails []Item) (touched int, output string) {
	for _, e := range emails {
		if e["hidden_priority"] == "high" {
			e["applied_label"] = "Important"
			touched++
		}
	}
	return touched, fmt.Sprintf("label applied: %d", touched)
}

// ReviewPRs marks every pending PR as reviewed and reports how many
// were touched.
func ReviewPRs(prs []Item) (touched int, output string) {
	for _, pr := range prs {
		if pr["review_status"] == "pending" {
			pr["review_status"] = "reviewed"
			touched++
		}
	}
	return touched, fmt.Sprintf("PR review complete: %d", touched)
}

// TrackHealthGoal reports how many health records were observed; the
// original performs no mutation here, only a count.
func TrackHealthGoal(records []Item) (observed int, output string) {
	observed = len(records)
	return observed, fmt.Sprintf("health data tracked: %d records", observed)
}

// CategorizeTransactions reports how many transactions were observed;
// like TrackHealthGoal the original performs no mutation, only a
// count.
func CategorizeTransactions(transactions []Item) (observed int, output string) {
	observed = len(transactions)
	return observed, fmt.Sprintf("transaction categorization complete: %d", observed)
}
