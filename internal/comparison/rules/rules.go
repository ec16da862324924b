// Package rules implements Comparison's cheap, always-authoritative
// gap detectors — the "tiered inference" pattern's first tier, ported
// from original_source/layers/comparison.py's
// _detect_{email,github,health,finance}_gaps. These run unconditionally
// regardless of whether an LLM is configured; internal/comparison/enrich
// may only add to their output, never override it.
package rules

import (
	"fmt"

	"github.com/shun1423/sia/internal/model"
)

// top5Emails is how many leading inbox entries Comparison treats as
// "visible without scrolling," per _detect_email_gaps.
const top5Emails = 5

// DetectEmailGaps ports _detect_email_gaps: an important-mail
// visibility gap if no high-priority mail sits in the top 5, and a
// response-time gap for any unread high-priority mail.
func DetectEmailGaps(emails []map[string]any) []model.Gap {
	var gaps []model.Gap

	var important []map[string]any
	for _, e := range emails {
		if priority, _ := e["hidden_priority"].(string); priority == "high" {
			important = append(important, e)
		}
	}

	if len(important) > 0 {
		top := emails
		if len(top) > top5Emails {
			top = top[:top5Emails]
		}
		importantInTop := false
		for _, e := range top {
			if priority, _ := e["hidden_priority"].(string); priority == "high" {
				importantInTop = true
				break
			}
		}
		if !importantInTop {
			gaps = append(gaps, model.Gap{
				ID:          "gap_1",
				Type:        "visibility",
				Domain:      "email",
				Severity:    model.SeverityHigh,
				Current:     fmt.Sprintf("important mail not in the top %d of %d items", top5Emails, len(important)),
				Expected:    "important mail should surface near the top of the inbox",
				AffectedItems: idsOf(important, 3),
				Description: "important mail is not surfacing near the top of the inbox",
				Evidence: model.Evidence{
					CurrentValue:     countImportantHighPriority(top),
					ExpectedValue:    len(important),
					Trend:            "stable",
					RecurrenceCount:  1,
				},
			})
		}
	}

	var unreadImportant []map[string]any
	for _, e := range important {
		if read, _ := e["read"].(bool); !read {
			unreadImportant = append(unreadImportant, e)
		}
	}
	if len(unreadImportant) > 0 {
		gaps = append(gaps, model.Gap{
			ID:          "gap_2",
			Type:        "response_time",
			Domain:      "email",
			Severity:    model.SeverityHigh,
			Current:     fmt.Sprintf("%d unread important mail", len(unreadImportant)),
			Expected:    "important mail is checked within 30 minutes",
			AffectedItems: idsOf(unreadImportant, 3),
			Description: "important mail is going unread",
			Evidence: model.Evidence{
				CurrentValue:    len(unreadImportant),
				ExpectedValue:   0,
				Trend:           "increasing",
				RecurrenceCount: 2,
			},
		})
	}

	return gaps
}

// DetectGithubGaps ports _detect_github_gaps: a review-delay gap when
// any pending-review PR has sat for more than 48 hours.
func DetectGithubGaps(prs []map[string]any) []model.Gap {
	var pending, old []map[string]any
	for _, pr := range prs {
		if status, _ := pr["review_status"].(string); status == "pending" {
			pending = append(pending, pr)
			if ageHours := numeric(pr["age_hours"]); ageHours > 48 {
				old = append(old, pr)
			}
		}
	}
	if len(old) == 0 {
		return nil
	}
	return []model.Gap{{
		ID:          "gap_github_1",
		Type:        "review_delay",
		Domain:      "github",
		Severity:    model.SeverityHigh,
		Current:     fmt.Sprintf("%d PR(s) overdue for review", len(old)),
		Expected:    "PRs are reviewed within 24 hours",
		AffectedItems: idsOf(old, 3),
		Description: "pending-review PRs have sat past 48 hours",
		Evidence: model.Evidence{
			CurrentValue:    len(old),
			ExpectedValue:   0,
			Trend:           "stable",
			RecurrenceCount: 1,
		},
	}}
}

// DetectHealthGaps ports _detect_health_gaps: a sleep-deficit gap when
// the average nightly sleep is under the 7-hour target.
func DetectHealthGaps(records []map[string]any, avgSleepHours float64) []model.Gap {
	if len(records) == 0 || avgSleepHours >= 7 {
		return nil
	}

	tail := records
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	var affected []string
	for _, r := range tail {
		if date, _ := r["date"].(string); date != "" {
			affected = append(affected, date)
		}
	}

	return []model.Gap{{
		ID:          "gap_health_1",
		Type:        "sleep_deficit",
		Domain:      "health",
		Severity:    model.SeverityMedium,
		Current:     fmt.Sprintf("average sleep is %.1f hours", avgSleepHours),
		Expected:    "average sleep is at least 7 hours",
		AffectedItems: affected,
		Description: "average nightly sleep is below target",
		Evidence: model.Evidence{
			CurrentValue:    avgSleepHours,
			ExpectedValue:   7.0,
			Trend:           "stable",
			RecurrenceCount: len(records),
		},
	}}
}

// deliveryCategory is the spend category DetectFinanceGaps watches,
// matching _detect_finance_gaps' "배달앱" (delivery-app) key.
const deliveryCategory = "delivery_app"

// deliveryWeeklyLimit is the weekly spend threshold in the currency's
// smallest reported unit, matching the Python's 50000 literal.
const deliveryWeeklyLimit = 50000.0

// DetectFinanceGaps ports _detect_finance_gaps: an overspending gap
// when delivery-app category spend exceeds the weekly limit.
func DetectFinanceGaps(transactions []map[string]any, categorySpending map[string]float64) []model.Gap {
	spend := categorySpending[deliveryCategory]
	if spend <= deliveryWeeklyLimit {
		return nil
	}

	var affected []string
	for _, txn := range transactions {
		if category, _ := txn["category"].(string); category == deliveryCategory {
			if id, _ := txn["id"].(string); id != "" {
				affected = append(affected, id)
			}
		}
	}
	if len(affected) > 3 {
		affected = affected[:3]
	}

	return []model.Gap{{
		ID:          "gap_finance_1",
		Type:        "overspending",
		Domain:      "finance",
		Severity:    model.SeverityMedium,
		Current:     fmt.Sprintf("delivery-app spending is %.0f", spend),
		Expected:    fmt.Sprintf("weekly delivery-app spending stays under %.0f", deliveryWeeklyLimit),
		AffectedItems: affected,
		Description: "delivery-app spending exceeded the weekly limit",
		Evidence: model.Evidence{
			CurrentValue:    spend,
			ExpectedValue:   deliveryWeeklyLimit,
			Trend:           "increasing",
			RecurrenceCount: countCategory(transactions, deliveryCategory),
		},
	}}
}

func idsOf(items []map[string]any, limit int) []string {
	var ids []string
	for i, item := range items {
		if i >= limit {
			break
		}
		if id, _ := item["id"].(string); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func countImportantHighPriority(items []map[string]any) int {
	count := 0
	for _, e := range items {
		if priority, _ := e["hidden_priority"].(string); priority == "high" {
			count++
		}
	}
	return count
}

func countCategory(transactions []map[string]any, category string) int {
	count := 0
	for _, t := range transactions {
		if c, _ := t["category"].(string); c == category {
			count++
		}
	}
	return count
}

func numeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
