// Package sensor implements the Sensor stage: pulling current state
// for one or more domains from a capability.Source and shaping it
// into model.CurrentState, ported from
// original_source/layers/sensor.py's get_current_state. The Python's
// module-level sample loaders (load_emails, load_github_prs, ...)
// become internal/source/sample's concern; this package only performs
// the per-domain statistic computation get_current_state does once
// raw items are in hand.
package sensor

import (
	"context"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/model"
)

// knownSourceDomain maps a World Model connected-source name to the
// domain it feeds, matching get_current_state's source_to_domain
// table used when no explicit domain/domains argument is given.
var knownSourceDomain = map[string]string{
	"Gmail":        "email",
	"GitHub":       "github",
	"Apple Health": "health",
}

// DomainForSourceName reports the domain a World-Model connected
// source name feeds, and whether it is recognized. Exported for
// internal/composition's own source-to-domain fallback, which mirrors
// the same table.
func DomainForSourceName(name string) (string, bool) {
	domain, ok := knownSourceDomain[name]
	return domain, ok
}

// DomainsFromSources derives the active domain list from the World
// Model's connected sources, matching get_current_state's fallback
// auto-detection path.
func DomainsFromSources(sources map[string]model.ConnectedSource) []string {
	var domains []string
	seen := map[string]bool{}
	for name, src := range sources {
		if src.Status != "active" {
			continue
		}
		if domain, ok := knownSourceDomain[name]; ok && !seen[domain] {
			domains = append(domains, domain)
			seen[domain] = true
		}
	}
	if len(domains) == 0 {
		domains = []string{"email"}
	}
	return domains
}

// itemsOf extracts the raw item slice a Source reports for a domain,
// under the "items" key every internal/source implementation uses.
func itemsOf(result capability.SourceResult) []map[string]any {
	raw, _ := result.Data["items"].([]map[string]any)
	return raw
}

// Sense reads each of domains from src and returns the combined
// model.CurrentState, matching get_current_state's single- and
// multi-domain branches. now is injected for deterministic tests.
func Sense(ctx context.Context, src capability.Source, domains []string, now func() time.Time) (model.CurrentState, error) {
	if len(domains) == 0 {
		domains = []string{"email"}
	}

	data := map[string]any{}
	var sourceNames []string
	for _, domain := range domains {
		result, err := src.Read(ctx, domain, nil)
		if err != nil {
			return model.CurrentState{}, err
		}
		items := itemsOf(result)
		computeDomainStats(domain, items, data)
		sourceNames = append(sourceNames, domain)
	}

	cs := model.CurrentState{
		Timestamp: now(),
		Data:      data,
		Metadata: map[string]any{
			"sources":           sourceNames,
			"collection_method": "batch",
		},
	}
	if len(domains) == 1 {
		cs.Domain = domains[0]
		cs.Metadata["source"] = "sample_data"
	} else {
		cs.Domain = "multi"
		cs.Domains = domains
	}
	return cs, nil
}

func computeDomainStats(domain string, items []map[string]any, data map[string]any) {
	switch domain {
	case "email":
		unread := 0
		for _, e := range items {
			if read, _ := e["read"].(bool); !read {
				unread++
			}
		}
		data["emails"] = items
		data["total_emails"] = len(items)
		data["unread_count"] = unread

	case "github":
		pending := 0
		old := 0
		open := 0
		for _, pr := range items {
			if status, _ := pr["status"].(string); status == "open" {
				open++
			}
			if reviewStatus, _ := pr["review_status"].(string); reviewStatus == "pending" {
				pending++
				if ageHours := numeric(pr["age_hours"]); ageHours > 48 {
					old++
				}
			}
		}
		data["prs"] = items
		data["total_prs"] = len(items)
		data["open_prs"] = open
		data["pending_reviews"] = pending
		data["old_prs"] = old

	case "health":
		var totalSleep, totalSteps float64
		for _, rec := range items {
			if sleep, ok := rec["sleep"].(map[string]any); ok {
				totalSleep += numeric(sleep["duration_hours"])
			}
			if activity, ok := rec["activity"].(map[string]any); ok {
				totalSteps += numeric(activity["steps"])
			}
		}
		avgSleep, avgSteps := 0.0, 0.0
		if len(items) > 0 {
			avgSleep = totalSleep / float64(len(items))
			avgSteps = totalSteps / float64(len(items))
		}
		data["health_records"] = items
		data["total_health_records"] = len(items)
		data["average_sleep_hours"] = avgSleep
		data["average_steps"] = avgSteps

	case "finance":
		categorySpending := map[string]float64{}
		var total float64
		for _, txn := range items {
			amount := numeric(txn["amount"])
			total += amount
			category, _ := txn["category"].(string)
			if category == "" {
				category = "uncategorized"
			}
			categorySpending[category] += amount
		}
		data["transactions"] = items
		data["total_transactions"] = len(items)
		data["total_spending"] = total
		data["category_spending"] = categorySpending

	default:
		data[domain+"_items"] = items
	}
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
