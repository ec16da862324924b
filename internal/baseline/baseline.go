// Package baseline implements the Baseline Calculator: a per-domain
// rolling personal average over a configurable window, ported from
// original_source/utils/baseline_calculator.py. Per spec §4.4, an
// empty history degrades gracefully to a nil baseline rather than the
// original's current-state-derived default — callers (scoring) treat
// nil as "skip the baseline shift".
package baseline

import (
	"strconv"
	"time"

	"github.com/shun1423/sia/internal/model"
)

// MinWindowWeeks and MaxWindowWeeks bound the valid calculation
// window; Calculate replaces an out-of-range value with
// DefaultWindowWeeks.
const (
	MinWindowWeeks     = 2
	MaxWindowWeeks     = 4
	DefaultWindowWeeks = 3
)

// metricKey returns the per-domain field name averaged from history
// entries, matching each _calculate_*_baseline function's history key.
var metricKey = map[string]string{
	"email":   "avg_response_time_hours",
	"github":  "avg_review_time_hours",
	"health":  "avg_sleep_hours",
	"finance": "delivery_spending",
}

// Calculate computes the rolling baseline for domain from history,
// limited to the most recent windowWeeks*7 entries. Returns nil, nil
// when history is empty.
func Calculate(domain string, history []model.HistoryRecord, windowWeeks int) (*model.Baseline, error) {
	if windowWeeks < MinWindowWeeks || windowWeeks > MaxWindowWeeks {
		windowWeeks = DefaultWindowWeeks
	}
	if len(history) == 0 {
		return nil, nil
	}

	key, ok := metricKey[domain]
	if !ok {
		return nil, nil
	}

	window := history
	limit := windowWeeks * 7
	if len(window) > limit {
		window = window[len(window)-limit:]
	}

	var sum float64
	var count int
	for _, entry := range window {
		if v, ok := numeric(entry.Values[key]); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}

	avg := sum / float64(count)

	return &model.Baseline{
		BaselineValue:  avg,
		BaselinePeriod: weeksLabel(windowWeeks),
		CalculatedAt:   time.Now(),
		Metrics: map[string]any{
			key:           avg,
			"sample_size": count,
		},
	}, nil
}

func weeksLabel(weeks int) string {
	if weeks == 1 {
		return "1 week"
	}
	return strconv.Itoa(weeks) + " weeks"
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
