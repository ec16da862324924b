// Package scoring implements the Problem Scorer: a weighted sum of
// five signals approximating expected utility loss, ported from
// original_source/utils/problem_scoring.py.
package scoring

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shun1423/sia/internal/model"
)

// Context carries the time-of-day/weekday facts the context-importance
// signal consults. Passing a nil *Context to Score derives it from
// time.Now at call time; a non-nil zero Context is used as is (no
// weekday, hour treated as 12).
type Context struct {
	Day  string // lowercase weekday name, e.g. "monday"
	Time string // "HH:MM"
}

func contextFromNow(now time.Time) Context {
	return Context{
		Day:  strings.ToLower(now.Weekday().String()),
		Time: now.Format("15:04"),
	}
}

// Preferences is the subset of World Model's preferences section the
// scorer consults.
type Preferences struct {
	NotificationFrequency string // "minimal" | ...
	AutomationAcceptance  string // "low" | ...
}

// WorldModelView is the minimal read surface the scorer needs,
// avoiding a hard dependency on the worldmodel package.
type WorldModelView struct {
	Preferences       Preferences
	ConfirmedDomains  map[string]bool // set of domains with a confirmed problem
}

// Score computes the clamped [0,1] Problem Score for gap, given an
// optional baseline and world model view. A nil baseline degrades the
// severity signal to its unshifted base value, per spec §4.4.
func Score(gap model.Gap, baseline *model.Baseline, wm WorldModelView, ctx *Context) float64 {
	c := Context{}
	if ctx != nil {
		c = *ctx
	} else {
		c = contextFromNow(time.Now())
	}

	persistence := persistenceScore(gap)
	severity := severityScore(gap, baseline)
	context := contextScore(gap, c, wm)
	preference := preferenceViolationScore(gap, wm)
	cost := unsolvedCostScore(gap)

	total := persistence*0.25 + severity*0.25 + context*0.20 + preference*0.15 + cost*0.15

	if total > 1.0 {
		return 1.0
	}
	if total < 0.0 {
		return 0.0
	}
	return total
}

func persistenceScore(gap model.Gap) float64 {
	if t := gap.Evidence.Trend; t == "increasing" || t == "decreasing" || t == "stable" {
		return 0.8
	}
	switch {
	case gap.Evidence.RecurrenceCount >= 3:
		return 0.9
	case gap.Evidence.RecurrenceCount >= 2:
		return 0.6
	default:
		return 0.2
	}
}

func severityBase(s model.Severity) float64 {
	switch s {
	case model.SeverityHigh:
		return 0.9
	case model.SeverityMedium:
		return 0.6
	case model.SeverityLow:
		return 0.3
	default:
		return 0.5
	}
}

func severityScore(gap model.Gap, baseline *model.Baseline) float64 {
	base := severityBase(gap.Severity)
	if baseline == nil {
		return base
	}
	current, ok := numeric(gap.Evidence.CurrentValue)
	if !ok || baseline.BaselineValue == 0 {
		return base
	}
	ratio := abs(current-baseline.BaselineValue) / baseline.BaselineValue
	switch {
	case ratio >= 0.5:
		return min(1.0, base+0.2)
	case ratio >= 0.2:
		return base
	default:
		return max(0.3, base-0.2)
	}
}

func contextScore(gap model.Gap, ctx Context, wm WorldModelView) float64 {
	hour := 12
	if ctx.Time != "" {
		if parts := strings.SplitN(ctx.Time, ":", 2); len(parts) == 2 {
			if h, err := strconv.Atoi(parts[0]); err == nil {
				hour = h
			}
		}
	}
	timeScore := 0.4
	if hour >= 9 && hour <= 18 {
		timeScore = 0.7
	}

	dayScore := 0.5
	switch strings.ToLower(ctx.Day) {
	case "monday", "tuesday", "wednesday", "thursday", "friday":
		dayScore = 0.8
	}

	domainImportance := 0.5
	if wm.ConfirmedDomains != nil && wm.ConfirmedDomains[gap.Domain] {
		domainImportance = 0.8
	}

	return (timeScore + dayScore + domainImportance) / 3
}

func preferenceViolationScore(gap model.Gap, wm WorldModelView) float64 {
	switch {
	case gap.Type == "notification_overload" && wm.Preferences.NotificationFrequency == "minimal":
		return 0.9
	case gap.Type == "automation_needed" && wm.Preferences.AutomationAcceptance == "low":
		return 0.7
	default:
		return 0.1
	}
}

var typeCost = map[string]float64{
	"missed_deadline":    0.9,
	"response_time":      0.7,
	"visibility":         0.6,
	"pattern_deviation":  0.4,
}

func unsolvedCostScore(gap model.Gap) float64 {
	costBySeverity := map[model.Severity]float64{
		model.SeverityHigh:   0.8,
		model.SeverityMedium: 0.5,
		model.SeverityLow:    0.2,
	}
	base, ok := costBySeverity[gap.Severity]
	if !ok {
		base = 0.5
	}
	tc, ok := typeCost[gap.Type]
	if !ok {
		tc = 0.5
	}
	return (base + tc) / 2
}

// FilterAndSort scores every gap, keeps those at or above threshold,
// and returns them sorted by descending score — filter_gaps_by_score.
func FilterAndSort(gaps []model.Gap, baseline *model.Baseline, wm WorldModelView, ctx *Context, threshold float64) []model.Gap {
	filtered := make([]model.Gap, 0, len(gaps))
	for _, g := range gaps {
		g.ProblemScore = Score(g, baseline, wm, ctx)
		if g.ProblemScore >= threshold {
			filtered = append(filtered, g)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ProblemScore > filtered[j].ProblemScore
	})
	return filtered
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

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
