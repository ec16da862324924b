package scoring

import (
	"testing"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

func TestScore_ClampedToUnitInterval(t *testing.T) {
	gap := model.Gap{
		Type:     "visibility",
		Domain:   "email",
		Severity: model.SeverityHigh,
		Evidence: model.Evidence{Trend: "increasing", RecurrenceCount: 5},
	}
	score := Score(gap, nil, WorldModelView{}, nil)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 1.0)
}

func TestScore_HighSeverityPersistentGapScoresHigh(t *testing.T) {
	ctx := &Context{Day: "monday", Time: "10:00"}
	gap := model.Gap{
		Type:     "visibility",
		Domain:   "email",
		Severity: model.SeverityHigh,
		Evidence: model.Evidence{RecurrenceCount: 3},
	}
	score := Score(gap, nil, WorldModelView{}, ctx)
	require.GreaterOrEqual(t, score, 0.7, "scenario 1 from spec expects ~0.75")
}

func TestSeverityScore_ShiftsWithBaselineDeviation(t *testing.T) {
	gap := model.Gap{Severity: model.SeverityMedium, Evidence: model.Evidence{CurrentValue: 10.0}}
	low := severityScore(gap, &model.Baseline{BaselineValue: 9.5})  // ratio ~0.05
	mid := severityScore(gap, &model.Baseline{BaselineValue: 8.0})  // ratio 0.25
	high := severityScore(gap, &model.Baseline{BaselineValue: 5.0}) // ratio 1.0

	require.Less(t, low, mid)
	require.Less(t, mid, high)
}

func TestFilterAndSort_DropsBelowThresholdAndSortsDescending(t *testing.T) {
	gaps := []model.Gap{
		{Type: "visibility", Severity: model.SeverityLow, Evidence: model.Evidence{}},
		{Type: "missed_deadline", Severity: model.SeverityHigh, Evidence: model.Evidence{RecurrenceCount: 3, Trend: "increasing"}},
	}
	filtered := FilterAndSort(gaps, nil, WorldModelView{}, &Context{Day: "monday", Time: "10:00"}, 0.5)
	require.Len(t, filtered, 1)
	require.Equal(t, "missed_deadline", filtered[0].Type)
}
