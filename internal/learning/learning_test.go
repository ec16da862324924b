package learning

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/worldmodel"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_ComputesSuccessRateFromActionResults(t *testing.T) {
	result := model.ExecutionResult{
		Domain: "email",
		ActionResults: []model.ActionResult{
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeSuccess},
			{Outcome: model.OutcomeBlocked},
		},
		ProcessedData: []map[string]any{{"id": "e1"}, {"id": "e2"}},
	}
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	analysis := Analyze(result, nil, now)

	require.InDelta(t, 2.0/3.0, analysis.SuccessRate, 1e-9)
	require.Equal(t, 2, analysis.ProcessedItems)
	require.Equal(t, "email", analysis.Domain)
	require.Equal(t, defaultSatisfaction, analysis.UserSatisfaction)
}

func TestAnalyze_UsesSuppliedFeedback(t *testing.T) {
	result := model.ExecutionResult{Domain: "github"}
	feedback := &model.UserFeedback{Satisfaction: 0.9}

	analysis := Analyze(result, feedback, time.Now())

	require.Equal(t, 0.9, analysis.UserSatisfaction)
}

func TestAnalyze_EmptyResultsYieldZeroSuccessRate(t *testing.T) {
	analysis := Analyze(model.ExecutionResult{Domain: "health"}, nil, time.Now())
	require.Equal(t, 0.0, analysis.SuccessRate)
}

func TestUpdateWorldModel_AppendsPatternAboveBothThresholds(t *testing.T) {
	store, err := worldmodel.Open(filepath.Join(t.TempDir(), "world_model.json"))
	require.NoError(t, err)

	analysis := Analysis{SuccessRate: 0.9, UserSatisfaction: 0.8, Domain: "email", Timestamp: time.Now()}
	require.NoError(t, UpdateWorldModel(store, analysis))

	snap := store.Snapshot()
	require.Len(t, snap.Patterns, 1)
	require.Equal(t, "pattern_1", snap.Patterns[0].ID)
	require.Equal(t, "email", snap.Patterns[0].Domain)
}

func TestUpdateWorldModel_NoopBelowThreshold(t *testing.T) {
	store, err := worldmodel.Open(filepath.Join(t.TempDir(), "world_model.json"))
	require.NoError(t, err)

	analysis := Analysis{SuccessRate: 0.5, UserSatisfaction: 0.9, Domain: "email", Timestamp: time.Now()}
	require.NoError(t, UpdateWorldModel(store, analysis))

	require.Empty(t, store.Snapshot().Patterns)
}

func TestUpdateWorldModel_ErrorsWithoutDomain(t *testing.T) {
	store, err := worldmodel.Open(filepath.Join(t.TempDir(), "world_model.json"))
	require.NoError(t, err)

	err = UpdateWorldModel(store, Analysis{SuccessRate: 0.95, UserSatisfaction: 0.95})
	require.Error(t, err)
}

func TestUpdateWorldModel_PatternIDsIncrementAcrossCalls(t *testing.T) {
	store, err := worldmodel.Open(filepath.Join(t.TempDir(), "world_model.json"))
	require.NoError(t, err)

	a := Analysis{SuccessRate: 0.9, UserSatisfaction: 0.8, Domain: "email", Timestamp: time.Now()}
	require.NoError(t, UpdateWorldModel(store, a))
	require.NoError(t, UpdateWorldModel(store, a))

	snap := store.Snapshot()
	require.Len(t, snap.Patterns, 2)
	require.Equal(t, "pattern_2", snap.Patterns[1].ID)
}
