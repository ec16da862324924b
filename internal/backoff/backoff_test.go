package backoff

import (
	"testing"
	"time"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDelay_GrowsExponentiallyUntilCapped(t *testing.T) {
	require.Equal(t, 1*time.Second, Delay(0, time.Second, 60*time.Second, 2.0))
	require.Equal(t, 2*time.Second, Delay(1, time.Second, 60*time.Second, 2.0))
	require.Equal(t, 4*time.Second, Delay(2, time.Second, 60*time.Second, 2.0))
	require.Equal(t, 60*time.Second, Delay(10, time.Second, 60*time.Second, 2.0))
}

func TestDefaultDelay_MatchesSpecDefaults(t *testing.T) {
	require.Equal(t, DefaultBase, DefaultDelay(0))
	require.Equal(t, DefaultMax, DefaultDelay(6))
}

func TestHandlePartialFailure_SortsByOutcome(t *testing.T) {
	results := []model.ActionResult{
		{ResourceID: "a", Outcome: model.OutcomeSuccess},
		{ResourceID: "b", Outcome: model.OutcomeFailed, Attempts: 0},
		{ResourceID: "c", Outcome: model.OutcomeBlocked},
	}

	triage := HandlePartialFailure(results, DefaultMaxRetries)
	require.Len(t, triage.Successful, 2)
	require.Len(t, triage.Retried, 1)
	require.Equal(t, 1, triage.Retried[0].Attempts)
	require.Empty(t, triage.Failed)
}

func TestHandlePartialFailure_GivesUpAfterMaxRetries(t *testing.T) {
	results := []model.ActionResult{
		{ResourceID: "a", Outcome: model.OutcomeFailed, Attempts: DefaultMaxRetries},
	}

	triage := HandlePartialFailure(results, DefaultMaxRetries)
	require.Len(t, triage.Failed, 1)
	require.Empty(t, triage.Retried)
}

func TestHandlePartialFailure_BlockedIsNotRetried(t *testing.T) {
	results := []model.ActionResult{
		{ResourceID: "a", Outcome: model.OutcomeBlocked},
		{ResourceID: "b", Outcome: model.OutcomeSkippedIdempotent},
	}

	triage := HandlePartialFailure(results, DefaultMaxRetries)
	require.Empty(t, triage.Failed)
	require.Empty(t, triage.Retried)
	require.Len(t, triage.Successful, 2)
}
