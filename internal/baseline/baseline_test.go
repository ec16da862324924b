package baseline

import (
	"testing"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCalculate_EmptyHistoryReturnsNil(t *testing.T) {
	b, err := Calculate("email", nil, 3)
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestCalculate_AveragesWindowedHistory(t *testing.T) {
	history := []model.HistoryRecord{
		{Domain: "email", Values: map[string]any{"avg_response_time_hours": 1.0}},
		{Domain: "email", Values: map[string]any{"avg_response_time_hours": 2.0}},
		{Domain: "email", Values: map[string]any{"avg_response_time_hours": 3.0}},
	}
	b, err := Calculate("email", history, 3)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.InDelta(t, 2.0, b.BaselineValue, 0.001)
}

func TestCalculate_OutOfRangeWindowFallsBackToDefault(t *testing.T) {
	history := []model.HistoryRecord{{Domain: "github", Values: map[string]any{"avg_review_time_hours": 10.0}}}
	b, err := Calculate("github", history, 99)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, "3 weeks", b.BaselinePeriod)
}

func TestCalculate_IsIdempotentForUnchangedHistory(t *testing.T) {
	history := []model.HistoryRecord{
		{Domain: "health", Values: map[string]any{"avg_sleep_hours": 6.5}},
	}
	first, err := Calculate("health", history, 3)
	require.NoError(t, err)
	second, err := Calculate("health", history, 3)
	require.NoError(t, err)
	require.Equal(t, first.BaselineValue, second.BaselineValue)
}
