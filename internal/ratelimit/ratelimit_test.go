package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheck_AllowsUpToMax(t *testing.T) {
	l := New(3, 60)
	for i := 0; i < 3; i++ {
		d := l.Check("gmail_api")
		require.True(t, d.Allowed)
	}
	d := l.Check("gmail_api")
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)
	require.True(t, d.RetryAfter > 0)
}

func TestCheck_TracksResourcesIndependently(t *testing.T) {
	l := New(1, 60)
	require.True(t, l.Check("gmail_api").Allowed)
	require.True(t, l.Check("slack_api").Allowed)
	require.False(t, l.Check("gmail_api").Allowed)
}

func TestCheck_WindowSlidesOldRequestsOut(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := base
	l := New(1, 60)
	l.now = func() time.Time { return cur }

	require.True(t, l.Check("gmail_api").Allowed)
	require.False(t, l.Check("gmail_api").Allowed)

	cur = base.Add(61 * time.Second)
	require.True(t, l.Check("gmail_api").Allowed)
}

func TestCheck_RetryAfterReflectsOldestRequestExpiry(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := base
	l := New(1, 60)
	l.now = func() time.Time { return cur }

	l.Check("gmail_api")
	cur = base.Add(10 * time.Second)
	d := l.Check("gmail_api")
	require.False(t, d.Allowed)
	require.InDelta(t, 50*time.Second, d.RetryAfter, float64(time.Second))
}
