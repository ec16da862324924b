package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	byDomain map[string][]map[string]any
}

func (f fakeSource) Read(ctx context.Context, scope string, filters map[string]any) (capability.SourceResult, error) {
	return capability.SourceResult{Domain: scope, Data: map[string]any{"items": f.byDomain[scope]}}, nil
}

func (f fakeSource) Write(ctx context.Context, action, resourceID string, data map[string]any) (capability.WriteResult, error) {
	return capability.WriteResult{Success: true}, nil
}

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestSense_EmailComputesUnreadCount(t *testing.T) {
	src := fakeSource{byDomain: map[string][]map[string]any{
		"email": {
			{"id": "1", "read": true},
			{"id": "2", "read": false},
			{"id": "3", "read": false},
		},
	}}

	cs, err := Sense(context.Background(), src, []string{"email"}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "email", cs.Domain)
	require.Equal(t, 3, cs.Data["total_emails"])
	require.Equal(t, 2, cs.Data["unread_count"])
}

func TestSense_GithubComputesOldPendingReviews(t *testing.T) {
	src := fakeSource{byDomain: map[string][]map[string]any{
		"github": {
			{"status": "open", "review_status": "pending", "age_hours": 72.0},
			{"status": "open", "review_status": "pending", "age_hours": 2.0},
			{"status": "closed", "review_status": "approved"},
		},
	}}

	cs, err := Sense(context.Background(), src, []string{"github"}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, 2, cs.Data["open_prs"])
	require.Equal(t, 2, cs.Data["pending_reviews"])
	require.Equal(t, 1, cs.Data["old_prs"])
}

func TestSense_HealthAveragesSleepAndSteps(t *testing.T) {
	src := fakeSource{byDomain: map[string][]map[string]any{
		"health": {
			{"sleep": map[string]any{"duration_hours": 8.0}, "activity": map[string]any{"steps": 10000.0}},
			{"sleep": map[string]any{"duration_hours": 6.0}, "activity": map[string]any{"steps": 6000.0}},
		},
	}}

	cs, err := Sense(context.Background(), src, []string{"health"}, fixedNow)
	require.NoError(t, err)
	require.InDelta(t, 7.0, cs.Data["average_sleep_hours"], 0.001)
	require.InDelta(t, 8000.0, cs.Data["average_steps"], 0.001)
}

func TestSense_FinanceAggregatesByCategory(t *testing.T) {
	src := fakeSource{byDomain: map[string][]map[string]any{
		"finance": {
			{"amount": 50.0, "category": "groceries"},
			{"amount": 30.0, "category": "groceries"},
			{"amount": 20.0, "category": "transport"},
		},
	}}

	cs, err := Sense(context.Background(), src, []string{"finance"}, fixedNow)
	require.NoError(t, err)
	require.InDelta(t, 100.0, cs.Data["total_spending"], 0.001)
	spending := cs.Data["category_spending"].(map[string]float64)
	require.InDelta(t, 80.0, spending["groceries"], 0.001)
}

func TestSense_MultiDomainCombinesData(t *testing.T) {
	src := fakeSource{byDomain: map[string][]map[string]any{
		"email":  {{"read": false}},
		"github": {{"status": "open"}},
	}}

	cs, err := Sense(context.Background(), src, []string{"email", "github"}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "multi", cs.Domain)
	require.Equal(t, []string{"email", "github"}, cs.Domains)
	require.Equal(t, 1, cs.Data["total_emails"])
	require.Equal(t, 1, cs.Data["total_prs"])
}

func TestDomainsFromSources_DetectsActiveKnownSources(t *testing.T) {
	sources := map[string]model.ConnectedSource{
		"Gmail":  {Status: "active"},
		"GitHub": {Status: "inactive"},
	}
	domains := DomainsFromSources(sources)
	require.Equal(t, []string{"email"}, domains)
}

func TestDomainsFromSources_FallsBackToEmail(t *testing.T) {
	domains := DomainsFromSources(nil)
	require.Equal(t, []string{"email"}, domains)
}
