package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/conflict"
	"github.com/shun1423/sia/internal/execution"
	"github.com/shun1423/sia/internal/idempotency"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/problem"
	"github.com/shun1423/sia/internal/proposal"
	"github.com/shun1423/sia/internal/ratelimit"
	"github.com/shun1423/sia/internal/worldmodel"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items map[string][]map[string]any
}

func (f fakeSource) Read(ctx context.Context, scope string, filters map[string]any) (capability.SourceResult, error) {
	return capability.SourceResult{Domain: scope, Data: map[string]any{"items": f.items[scope]}}, nil
}

func (f fakeSource) Write(ctx context.Context, action, resourceID string, data map[string]any) (capability.WriteResult, error) {
	return capability.WriteResult{Success: true}, nil
}

func newTestRuntime(t *testing.T, src capability.Source) *Runtime {
	t.Helper()
	store, err := worldmodel.Open(filepath.Join(t.TempDir(), "world_model.json"))
	require.NoError(t, err)

	exec := execution.NewRuntime(ratelimit.New(100, 60), idempotency.NewTracker(), conflict.NewManager(), nil)
	rt := NewRuntime(store, src, nil, exec)
	rt.Now = func() time.Time { return time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC) }
	return rt
}

func emailFixture() map[string][]map[string]any {
	items := []map[string]any{
		{"id": "e1", "hidden_priority": "low", "read": true},
		{"id": "e2", "hidden_priority": "low", "read": true},
		{"id": "e3", "hidden_priority": "low", "read": true},
		{"id": "e4", "hidden_priority": "low", "read": true},
		{"id": "e5", "hidden_priority": "low", "read": true},
		{"id": "e6", "hidden_priority": "high", "read": false},
	}
	return map[string][]map[string]any{"email": items}
}

func TestRunCycle_ProducesProposalsFromEmailGaps(t *testing.T) {
	rt := newTestRuntime(t, fakeSource{items: emailFixture()})

	report, err := rt.RunCycle(context.Background(), []string{"email"})

	require.NoError(t, err)
	require.Len(t, report.Domains, 1)
	domain := report.Domains[0]
	require.Equal(t, "email", domain.Domain)
	require.NotEmpty(t, domain.Gaps)
	require.NotEmpty(t, domain.Problems)
	require.NotEmpty(t, domain.Proposals)

	snap := rt.Store.Snapshot()
	require.Len(t, snap.Problems, len(domain.Problems))
	require.Equal(t, model.StatusProposed, snap.Problems[0].Status)
}

func TestRunCycle_NoGapsYieldsNoProposals(t *testing.T) {
	quiet := map[string][]map[string]any{"email": {
		{"id": "e1", "hidden_priority": "low", "read": true},
	}}
	rt := newTestRuntime(t, fakeSource{items: quiet})

	report, err := rt.RunCycle(context.Background(), []string{"email"})

	require.NoError(t, err)
	require.Empty(t, report.Domains[0].Proposals)
}

func TestDecide_ApprovePersistsConfirmedProblem(t *testing.T) {
	rt := newTestRuntime(t, fakeSource{items: emailFixture()})
	report, err := rt.RunCycle(context.Background(), []string{"email"})
	require.NoError(t, err)
	require.NotEmpty(t, report.Domains[0].Proposals)

	prop := report.Domains[0].Proposals[0]
	prob := report.Domains[0].Problems[0]

	require.NoError(t, rt.Decide(&prop, &prob, proposal.DecisionApprove, "", problem.SnoozeDefault))

	snap := rt.Store.Snapshot()
	require.Equal(t, model.StatusConfirmed, snap.Problems[0].Status)
}

func TestComposeAgentAndRunAgent_EndToEnd(t *testing.T) {
	rt := newTestRuntime(t, fakeSource{items: emailFixture()})
	report, err := rt.RunCycle(context.Background(), []string{"email"})
	require.NoError(t, err)
	require.NotEmpty(t, report.Domains[0].Proposals)

	prop := report.Domains[0].Proposals[0]
	prob := report.Domains[0].Problems[0]
	require.NoError(t, rt.Decide(&prop, &prob, proposal.DecisionApprove, "", problem.SnoozeDefault))

	cfg, err := rt.ComposeAgent(prop, &prob)
	require.NoError(t, err)
	require.Equal(t, "email", cfg.Domain)

	result, err := rt.RunAgent(context.Background(), cfg.ID, execution.Input{
		Emails: emailFixture()["email"],
	}, nil)
	require.NoError(t, err)
	require.Equal(t, cfg.ID, result.AgentID)
}

func TestComposeAgent_RejectsUnconfirmedProblem(t *testing.T) {
	rt := newTestRuntime(t, fakeSource{items: emailFixture()})
	prob := model.Problem{ID: "p1", Domain: "email", Status: model.StatusProposed}
	prop := model.Proposal{RecommendedSolution: model.Solution{ID: "sol_1", Name: "x"}}

	_, err := rt.ComposeAgent(prop, &prob)
	require.Error(t, err)
}
