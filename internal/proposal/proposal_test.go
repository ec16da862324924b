package proposal

import (
	"testing"
	"time"

	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/problem"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSelectBest_PrefersHigherNetProsAndLowerComplexity(t *testing.T) {
	solutions := []model.Solution{
		{ID: "a", Pros: []string{"1"}, Complexity: "high"},
		{ID: "b", Pros: []string{"1", "2"}, Complexity: "low"},
	}
	best, ok := SelectBest(solutions)
	require.True(t, ok)
	require.Equal(t, "b", best.ID)
}

func TestSelectBest_EmptyYieldsFalse(t *testing.T) {
	_, ok := SelectBest(nil)
	require.False(t, ok)
}

func TestCreate_PromotesCandidateAndPicksAlternatives(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	prob := model.Problem{ID: "problem_1", Status: model.StatusCandidate, DetectedAt: now}
	solutions := []model.Solution{
		{ID: "sol_1", Pros: []string{"1"}, Complexity: "low"},
		{ID: "sol_2", Pros: []string{"1", "2"}, Complexity: "low"},
	}

	prop, updated, err := Create(prob, solutions, nil, true, fixedClock(now))
	require.NoError(t, err)
	require.Equal(t, model.StatusProposed, updated.Status)
	require.Equal(t, "sol_2", prop.RecommendedSolution.ID)
	require.Len(t, prop.AlternativeSolutions, 1)
	require.Equal(t, "sol_1", prop.AlternativeSolutions[0].ID)
	require.Equal(t, model.ProposalPending, prop.Status)
	require.Equal(t, "proposal_problem_1", prop.ID)
}

func TestCreate_NoSolutionsReturnsError(t *testing.T) {
	prob := model.Problem{ID: "problem_1", Status: model.StatusCandidate}
	_, _, err := Create(prob, nil, nil, true, fixedClock(time.Now()))
	require.Error(t, err)
}

func TestCreate_UsesExplicitSelection(t *testing.T) {
	prob := model.Problem{ID: "problem_1", Status: model.StatusCandidate}
	solutions := []model.Solution{{ID: "sol_1"}, {ID: "sol_2"}}
	explicit := solutions[0]

	prop, _, err := Create(prob, solutions, &explicit, false, fixedClock(time.Now()))
	require.NoError(t, err)
	require.Equal(t, "sol_1", prop.RecommendedSolution.ID)
}

func TestDecide_ApproveConfirmsProblemAndProposal(t *testing.T) {
	now := time.Now()
	prob := model.Problem{Status: model.StatusProposed}
	prop := model.Proposal{Status: model.ProposalPending}

	err := Decide(&prop, &prob, DecisionApprove, "", problem.SnoozeDefault, fixedClock(now))
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, prob.Status)
	require.Equal(t, model.ProposalApproved, prop.Status)
}

func TestDecide_RejectRejectsProblemAndProposal(t *testing.T) {
	prob := model.Problem{Status: model.StatusProposed}
	prop := model.Proposal{Status: model.ProposalPending}

	err := Decide(&prop, &prob, DecisionReject, "not useful", problem.SnoozeDefault, fixedClock(time.Now()))
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, prob.Status)
	require.Equal(t, model.ProposalRejected, prop.Status)
}

func TestDecide_SnoozeDefaultSetsSnoozeUntilInTheFuture(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	prob := model.Problem{Status: model.StatusProposed}
	prop := model.Proposal{Status: model.ProposalPending}

	err := Decide(&prop, &prob, DecisionSnooze, "later", problem.SnoozeDefault, fixedClock(now))
	require.NoError(t, err)
	require.Equal(t, model.StatusSnoozed, prob.Status)
	require.NotNil(t, prob.SnoozeUntil)
	require.True(t, prob.SnoozeUntil.After(now))
}

// TestDecide_SnoozeExplicitZeroIsImmediatelyReversible encodes
// spec.md's testable law literally: snooze(p, 0 days);
// check_snoozed() must yield a Candidate problem with an extended
// history, not silently fall back to the 7-day default.
func TestDecide_SnoozeExplicitZeroIsImmediatelyReversible(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	prob := model.Problem{Status: model.StatusProposed}
	prop := model.Proposal{Status: model.ProposalPending}

	err := Decide(&prop, &prob, DecisionSnooze, "later", 0, fixedClock(now))
	require.NoError(t, err)
	require.Equal(t, model.StatusSnoozed, prob.Status)
	require.NotNil(t, prob.SnoozeUntil)
	require.False(t, prob.SnoozeUntil.After(now))

	reevaluated := problem.CheckSnoozed([]*model.Problem{&prob}, fixedClock(now))
	require.Len(t, reevaluated, 1)
	require.Equal(t, model.StatusCandidate, prob.Status)
	require.Len(t, prob.TransitionHistory, 2)
}

func TestDecide_RejectsInvalidTransition(t *testing.T) {
	prob := model.Problem{Status: model.StatusCandidate}
	prop := model.Proposal{Status: model.ProposalPending}

	err := Decide(&prop, &prob, DecisionApprove, "", problem.SnoozeDefault, fixedClock(time.Now()))
	require.Error(t, err)
}
