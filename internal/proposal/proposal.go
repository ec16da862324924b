// Package proposal implements the Proposal stage: picking the best
// explored Solution, packaging it with its alternatives into a
// Proposal, and driving the Problem State Machine transition the
// user's decision on that Proposal implies. Ported from
// original_source/layers/proposal.py's select_best_solution /
// create_proposal.
package proposal

import (
	"fmt"

	"github.com/shun1423/sia/internal/engerr"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/problem"
)

// complexityScore ports select_best_solution's complexity_score
// table: a cheaper solution scores higher, all else equal.
var complexityScore = map[string]int{
	"low":    3,
	"medium": 2,
	"high":   1,
}

// SelectBest ports select_best_solution: the candidate maximizing
// len(pros) - len(cons) + complexityScore, ties keeping the earliest
// entrant. Returns false if solutions is empty.
func SelectBest(solutions []model.Solution) (model.Solution, bool) {
	if len(solutions) == 0 {
		return model.Solution{}, false
	}

	best := solutions[0]
	bestScore := solutionScore(best)
	for _, sol := range solutions[1:] {
		if score := solutionScore(sol); score > bestScore {
			best = sol
			bestScore = score
		}
	}
	return best, true
}

func solutionScore(sol model.Solution) int {
	score, ok := complexityScore[sol.Complexity]
	if !ok {
		score = 1
	}
	return len(sol.Pros) - len(sol.Cons) + score
}

// Create ports create_proposal: selects selected (or the best of
// solutions if selected is the zero value), promotes prob to
// StatusProposed when it is still a StatusCandidate, and returns the
// assembled Proposal alongside the (possibly promoted) Problem.
func Create(
	prob model.Problem,
	solutions []model.Solution,
	selected *model.Solution,
	autoPromote bool,
	now problem.Clock,
) (model.Proposal, model.Problem, error) {
	var chosen model.Solution
	if selected != nil {
		chosen = *selected
	} else {
		best, ok := SelectBest(solutions)
		if !ok {
			return model.Proposal{}, prob, engerr.ErrNoSolution
		}
		chosen = best
	}

	if autoPromote && prob.Status == model.StatusCandidate {
		if err := problem.PromoteToProposed(&prob, now); err != nil {
			// A failed promotion is not fatal to proposal creation —
			// proceed with the problem in whatever state it is.
			_ = err
		}
	}

	var alternatives []model.Solution
	for _, sol := range solutions {
		if sol.ID != chosen.ID {
			alternatives = append(alternatives, sol)
		}
	}

	createdAt := prob.DetectedAt
	if prob.ProposedAt != nil {
		createdAt = *prob.ProposedAt
	}

	return model.Proposal{
		ID:                   fmt.Sprintf("proposal_%s", prob.ID),
		Problem:              prob,
		RecommendedSolution:  chosen,
		AlternativeSolutions: alternatives,
		Status:               model.ProposalPending,
		CreatedAt:            createdAt,
	}, prob, nil
}

// Decide applies the user's decision on a Proposal to both the
// Proposal's own status and the underlying Problem State Machine,
// keeping the two in lockstep the way create_proposal's v3.2 state
// machine integration intends. snoozeDays is only consulted for
// DecisionSnooze; pass problem.SnoozeDefault for the usual 7-day
// snooze, or an explicit day count — including 0, which the state
// machine's reversibility law requires to snooze until now rather
// than silently becoming the default.
func Decide(prop *model.Proposal, prob *model.Problem, decision ProposalDecision, reason string, snoozeDays int, now problem.Clock) error {
	switch decision {
	case DecisionApprove:
		if err := problem.Confirm(prob, "approve", now); err != nil {
			return err
		}
		prop.Status = model.ProposalApproved
	case DecisionReject:
		if err := problem.Reject(prob, reason, now); err != nil {
			return err
		}
		prop.Status = model.ProposalRejected
	case DecisionSnooze:
		if err := problem.Snooze(prob, snoozeDays, reason, now); err != nil {
			return err
		}
		prop.Status = model.ProposalSnoozed
	default:
		return fmt.Errorf("proposal: unknown decision %q", decision)
	}
	return nil
}

// ProposalDecision is the verb a Presenter passes to Decide.
type ProposalDecision string

const (
	DecisionApprove ProposalDecision = "approve"
	DecisionReject  ProposalDecision = "reject"
	DecisionSnooze  ProposalDecision = "snooze"
)
