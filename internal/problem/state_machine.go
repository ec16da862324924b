// Package problem implements the Problem State Machine: the fixed
// transition graph a Problem moves through from first detection to
// archival, ported from
// original_source/utils/problem_state_machine.py.
package problem

import (
	"time"

	"github.com/shun1423/sia/internal/engerr"
	"github.com/shun1423/sia/internal/model"
)

// allowedTransitions is the fixed edge set of the state machine.
var allowedTransitions = map[model.ProblemStatus][]model.ProblemStatus{
	model.StatusCandidate: {model.StatusProposed},
	model.StatusProposed:  {model.StatusConfirmed, model.StatusRejected, model.StatusSnoozed},
	model.StatusConfirmed: {model.StatusArchived},
	model.StatusRejected:  {},
	model.StatusSnoozed:   {model.StatusCandidate, model.StatusRejected},
	model.StatusArchived:  {},
}

// CanTransition reports whether target is reachable from current in
// one step.
func CanTransition(current, target model.ProblemStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Clock is injected so tests can control "now"; defaults to
// time.Now.
type Clock func() time.Time

// DefaultSnoozeDays is the duration a caller gets by passing
// SnoozeDefault to Snooze instead of an explicit day count.
const DefaultSnoozeDays = 7

// SnoozeDefault is the sentinel a caller passes to Snooze to request
// DefaultSnoozeDays. It is distinct from 0: an explicit days=0 means
// "snooze until now" and must be immediately reversible (spec law:
// snooze(p, 0 days); check_snoozed() yields Candidate with an
// extended history), matching snooze_problem's own
// caller-omits-the-argument-vs-passes-zero distinction in
// original_source/utils/problem_state_machine.py.
const SnoozeDefault = -1

// Transition drives p from its current status to target, validating
// the edge, stamping updated_at and the status-specific timestamp
// field, and appending one transition_history entry. Disallowed edges
// return *engerr.TransitionError wrapping engerr.ErrIllegalTransition.
func Transition(p *model.Problem, target model.ProblemStatus, userAction, reason string, now Clock) error {
	if now == nil {
		now = time.Now
	}
	current := p.Status
	if current == "" {
		current = model.StatusCandidate
	}
	if !CanTransition(current, target) {
		return &engerr.TransitionError{From: string(current), To: string(target), Action: userAction}
	}

	ts := now()
	p.Status = target
	p.UpdatedAt = ts
	p.TransitionHistory = append(p.TransitionHistory, model.Transition{
		From:       current,
		To:         target,
		UserAction: userAction,
		Reason:     reason,
		Timestamp:  ts,
	})

	switch target {
	case model.StatusProposed:
		p.ProposedAt = &ts
	case model.StatusConfirmed:
		p.ConfirmedAt = &ts
	case model.StatusRejected:
		p.RejectedAt = &ts
	case model.StatusSnoozed:
		p.SnoozedAt = &ts
		// SnoozeUntil itself is stamped by Snooze, which calls
		// Transition before applying the caller's requested duration.
	case model.StatusArchived:
		p.ArchivedAt = &ts
	}

	return nil
}

// PromoteToProposed is the system-driven Candidate -> Proposed edge.
func PromoteToProposed(p *model.Problem, now Clock) error {
	return Transition(p, model.StatusProposed, "system_propose", "", now)
}

// Confirm is the user-driven Proposed -> Confirmed edge.
func Confirm(p *model.Problem, userAction string, now Clock) error {
	if userAction == "" {
		userAction = "user_approve"
	}
	return Transition(p, model.StatusConfirmed, userAction, "", now)
}

// Reject is the user-driven {Proposed,Snoozed} -> Rejected edge.
func Reject(p *model.Problem, reason string, now Clock) error {
	return Transition(p, model.StatusRejected, "user_reject", reason, now)
}

// Snooze is the user-driven Proposed -> Snoozed edge, with an
// explicit snooze duration in days. Pass SnoozeDefault to get
// DefaultSnoozeDays; any other value, including 0 or negative, is
// applied literally — days=0 snoozes until now, so it is immediately
// reversible by the next CheckSnoozed sweep, per the spec's
// reversibility law. A negative duration besides SnoozeDefault
// behaves the same as 0 (SnoozeUntil in the past, reversible
// immediately) rather than being silently clamped to the default.
func Snooze(p *model.Problem, days int, reason string, now Clock) error {
	if now == nil {
		now = time.Now
	}
	if err := Transition(p, model.StatusSnoozed, "user_snooze", reason, now); err != nil {
		return err
	}
	if days == SnoozeDefault {
		days = DefaultSnoozeDays
	}
	until := now().AddDate(0, 0, days)
	p.SnoozeUntil = &until
	return nil
}

// Archive is the Confirmed -> Archived edge.
func Archive(p *model.Problem, reason string, now Clock) error {
	return Transition(p, model.StatusArchived, "user_archive", reason, now)
}

// CheckSnoozed sweeps problems, transitioning every Snoozed problem
// whose SnoozeUntil has passed back to Candidate, and returns the
// problems it changed.
func CheckSnoozed(problems []*model.Problem, now Clock) []*model.Problem {
	if now == nil {
		now = time.Now
	}
	current := now()
	var reevaluated []*model.Problem
	for _, p := range problems {
		if p.Status != model.StatusSnoozed || p.SnoozeUntil == nil {
			continue
		}
		if !current.Before(*p.SnoozeUntil) {
			if err := Transition(p, model.StatusCandidate, "system_reevaluate", "snooze period expired", now); err == nil {
				reevaluated = append(reevaluated, p)
			}
		}
	}
	return reevaluated
}
