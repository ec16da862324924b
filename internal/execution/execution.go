// Package execution implements the Execution stage: running a
// composed AgentConfig's actions against domain data, ported from
// original_source/layers/execution.py's execute_agent (v3.2,
// actions-based path). Each action passes through rate limiting,
// policy, an approval gate, idempotency, and conflict arbitration
// before its effect simulates.
//
// execute_agent's legacy workflow-based path (the pre-v3.2 step list
// keyed by action/tool rather than by typed Action/resource) has no
// home in model.AgentConfig, which carries only Actions — the
// workflow path is dropped rather than ported, since nothing in this
// module ever produces a Workflow to execute.
package execution

import (
	"fmt"
	"strings"

	"github.com/shun1423/sia/internal/audit"
	"github.com/shun1423/sia/internal/backoff"
	"github.com/shun1423/sia/internal/conflict"
	"github.com/shun1423/sia/internal/execution/effects"
	"github.com/shun1423/sia/internal/idempotency"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/policy"
	"github.com/shun1423/sia/internal/ratelimit"
)

// defaultResource is the rate-limit bucket key for every action, since
// model.Action carries no per-action resource field (agent_config's
// action.get("resource", "default") never resolves to anything else
// in practice, since no composed action sets one).
const defaultResource = "default"

// Input is the domain data one Execute run operates over. Exactly one
// field is populated per run, matching cfg.Domain.
type Input struct {
	Emails        []effects.Item
	PRs           []effects.Item
	HealthRecords []effects.Item
	Transactions  []effects.Item
}

func (in Input) itemsFor(domain string) []effects.Item {
	switch domain {
	case "email":
		return in.Emails
	case "github":
		return in.PRs
	case "health":
		return in.HealthRecords
	case "finance":
		return in.Transactions
	default:
		return nil
	}
}

// Runtime owns the stateful cross-cutting collaborators an Execute run
// consults. The Python keeps these as module-level singletons
// (get_conflict_manager, the rate-limit/idempotency module globals);
// here each lives as a struct field a caller wires in once.
type Runtime struct {
	RateLimiter *ratelimit.Limiter
	Idempotency *idempotency.Tracker
	Conflicts   *conflict.Manager
	Audit       *audit.Logger
	MaxRetries  int
}

// NewRuntime wires a Runtime from its collaborators, defaulting
// MaxRetries to backoff.DefaultMaxRetries.
func NewRuntime(limiter *ratelimit.Limiter, idem *idempotency.Tracker, conflicts *conflict.Manager, auditLogger *audit.Logger) *Runtime {
	return &Runtime{
		RateLimiter: limiter,
		Idempotency: idem,
		Conflicts:   conflicts,
		Audit:       auditLogger,
		MaxRetries:  backoff.DefaultMaxRetries,
	}
}

// Execute runs every action in cfg.Actions against input, in order,
// and returns the aggregated ExecutionResult. triggerEventID is
// whatever scheduler/dispatch event caused this run and is carried
// through only for the audit trail.
func (rt *Runtime) Execute(cfg model.AgentConfig, policyCfg model.PolicyConfig, input Input, triggerEventID string) model.ExecutionResult {
	items := input.itemsFor(cfg.Domain)
	results := make([]model.ActionResult, 0, len(cfg.Actions))

	for _, action := range cfg.Actions {
		result, skip := rt.runOne(cfg, policyCfg, action, items)
		results = append(results, result)
		_ = skip
	}

	triage := backoff.HandlePartialFailure(results, rt.MaxRetries)
	summary := summarize(results, triage)

	if rt.Audit != nil {
		rt.Audit.LogExecution(cfg.ID, triggerEventID, results, summary)
	}

	return model.ExecutionResult{
		AgentID:       cfg.ID,
		Domain:        cfg.Domain,
		ActionResults: results,
		Summary:       summary,
		ProcessedData: []map[string]any(toMapSlice(items)),
	}
}

// runOne pushes one action through the rate-limit/policy/approval/
// idempotency/conflict gate chain and, once past it, simulates the
// action's domain effect.
func (rt *Runtime) runOne(cfg model.AgentConfig, policyCfg model.PolicyConfig, action model.Action, items []effects.Item) (model.ActionResult, bool) {
	if rt.RateLimiter != nil {
		decision := rt.RateLimiter.Check(defaultResource)
		if !decision.Allowed {
			return model.ActionResult{
				Action:     action.Do,
				Outcome:    model.OutcomeRateLimited,
				Reason:     fmt.Sprintf("rate limit exceeded, retry after %.1fs", decision.RetryAfter.Seconds()),
				RetryAfter: decision.RetryAfter,
			}, true
		}
	}

	permission := policy.Check(action.Do, policyCfg, &cfg)
	if !permission.Allowed {
		return model.ActionResult{Action: action.Do, Outcome: model.OutcomeBlocked, Reason: permission.Reason}, true
	}

	if action.RequiresApproval && permission.RequiresApproval {
		return model.ActionResult{Action: action.Do, Outcome: model.OutcomePendingApproval, Reason: "user approval is required"}, true
	}

	resourceID := firstID(items)
	if resourceID != "" {
		if rt.Idempotency != nil {
			eventID := idempotency.GenerateEventID(action.Do, resourceID, map[string]any{"domain": cfg.Domain})
			if rt.Idempotency.CheckAndMark(eventID) {
				return model.ActionResult{Action: action.Do, ResourceID: resourceID, Outcome: model.OutcomeSkippedIdempotent, Reason: "event already processed"}, true
			}
		}

		if rt.Conflicts != nil {
			priority := conflict.PriorityForRisk(cfg.RiskLevel)
			report := rt.Conflicts.CheckConflict(cfg.ID, action, resourceID)
			if report.HasConflict && !rt.Conflicts.AcquireLock(cfg.ID, resourceID, action, priority) {
				return model.ActionResult{
					Action:     action.Do,
					ResourceID: resourceID,
					Outcome:    model.OutcomeConflict,
					Reason:     fmt.Sprintf("resource held by %s", report.ConflictingAgent),
				}, true
			}
			rt.Conflicts.AcquireLock(cfg.ID, resourceID, action, priority)
		}
	}

	result := runEffect(cfg.Domain, action, items)
	result.ResourceID = resourceID

	if resourceID != "" && cfg.Domain == "email" && strings.Contains(action.Do, "apply_label") && rt.Conflicts != nil {
		rt.Conflicts.ReleaseLock(resourceID)
	}

	return result, false
}

// runEffect dispatches to the domain-specific effect simulation
// keyed off a substring of action.Do, matching execute_agent's
// "if domain == X and keyword in action_do" chain.
func runEffect(domain string, action model.Action, items []effects.Item) model.ActionResult {
	do := action.Do

	switch {
	case domain == "email" && strings.Contains(do, "apply_label"):
		count, output := effects.ApplyEmailLabel(items)
		return model.ActionResult{Action: do, Outcome: model.OutcomeSuccess, Output: map[string]any{"message": output, "count": count}}
	case domain == "github" && strings.Contains(do, "review_pr"):
		count, output := effects.ReviewPRs(items)
		return model.ActionResult{Action: do, Outcome: model.OutcomeSuccess, Output: map[string]any{"message": output, "count": count}}
	case domain == "health" && strings.Contains(do, "track_goal"):
		count, output := effects.TrackHealthGoal(items)
		return model.ActionResult{Action: do, Outcome: model.OutcomeSuccess, Output: map[string]any{"message": output, "count": count}}
	case domain == "finance" && strings.Contains(do, "categorize"):
		count, output := effects.CategorizeTransactions(items)
		return model.ActionResult{Action: do, Outcome: model.OutcomeSuccess, Output: map[string]any{"message": output, "count": count}}
	default:
		return model.ActionResult{
			Action:  do,
			Outcome: model.OutcomeSkippedIdempotent,
			Reason:  fmt.Sprintf("action %q is not yet implemented for domain %q", do, domain),
		}
	}
}

// firstID returns the "id" field of the first item, or "" if items is
// empty or the first item has none.
func firstID(items []effects.Item) string {
	if len(items) == 0 {
		return ""
	}
	id, _ := items[0]["id"].(string)
	return id
}

func toMapSlice(items []effects.Item) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// summarize builds an ExecutionSummary from one run's results and its
// backoff triage, matching execute_agent's summary dict.
func summarize(results []model.ActionResult, triage backoff.Triage) model.ExecutionSummary {
	var s model.ExecutionSummary
	s.TotalSteps = len(results)

	for _, r := range results {
		switch r.Outcome {
		case model.OutcomeSuccess:
			s.CompletedSteps++
		case model.OutcomeBlocked:
			s.BlockedSteps++
		case model.OutcomePendingApproval:
			s.PendingApproval++
		case model.OutcomeRateLimited:
			s.RateLimited++
		case model.OutcomeSkippedIdempotent:
			s.SkippedIdempotent++
		}
	}

	s.FailedSteps = len(triage.Failed)
	s.RetriedSteps = len(triage.Retried)

	if len(results) > 0 {
		s.SuccessRate = float64(s.CompletedSteps) / float64(len(results))
	}

	return s
}
