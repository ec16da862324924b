// Package pipeline wires the ten SIA stages into the orchestrated
// cycle original_source/app.py's run_demo drives by hand: Sensor ->
// Expectation -> Comparison -> Interpretation -> Exploration ->
// Proposal, then — once a human confirms a Proposal — Composition ->
// Execution -> Learning. Runtime is the dependency-injection root: the
// Python's module-level singletons (the conflict manager, the audit
// logger, the rate limiter) all become fields owned by one Runtime
// value instead, per spec §9's no-package-level-singletons stance.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/comparison"
	"github.com/shun1423/sia/internal/composition"
	"github.com/shun1423/sia/internal/execution"
	"github.com/shun1423/sia/internal/expectation"
	"github.com/shun1423/sia/internal/exploration"
	"github.com/shun1423/sia/internal/interpretation"
	"github.com/shun1423/sia/internal/learning"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/problem"
	"github.com/shun1423/sia/internal/proposal"
	"github.com/shun1423/sia/internal/scoring"
	"github.com/shun1423/sia/internal/sensor"
	"github.com/shun1423/sia/internal/worldmodel"
)

// DefaultScoreThreshold is filter_gaps_by_score / compare_states'
// problem_score_threshold default.
const DefaultScoreThreshold = 0.5

// Runtime owns every collaborator one pipeline run needs: the World
// Model store, the domain Source, the optional LLM port, and the
// Execution stage's own Runtime (itself holding the rate
// limiter/idempotency tracker/conflict manager/audit logger).
type Runtime struct {
	Store     *worldmodel.Store
	Source    capability.Source
	LLM       capability.LLMPort
	Execution *execution.Runtime
	Now       func() time.Time

	ScoreThreshold float64
	AutoPromote    bool
}

// NewRuntime wires a Runtime, defaulting ScoreThreshold to
// DefaultScoreThreshold, Now to time.Now, and AutoPromote to true
// (matching run_demo's unconditional PromoteToProposed path).
func NewRuntime(store *worldmodel.Store, src capability.Source, llm capability.LLMPort, exec *execution.Runtime) *Runtime {
	return &Runtime{
		Store:          store,
		Source:         src,
		LLM:            llm,
		Execution:      exec,
		Now:            time.Now,
		ScoreThreshold: DefaultScoreThreshold,
		AutoPromote:    true,
	}
}

// DomainReport is one domain's outcome from a Sense-through-Proposal
// pass.
type DomainReport struct {
	Domain    string
	Gaps      []model.Gap
	Problems  []model.Problem
	Proposals []model.Proposal
}

// CycleReport is RunCycle's full result across every domain it swept.
type CycleReport struct {
	Domains []DomainReport
}

func (c CycleReport) TotalProposals() int {
	n := 0
	for _, d := range c.Domains {
		n += len(d.Proposals)
	}
	return n
}

// RunCycle senses every domain with an active connected source (or
// the explicit domains argument, if non-empty), derives each domain's
// expectation, compares, interprets, explores, and proposes — mirroring
// run_demo's steps 1 through 6. Problems are persisted to the World
// Model as they're created; Proposals are not (the original never
// writes proposals to world_model.json either — they live only in the
// caller's hands until a decision is made).
func (rt *Runtime) RunCycle(ctx context.Context, domains []string) (CycleReport, error) {
	doc := rt.Store.Snapshot()
	if len(domains) == 0 {
		domains = sensor.DomainsFromSources(doc.ConnectedSources)
	}

	worldModelJSON, err := json.Marshal(doc)
	if err != nil {
		return CycleReport{}, fmt.Errorf("pipeline: marshal world model: %w", err)
	}

	wmView := scoring.WorldModelView{
		Preferences: scoring.Preferences{
			NotificationFrequency: doc.Preferences.NotificationFrequency,
			AutomationAcceptance:  doc.Preferences.AutomationAcceptance,
		},
		ConfirmedDomains: confirmedDomains(doc.Problems),
	}

	var report CycleReport
	for _, domain := range domains {
		domainReport, err := rt.runDomain(ctx, domain, doc, string(worldModelJSON), wmView)
		if err != nil {
			return report, fmt.Errorf("pipeline: domain %q: %w", domain, err)
		}
		report.Domains = append(report.Domains, domainReport)
	}

	return report, nil
}

func (rt *Runtime) runDomain(ctx context.Context, domain string, doc worldmodel.Document, worldModelJSON string, wmView scoring.WorldModelView) (DomainReport, error) {
	now := rt.Now()

	currentState, err := sensor.Sense(ctx, rt.Source, []string{domain}, rt.Now)
	if err != nil {
		return DomainReport{}, err
	}

	exp, err := expectation.Derive(ctx, rt.LLM, worldModelJSON, doc.IdealStates, domain, expectation.NowContext(now))
	if err != nil {
		return DomainReport{}, err
	}

	history := historyFor(doc.History, domain)
	gaps, err := comparison.Compare(ctx, rt.LLM, currentState, exp, history, wmView, nil, rt.ScoreThreshold)
	if err != nil {
		return DomainReport{}, err
	}

	problems := interpretation.InterpretAll(ctx, rt.LLM, gaps, now)

	clock := problem.Clock(rt.Now)
	var proposals []model.Proposal
	for i := range problems {
		solutions := exploration.Explore(ctx, rt.LLM, problems[i])
		if len(solutions) == 0 {
			continue
		}
		prop, updated, err := proposal.Create(problems[i], solutions, nil, rt.AutoPromote, clock)
		if err != nil {
			continue
		}
		problems[i] = updated
		proposals = append(proposals, prop)
	}

	if err := rt.persistProblems(problems); err != nil {
		return DomainReport{}, err
	}

	return DomainReport{Domain: domain, Gaps: gaps, Problems: problems, Proposals: proposals}, nil
}

func (rt *Runtime) persistProblems(problems []model.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	return rt.Store.Update(func(doc *worldmodel.Document) error {
		for _, p := range problems {
			replaced := false
			for i := range doc.Problems {
				if doc.Problems[i].ID == p.ID {
					doc.Problems[i] = p
					replaced = true
					break
				}
			}
			if !replaced {
				doc.Problems = append(doc.Problems, p)
			}
		}
		return nil
	})
}

// Decide drives a user's decision on one proposal through the Problem
// State Machine and persists the resulting Problem. snoozeDays is only
// consulted for proposal.DecisionSnooze; pass problem.SnoozeDefault
// for a plain 7-day snooze, or an explicit day count (0 included —
// see problem.Snooze's reversibility note).
func (rt *Runtime) Decide(prop *model.Proposal, prob *model.Problem, decision proposal.ProposalDecision, reason string, snoozeDays int) error {
	clock := problem.Clock(rt.Now)
	if err := proposal.Decide(prop, prob, decision, reason, snoozeDays, clock); err != nil {
		return err
	}
	return rt.persistProblems([]model.Problem{*prob})
}

// ComposeAgent turns a confirmed Problem's recommended Solution into a
// persisted AgentConfig, matching run_demo's Composition step.
func (rt *Runtime) ComposeAgent(prop model.Proposal, prob *model.Problem) (model.AgentConfig, error) {
	if prob.Status != model.StatusConfirmed {
		return model.AgentConfig{}, fmt.Errorf("pipeline: cannot compose an agent for a %s problem, it must be confirmed first", prob.Status)
	}

	doc := rt.Store.Snapshot()
	idSuffix := rt.Now().Format("20060102150405")
	cfg, err := composition.Compose(prop.RecommendedSolution, prob, doc.ConnectedSources, doc.Safety.Policy, idSuffix)
	if err != nil {
		return model.AgentConfig{}, err
	}

	err = rt.Store.Update(func(d *worldmodel.Document) error {
		d.AgentConfigs = append(d.AgentConfigs, cfg)
		return nil
	})
	return cfg, err
}

// RunAgent runs a composed AgentConfig's actions and folds the result
// back into the World Model through Learning, matching run_demo's
// Execution + Learning steps.
func (rt *Runtime) RunAgent(ctx context.Context, agentConfigID string, input execution.Input, feedback *model.UserFeedback) (model.ExecutionResult, error) {
	doc := rt.Store.Snapshot()

	var cfg *model.AgentConfig
	for i := range doc.AgentConfigs {
		if doc.AgentConfigs[i].ID == agentConfigID {
			cfg = &doc.AgentConfigs[i]
			break
		}
	}
	if cfg == nil {
		return model.ExecutionResult{}, fmt.Errorf("pipeline: unknown agent config %q", agentConfigID)
	}

	triggerEventID := fmt.Sprintf("trigger_%s_%d", agentConfigID, rt.Now().UnixNano())
	result := rt.Execution.Execute(*cfg, doc.Safety.Policy, input, triggerEventID)

	analysis := learning.Analyze(result, feedback, rt.Now())
	_ = learning.UpdateWorldModel(rt.Store, analysis)

	return result, nil
}

func historyFor(history []model.HistoryRecord, domain string) []model.HistoryRecord {
	var filtered []model.HistoryRecord
	for _, h := range history {
		if h.Domain == domain {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func confirmedDomains(problems []model.Problem) map[string]bool {
	confirmed := map[string]bool{}
	for _, p := range problems {
		if p.Status == model.StatusConfirmed {
			confirmed[p.Domain] = true
		}
	}
	return confirmed
}
