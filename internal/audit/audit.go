// Package audit implements the Observability & Auditing cross-cutting
// concern: one append-only JSONL file per log category, ported from
// original_source/layers/crosscutting/observability.py's AuditLogger.
// The Python's module-level get_audit_logger() singleton becomes a
// *Logger value owned by Runtime, consistent with spec §9's
// no-package-level-singletons design note.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shun1423/sia/internal/model"
)

// Logger appends structured entries to per-category JSONL files under
// a log directory. A logging failure is reported to slog but never
// propagated to the caller: auditing must never block the pipeline it
// observes.
type Logger struct {
	mu     sync.Mutex
	dir    string
	nowFn  func() time.Time
	masker func(map[string]any) map[string]any
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the logger's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.nowFn = now }
}

// WithMasker installs a masking hook applied to evidence/context
// payloads before they are written, wiring in internal/security's
// sensitive-data redaction ahead of persistence.
func WithMasker(mask func(map[string]any) map[string]any) Option {
	return func(l *Logger) { l.masker = mask }
}

// NewLogger creates a Logger writing under dir, creating dir if it
// does not already exist.
func NewLogger(dir string, opts ...Option) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	l := &Logger{dir: dir, nowFn: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

type proposalEntry struct {
	Type                string         `json:"type"`
	Timestamp           string         `json:"timestamp"`
	ProblemCandidateID  string         `json:"problem_candidate_id"`
	Evidence            map[string]any `json:"evidence"`
	ProposalText        string         `json:"proposal_text"`
	AlternativesShown   []string       `json:"alternatives_shown"`
	UserDecision        string         `json:"user_decision"`
}

// LogProposal records a proposal presentation and its user decision,
// matching log_proposal.
func (l *Logger) LogProposal(problemCandidateID string, evidence map[string]any, proposalText string, alternativesShown []string, userDecision string) {
	l.writeLog("proposals", proposalEntry{
		Type:               "proposal",
		Timestamp:          l.nowFn().Format(time.RFC3339),
		ProblemCandidateID: problemCandidateID,
		Evidence:           l.mask(evidence),
		ProposalText:       proposalText,
		AlternativesShown:  alternativesShown,
		UserDecision:       userDecision,
	})
}

type executionEntry struct {
	Type            string                `json:"type"`
	Timestamp       string                `json:"timestamp"`
	AgentID         string                `json:"agent_id"`
	TriggerEventID  string                `json:"trigger_event_id,omitempty"`
	ActionResults   []model.ActionResult  `json:"action_results"`
	OutcomeMetrics  model.ExecutionSummary `json:"outcome_metrics"`
}

// LogExecution records one agent run's action results and outcome
// summary, matching log_execution/log_agent_execution.
func (l *Logger) LogExecution(agentID, triggerEventID string, results []model.ActionResult, summary model.ExecutionSummary) {
	l.writeLog("executions", executionEntry{
		Type:           "execution",
		Timestamp:      l.nowFn().Format(time.RFC3339),
		AgentID:        agentID,
		TriggerEventID: triggerEventID,
		ActionResults:  results,
		OutcomeMetrics: summary,
	})
}

type errorEntry struct {
	Type         string         `json:"type"`
	Timestamp    string         `json:"timestamp"`
	ErrorType    string         `json:"error_type"`
	ErrorMessage string         `json:"error_message"`
	Context      map[string]any `json:"context"`
}

// LogError records a pipeline error, matching log_error.
func (l *Logger) LogError(errorType, errorMessage string, context map[string]any) {
	l.writeLog("errors", errorEntry{
		Type:         "error",
		Timestamp:    l.nowFn().Format(time.RFC3339),
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		Context:      l.mask(context),
	})
}

type decisionEntry struct {
	Type         string         `json:"type"`
	Timestamp    string         `json:"timestamp"`
	DecisionType string         `json:"decision_type"`
	DecisionData map[string]any `json:"decision_data"`
	Reasoning    string         `json:"reasoning,omitempty"`
}

// LogDecision records a policy or state-machine decision, matching
// log_decision.
func (l *Logger) LogDecision(decisionType string, decisionData map[string]any, reasoning string) {
	l.writeLog("decisions", decisionEntry{
		Type:         "decision",
		Timestamp:    l.nowFn().Format(time.RFC3339),
		DecisionType: decisionType,
		DecisionData: l.mask(decisionData),
		Reasoning:    reasoning,
	})
}

func (l *Logger) mask(data map[string]any) map[string]any {
	if data == nil || l.masker == nil {
		return data
	}
	return l.masker(data)
}

// writeLog appends entry as one JSON line to <dir>/<category>.jsonl.
// Failures are logged via slog and swallowed: a broken audit trail
// must never abort the pipeline operation it is observing.
func (l *Logger) writeLog(category string, entry any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, category+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("audit log open failed", "category", category, "error", err)
		return
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		slog.Error("audit log marshal failed", "category", category, "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Error("audit log write failed", "category", category, "error", err)
	}
}

// ReadExecutionHistory returns up to limit execution log entries, most
// recent first, optionally filtered to one agent, matching
// get_execution_history.
func (l *Logger) ReadExecutionHistory(agentID string, limit int) ([]executionEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, "executions.jsonl")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []executionEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e executionEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if agentID != "" && e.AgentID != agentID {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
