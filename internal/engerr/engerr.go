// Package engerr defines the sentinel and typed errors every pipeline
// stage signs its error surface with, per the error-kind taxonomy the
// engine's design notes settle on in place of the original's ad-hoc
// optional-return-plus-exception handling.
package engerr

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreUnavailable is returned when the World Model document is
	// missing or malformed. Callers choose retry or default-init.
	ErrStoreUnavailable = errors.New("world model store unavailable")

	// ErrLLMUnavailable is returned when the LLM capability is not
	// wired or the call failed; callers fall back to templates.
	ErrLLMUnavailable = errors.New("llm capability unavailable")

	// ErrParse is returned when an LLM response could not be parsed as
	// the expected JSON shape; treated the same as ErrLLMUnavailable.
	ErrParse = errors.New("failed to parse llm response")

	// ErrPolicyDenied means Policy blocked the action outright.
	ErrPolicyDenied = errors.New("action denied by policy")

	// ErrRequiresApproval means the action needs user approval before
	// it may execute.
	ErrRequiresApproval = errors.New("action requires approval")

	// ErrRateLimited means the resource's rate-limit window is full.
	ErrRateLimited = errors.New("resource rate limited")

	// ErrConflict means the Conflict Manager denied a lock.
	ErrConflict = errors.New("resource lock conflict")

	// ErrIllegalTransition means a disallowed Problem State Machine
	// transition was attempted.
	ErrIllegalTransition = errors.New("illegal problem state transition")

	// ErrMissingDomain is fatal in Composition and Learning.
	ErrMissingDomain = errors.New("could not resolve a domain")

	// ErrTransientTool marks a tool failure eligible for backoff retry.
	ErrTransientTool = errors.New("transient tool failure")

	// ErrIdempotencySkip is benign: the action was already processed.
	ErrIdempotencySkip = errors.New("action already processed")

	// ErrNoSolution is raised by Proposal when no Solution is
	// selectable, rather than returning a silent zero value.
	ErrNoSolution = errors.New("no selectable solution")
)

// TransitionError carries the attempted Problem State Machine edge
// that was rejected.
type TransitionError struct {
	From, To string
	Action   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s (action %q)", e.From, e.To, e.Action)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// DomainError carries the stage that could not resolve a domain.
type DomainError struct {
	Stage  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: missing domain: %s", e.Stage, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrMissingDomain }

// RateLimitError carries the wait the caller should honor before
// retrying.
type RateLimitError struct {
	Resource   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("resource %q rate limited, retry after %s", e.Resource, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
