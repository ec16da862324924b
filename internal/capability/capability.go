// Package capability defines the external-interface contracts the
// pipeline depends on but does not implement directly: data source
// connectors, the LLM port, and the human-facing presenter surface.
// Interface shapes follow the teacher's pkg/agent/llm_client.go
// (context-first signatures, a narrow single-purpose method set) and
// pkg/mcp/executor.go's ToolExecutor (one Execute-shaped call per
// capability rather than a wide multi-method client).
package capability

import (
	"context"

	"github.com/shun1423/sia/internal/model"
)

// SourceResult is what a Source returns from a read.
type SourceResult struct {
	Domain string
	Data   map[string]any
}

// WriteResult is what a Source returns from a write/effect.
type WriteResult struct {
	Success bool
	Output  string
}

// Source is a domain data connector (email, github, health, finance).
// Read pulls current state for sensing; Write performs an effect
// during Execution.
type Source interface {
	Read(ctx context.Context, scope string, filters map[string]any) (SourceResult, error)
	Write(ctx context.Context, action, resourceID string, data map[string]any) (WriteResult, error)
}

// LLMPort is the single synchronous call every pipeline stage uses for
// its optional LLM enrichment. A narrower contract than the teacher's
// streaming LLMClient: SIA never streams tokens, it parses one JSON
// response per call.
type LLMPort interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Presenter is the human-facing surface: list/act on proposals, and
// invoke an agent configuration on demand.
type Presenter interface {
	Proposals(ctx context.Context) ([]model.Proposal, error)
	Approve(ctx context.Context, proposalID string) error
	Reject(ctx context.Context, proposalID string, reason string) error
	Snooze(ctx context.Context, proposalID string, days int) error
	Invoke(ctx context.Context, agentConfigID string) (model.ExecutionResult, error)
}
