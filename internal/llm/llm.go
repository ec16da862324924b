// Package llm provides capability.LLMPort implementations: a
// deterministic fallback that never calls out to a network, and (in
// the anthropicport subpackage) a real HTTP-backed port. Every SIA
// stage already falls back to rule-based logic when its LLMPort call
// fails, so the deterministic port exists mainly to give a caller an
// explicit, always-available value to wire instead of nil.
package llm

import (
	"context"

	"github.com/shun1423/sia/internal/engerr"
)

// DeterministicPort always fails (with ctx's error once ctx is done,
// otherwise with engerr.ErrLLMUnavailable), pushing every stage onto
// its rule-based fallback path. Useful for
// local runs and tests where no API key is configured — matches the
// teacher's config.LLMEnabled gate defaulting to false.
type DeterministicPort struct{}

// NewDeterministicPort returns a DeterministicPort.
func NewDeterministicPort() DeterministicPort {
	return DeterministicPort{}
}

// Generate returns ctx.Err() if ctx is already done, and
// engerr.ErrLLMUnavailable otherwise.
func (DeterministicPort) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", engerr.ErrLLMUnavailable
}
