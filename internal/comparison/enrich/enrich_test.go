package enrich

import (
	"context"
	"testing"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f.response, f.err
}

func TestEnrich_AddsNovelGap(t *testing.T) {
	llm := fakeLLM{response: `[
		{"id": "gap_x", "type": "tone", "domain": "email", "description": "curt replies", "severity": "low"}
	]`}

	cs := model.CurrentState{Domain: "email", Data: map[string]any{}}
	added, err := Enrich(context.Background(), llm, cs, model.Expectation{Domain: "email"}, nil)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, "tone", added[0].Type)
}

func TestEnrich_SkipsGapAlreadyCoveredByRules(t *testing.T) {
	llm := fakeLLM{response: `[
		{"id": "gap_x", "type": "visibility", "domain": "email", "severity": "low"}
	]`}

	existing := []model.Gap{{Domain: "email", Type: "visibility"}}
	cs := model.CurrentState{Domain: "email", Data: map[string]any{}}
	added, err := Enrich(context.Background(), llm, cs, model.Expectation{Domain: "email"}, existing)
	require.NoError(t, err)
	require.Empty(t, added)
}

func TestEnrich_ReturnsErrorWhenLLMFails(t *testing.T) {
	llm := fakeLLM{err: context.DeadlineExceeded}
	cs := model.CurrentState{Domain: "email", Data: map[string]any{}}
	_, err := Enrich(context.Background(), llm, cs, model.Expectation{Domain: "email"}, nil)
	require.Error(t, err)
}

func TestEnrich_ReturnsErrorOnUnparsableResponse(t *testing.T) {
	llm := fakeLLM{response: "not json at all"}
	cs := model.CurrentState{Domain: "email", Data: map[string]any{}}
	_, err := Enrich(context.Background(), llm, cs, model.Expectation{Domain: "email"}, nil)
	require.Error(t, err)
}
