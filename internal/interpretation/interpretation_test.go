package interpretation

import (
	"context"
	"testing"
	"time"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

func TestInterpret_NilLLMUsesDomainTemplate(t *testing.T) {
	gap := model.Gap{ID: "gap_1", Domain: "email", Type: "visibility", Severity: model.SeverityHigh}
	problem := Interpret(context.Background(), nil, gap, fixedNow)

	require.Equal(t, "problem_gap_1", problem.ID)
	require.Equal(t, "gap_1", problem.GapID)
	require.Equal(t, model.StatusCandidate, problem.Status)
	require.Contains(t, problem.Name, "visibility")
	require.Equal(t, 0.5, problem.ProblemScore)
}

func TestInterpret_UnknownGapTypeUsesGenericTemplate(t *testing.T) {
	gap := model.Gap{ID: "gap_9", Domain: "calendar", Type: "mystery", Description: "something's off"}
	problem := Interpret(context.Background(), nil, gap, fixedNow)

	require.Equal(t, "calendar domain problem", problem.Name)
	require.Equal(t, "something's off", problem.Description)
}

func TestInterpret_PreservesExplicitProblemScore(t *testing.T) {
	gap := model.Gap{ID: "gap_1", Domain: "health", Type: "sleep_deficit", ProblemScore: 0.82}
	problem := Interpret(context.Background(), nil, gap, fixedNow)
	require.Equal(t, 0.82, problem.ProblemScore)
}

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f.response, f.err
}

func TestInterpret_UsesLLMResponseWhenValid(t *testing.T) {
	llm := fakeLLM{response: `{
		"id": "problem_gap_1",
		"gap_id": "gap_1",
		"domain": "email",
		"name": "custom name",
		"description": "custom description",
		"cause": "custom cause",
		"impact": "custom impact",
		"severity": "high",
		"affected_items": ["e1"]
	}`}

	gap := model.Gap{ID: "gap_1", Domain: "email", Type: "visibility"}
	problem := Interpret(context.Background(), llm, gap, fixedNow)
	require.Equal(t, "custom name", problem.Name)
	require.Equal(t, model.StatusCandidate, problem.Status)
}

func TestInterpret_FallsBackWhenLLMErrors(t *testing.T) {
	llm := fakeLLM{err: context.DeadlineExceeded}
	gap := model.Gap{ID: "gap_1", Domain: "email", Type: "visibility"}
	problem := Interpret(context.Background(), llm, gap, fixedNow)
	require.Contains(t, problem.Name, "visibility")
}

func TestInterpretAll_PreservesOrder(t *testing.T) {
	gaps := []model.Gap{
		{ID: "gap_1", Domain: "email", Type: "visibility"},
		{ID: "gap_2", Domain: "github", Type: "review_delay"},
	}
	problems := InterpretAll(context.Background(), nil, gaps, fixedNow)
	require.Len(t, problems, 2)
	require.Equal(t, "gap_1", problems[0].GapID)
	require.Equal(t, "gap_2", problems[1].GapID)
}
