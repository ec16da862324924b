package llmjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_PlainJSON(t *testing.T) {
	var out map[string]any
	err := Extract(`{"id":"gap_1","severity":"high"}`, &out)
	require.NoError(t, err)
	require.Equal(t, "gap_1", out["id"])
}

func TestExtract_StripsMarkdownFence(t *testing.T) {
	input := "```json\n{\"id\":\"gap_1\"}\n```"
	var out map[string]any
	err := Extract(input, &out)
	require.NoError(t, err)
	require.Equal(t, "gap_1", out["id"])
}

func TestExtract_IgnoresSurroundingProse(t *testing.T) {
	input := "Sure, here's the result:\n[{\"id\":1}]\nLet me know if you need more."
	var out []map[string]any
	err := Extract(input, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestExtract_HandlesBracesInsideStrings(t *testing.T) {
	input := `{"description":"this has a { brace } inside", "id":"gap_1"}`
	var out map[string]any
	err := Extract(input, &out)
	require.NoError(t, err)
	require.Equal(t, "gap_1", out["id"])
}

func TestExtract_NoJSONReturnsError(t *testing.T) {
	var out map[string]any
	err := Extract("no json here at all", &out)
	require.ErrorIs(t, err, ErrNoJSON)
}
