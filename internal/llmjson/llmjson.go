// Package llmjson extracts the first JSON value from an LLM response
// that may be wrapped in a markdown code fence or preceded/followed by
// prose, despite every prompt template in internal/prompt asking for
// "only JSON". Grounded on the defensive parsing every layer.py in
// original_source performs before json.loads(response_text).
package llmjson

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no balanced JSON object or array could
// be located in the input.
var ErrNoJSON = errors.New("llmjson: no JSON value found in input")

// Extract locates the first JSON object or array in text, strips a
// surrounding ```json or ``` fence if present, and unmarshals it into
// v.
func Extract(text string, v any) error {
	raw := stripFence(text)
	jsonStr, err := firstValue(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(jsonStr), v)
}

// stripFence removes a leading/trailing ```json or ``` fence, if present.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "JSON")
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstValue scans s for the first balanced {...} or [...] run,
// tracking string/escape state so braces inside JSON string values
// don't confuse the bracket counter.
func firstValue(s string) (string, error) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			start, open, close = i, '{', '}'
		case '[':
			start, open, close = i, '[', ']'
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
