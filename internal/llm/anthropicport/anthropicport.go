// Package anthropicport implements capability.LLMPort by calling the
// Anthropic Messages API directly over HTTP, in the same plain
// net/http style as pkg/runbook/github.go's GitHubClient rather than
// a generated SDK client — one endpoint, one response shape, no need
// for the extra dependency surface.
package anthropicport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shun1423/sia/internal/engerr"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// Port calls the Anthropic Messages API. It carries no World Model or
// pipeline state — it is a pure capability.LLMPort implementation,
// wired into a pipeline.Runtime by the caller.
type Port struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures a Port.
type Option func(*Port)

// WithBaseURL overrides the Anthropic API endpoint, for testing
// against a local stub server.
func WithBaseURL(url string) Option {
	return func(p *Port) { p.baseURL = url }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Port) { p.httpClient = c }
}

// New builds a Port. apiKey and model are required; an empty apiKey
// makes every Generate call fail with engerr.ErrLLMUnavailable rather
// than panicking, so callers can wire a Port unconditionally and let
// config.Config.LLMEnabled gate whether it's ever reached.
func New(apiKey, model string, opts ...Option) *Port {
	p := &Port{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate sends prompt as a single user message and returns the
// concatenated text of every text content block in the reply.
func (p *Port) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if p.apiKey == "" {
		return "", engerr.ErrLLMUnavailable
	}

	body, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropicport: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropicport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", engerr.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropicport: read response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", engerr.ErrParse, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("%w: anthropic %s: %s", engerr.ErrLLMUnavailable, parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: anthropic returned HTTP %d", engerr.ErrLLMUnavailable, resp.StatusCode)
	}

	var out string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}
