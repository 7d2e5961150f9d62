// Package llm provides JSON-mode chat completion clients used by the
// workflow collaborators: an OpenAI-compatible HTTP client and an AWS
// Bedrock client. Both return structured maps rather than prose.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/freightdesk/internal/pkg/httpretry"
)

// Completer produces a structured JSON response for a system/user prompt
// pair. Implementations must return a decoded JSON object.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (map[string]any, error)
}

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls an OpenAI-compatible chat completions endpoint in JSON
// mode.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    httpretry.HTTPDoer
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a non-default endpoint (proxies,
// compatible providers, test servers).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient swaps the underlying HTTP doer.
func WithHTTPClient(doer httpretry.HTTPDoer) ClientOption {
	return func(c *Client) { c.http = doer }
}

// NewClient builds a chat completions client. The default transport
// retries transient failures with exponential backoff.
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = "gpt-4o"
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpretry.NewRetryClient(&http.Client{Timeout: 60 * time.Second}, 3)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// CompleteJSON sends one system/user exchange and decodes the model's
// reply as a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("llm: API key not configured")
	}

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		MaxTokens:      2000,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("llm: failed to parse response: %w (body: %s)", err, string(body))
	}
	if response.Error != nil {
		return nil, fmt.Errorf("llm: API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty response")
	}

	return decodeJSONObject(response.Choices[0].Message.Content)
}

// decodeJSONObject parses the model output, tolerating markdown code
// fences around the JSON.
func decodeJSONObject(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("llm: model output is not a JSON object: %w", err)
	}
	return out, nil
}
