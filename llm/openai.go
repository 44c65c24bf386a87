package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/docscout/models"
)

// Client talks to an OpenAI-compatible chat completions endpoint. Groq
// serves that API, so no provider SDK is involved.
type Client struct {
	http *http.Client
}

// NewClient wraps hc, or a default client when hc is nil.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{http: hc}
}

// Params selects the provider, model and sampling for a call.
type Params struct {
	APIKey      string
	Model       string
	BaseURL     string // https://api.groq.com/openai/v1
	Temperature float64
	MaxTokens   int
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p"`
	Stream      bool      `json:"stream"`
}

type chatReply struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a system prompt and one user turn and returns the first
// choice with surrounding whitespace removed.
func (c *Client) Complete(ctx context.Context, system, user string, p Params) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.Model,
		Messages:    []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	status, raw, err := c.post(ctx, strings.TrimRight(p.BaseURL, "/")+"/chat/completions", p.APIKey, body)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}

	var reply chatReply
	decodeErr := json.Unmarshal(raw, &reply)
	if status != http.StatusOK {
		msg := "LLM API error"
		if decodeErr == nil && reply.Error != nil && reply.Error.Message != "" {
			msg = reply.Error.Message
		}
		return "", classifyLLMError(status, msg)
	}
	if decodeErr != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "LLM response unreadable", decodeErr)
	}
	if len(reply.Choices) == 0 {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "LLM returned no choices", nil)
	}
	return strings.TrimSpace(reply.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, endpoint, key string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

// classifyLLMError turns a non-200 status into an error code callers can
// branch on.
func classifyLLMError(status int, msg string) *models.ScrapeError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, msg, nil)
	case http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeLLMRateLimited, msg, nil)
	default:
		return models.NewScrapeError(models.ErrCodeLLMFailure, fmt.Sprintf("LLM API returned %d: %s", status, msg), nil)
	}
}
