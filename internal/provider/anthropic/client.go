// Package anthropic is a minimal client for the Anthropic Messages API. It is
// used directly with an API key, or pointed at the credential-hiding proxy.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alecrj/nutrition/internal/service"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	MessagesPath     = "/v1/messages"
	APIVersion       = "2023-06-01"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MessagesRequest struct {
	Model     string    `json:"model,omitempty"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type MessagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Text joins the text blocks of the reply.
func (r MessagesResponse) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// APIError is a non-2xx reply from the API or the proxy.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messages request failed with status %d: %s", e.Status, e.Message)
}

// Client talks to BaseURL+Path. An empty APIKey sends no credential, which is
// how the proxy is used.
type Client struct {
	APIKey     string
	BaseURL    string
	Path       string
	Model      string
	HTTPClient *http.Client
}

// Messages sends req and returns the decoded reply with the raw body.
func (c *Client) Messages(ctx context.Context, req MessagesRequest) (MessagesResponse, []byte, error) {
	if len(req.Messages) == 0 {
		return MessagesResponse{}, nil, fmt.Errorf("messages request needs at least one message")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	path := c.Path
	if path == "" {
		path = MessagesPath
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return MessagesResponse{}, nil, fmt.Errorf("marshal messages payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return MessagesResponse{}, nil, fmt.Errorf("create messages request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", APIVersion)
	if key := strings.TrimSpace(c.APIKey); key != "" {
		httpReq.Header.Set("x-api-key", key)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return MessagesResponse{}, nil, fmt.Errorf("execute messages request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MessagesResponse{}, nil, fmt.Errorf("read messages response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return MessagesResponse{}, body, &APIError{Status: resp.StatusCode, Message: errorMessage(body), Body: body}
	}

	var parsed MessagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return MessagesResponse{}, body, fmt.Errorf("decode messages response: %w", err)
	}
	return parsed, body, nil
}

// Complete adapts the client to service.Completer.
func (c *Client) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	msgs := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}
	resp, _, err := c.Messages(ctx, MessagesRequest{
		System:    req.System,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("messages response has no content")
	}
	return resp.Text(), nil
}

// errorMessage reads the API's {"error":{"message"}} or the proxy's
// {"error":"..."} shape.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
		return msg.String()
	}
	return "Claude API error"
}
