package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alecrj/nutrition/internal/service"
)

func TestCompleteSendsHeadersAndParsesText(t *testing.T) {
	t.Parallel()

	var got MessagesRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != MessagesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" || r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","role":"assistant","content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":3}}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "sk-test", BaseURL: ts.URL, HTTPClient: ts.Client()}
	text, err := c.Complete(context.Background(), service.CompletionRequest{
		System:   "be kind",
		Messages: []service.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Hello there" {
		t.Fatalf("expected joined text, got %q", text)
	}
	if got.Model != DefaultModel || got.MaxTokens != DefaultMaxTokens || got.System != "be kind" {
		t.Fatalf("unexpected request defaults: %+v", got)
	}
}

func TestMessagesThroughProxyOmitsKey(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/claude" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if _, ok := r.Header["X-Api-Key"]; ok {
			t.Errorf("proxy requests must not carry a key")
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL + "/", Path: "/api/claude", Model: "claude-test", HTTPClient: ts.Client()}
	resp, _, err := c.Messages(context.Background(), MessagesRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if resp.Text() != "ok" {
		t.Fatalf("unexpected text %q", resp.Text())
	}
}

func TestMessagesReturnsAPIError(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"type":"error","error":{"type":"rate_limit_error","message":"Rate limited"}}`: "Rate limited",
		`{"error":"API key not configured"}`:                                            "API key not configured",
		`not json`:                                                                      "Claude API error",
	}
	for body, want := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(body))
		}))
		c := &Client{APIKey: "k", BaseURL: ts.URL, HTTPClient: ts.Client()}
		_, raw, err := c.Messages(context.Background(), MessagesRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
		ts.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != http.StatusTooManyRequests || apiErr.Message != want {
			t.Fatalf("unexpected api error: %+v", apiErr)
		}
		if string(raw) != body {
			t.Fatalf("expected raw body back, got %q", raw)
		}
	}
}

func TestMessagesHonoursContext(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Client{APIKey: "k", BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.Messages(ctx, MessagesRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
