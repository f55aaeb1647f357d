package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/config"
)

// fakeOpenAI answers chat completions with status and body, recording the request.
func fakeOpenAI(t *testing.T, status int, body string, got *map[string]any) *OpenAIInferencer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	o := NewOpenAIInferencer("sk-test", "gpt-test")
	o.ChangeBaseURL(srv.URL)
	return o
}

const completion = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}],
"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`

func TestOpenAIInfer(t *testing.T) {
	var req map[string]any
	o := fakeOpenAI(t, http.StatusOK, completion, &req)

	params := &openai.ChatCompletionNewParams{
		Temperature: openai.Float(0.8),
		MaxTokens:   openai.Int(2500),
	}
	out, err := o.Infer(context.Background(), params, "system text", "user text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected hello, got %q", out)
	}
	if req["model"] != "gpt-test" || req["temperature"] != 0.8 || req["max_tokens"] != float64(2500) {
		t.Fatalf("unexpected request %v", req)
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", req["messages"])
	}
	if params.Messages != nil {
		t.Fatal("expected caller params to be left untouched")
	}
}

func TestOpenAIInferKeepsZeroTemperature(t *testing.T) {
	var req map[string]any
	o := fakeOpenAI(t, http.StatusOK, completion, &req)
	if _, err := o.Infer(context.Background(), &openai.ChatCompletionNewParams{Temperature: openai.Float(0)}, "s", "u"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %v", req["temperature"])
	}

	o = fakeOpenAI(t, http.StatusOK, completion, &req)
	if _, err := o.Infer(context.Background(), nil, "s", "u"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req["temperature"] != 0.7 {
		t.Fatalf("expected default temperature 0.7, got %v", req["temperature"])
	}
}

func TestOpenAIInferErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   apperr.Kind
	}{
		{"provider error", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit","code":"rate_limit"}}`, apperr.KindUpstream},
		{"no choices", http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`, apperr.KindProtocol},
		{"empty content", http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":""}}]}`, apperr.KindProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fakeOpenAI(t, tt.status, tt.body, nil)
			_, err := o.Infer(context.Background(), nil, "s", "u")
			if apperr.KindOf(err) != tt.kind {
				t.Fatalf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestOpenAIUpstreamCarriesStatus(t *testing.T) {
	o := fakeOpenAI(t, http.StatusServiceUnavailable, `{"error":{"message":"down"}}`, nil)
	_, err := o.Infer(context.Background(), nil, "s", "u")
	var e *apperr.Error
	if !errors.As(err, &e) || e.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 on the upstream error, got %v", err)
	}
}

func TestPlaceholderKeyFailsBeforeCalling(t *testing.T) {
	o := NewOpenAIInferencer(config.PlaceholderOpenAIKey, "")
	o.ChangeBaseURL("http://127.0.0.1:1")
	if _, err := o.Infer(context.Background(), nil, "s", "u"); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	g, _ := NewGeminiInferencer("", "")
	if _, err := g.Infer(context.Background(), nil, "s", "u"); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Config{Provider: "grok", OpenAIAPIKey: "k", OpenAIModel: config.DefaultOpenAIModel}
	inf, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o, ok := inf.(*OpenAIInferencer)
	if !ok || o.provider != "grok" || o.model != "grok-4-fast-reasoning" {
		t.Fatalf("unexpected inferencer %#v", inf)
	}

	if inf, _ := New(config.Config{Provider: "gemini"}); inf == nil {
		t.Fatal("expected a gemini inferencer")
	}
	if _, err := New(config.Config{Provider: "nope"}); err == nil {
		t.Fatal("expected unknown provider to fail")
	}
}
