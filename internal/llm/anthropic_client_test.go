package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHostedProviderFailsFastWithoutAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewHostedProvider(Config{Backend: BackendHosted})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !ProviderErrorOfKind(err, ErrKindAuthFailure) {
		t.Fatalf("expected auth failure, got: %v", err)
	}
}

func TestHostedGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Fatalf("unexpected api key header: %s", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Fatal("missing anthropic-version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System == "" {
			t.Fatal("expected system prompt")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			ID:    "msg_1",
			Model: "claude-3-sonnet-20240229",
			Content: []anthropicContentBlock{
				{Type: "text", Text: "### Reasoning\nthink first\n### Context\n# Plan\nbody here"},
			},
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 20},
		})
	}))
	defer server.Close()

	provider, err := NewHostedProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHostedProvider: %v", err)
	}

	result, err := provider.Generate(context.Background(), GenerationRequest{TaskDescription: "do the thing"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.MarkdownBody != "# Plan\nbody here" {
		t.Fatalf("unexpected body: %q", result.MarkdownBody)
	}
	if result.ReasoningTrace == nil || *result.ReasoningTrace != "think first" {
		t.Fatalf("unexpected reasoning: %v", result.ReasoningTrace)
	}
	if result.Backend != BackendHosted {
		t.Fatalf("unexpected backend: %s", result.Backend)
	}
	if result.ModelID != "claude-3-sonnet-20240229" {
		t.Fatalf("unexpected model id: %s", result.ModelID)
	}
	if result.Usage.TotalTokens != 30 {
		t.Fatalf("unexpected usage: %+v", result.Usage)
	}
}

func TestHostedGeneratePrefersThinkingBlocks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{
				{Type: "thinking", Thinking: "native reasoning"},
				{Type: "text", Text: "just the answer"},
			},
		})
	}))
	defer server.Close()

	provider, err := NewHostedProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHostedProvider: %v", err)
	}

	result, err := provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ReasoningTrace == nil || *result.ReasoningTrace != "native reasoning" {
		t.Fatalf("unexpected reasoning: %v", result.ReasoningTrace)
	}
	if result.MarkdownBody != "just the answer" {
		t.Fatalf("unexpected body: %q", result.MarkdownBody)
	}
}

func TestHostedGenerateErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		wantKind ProviderErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ErrKindAuthFailure},
		{"forbidden", http.StatusForbidden, ErrKindAuthFailure},
		{"rate limited", http.StatusTooManyRequests, ErrKindRateLimited},
		{"server error", http.StatusInternalServerError, ErrKindUnreachable},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"nope"}}`))
			}))
			defer server.Close()

			provider, err := NewHostedProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
			if err != nil {
				t.Fatalf("NewHostedProvider: %v", err)
			}

			_, err = provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
			if !ProviderErrorOfKind(err, tc.wantKind) {
				t.Fatalf("expected %s, got: %v", tc.wantKind, err)
			}
		})
	}
}

func TestHostedGenerateInvalidResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not json"))
	}))
	defer server.Close()

	provider, err := NewHostedProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHostedProvider: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
	if !ProviderErrorOfKind(err, ErrKindInvalidResponse) {
		t.Fatalf("expected invalid response, got: %v", err)
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.Snippet == "" {
		t.Fatalf("expected raw response snippet, got: %v", err)
	}
}

func TestHostedGenerateUnreachableServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	provider, err := NewHostedProvider(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHostedProvider: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
	if !ProviderErrorOfKind(err, ErrKindUnreachable) {
		t.Fatalf("expected unreachable, got: %v", err)
	}
}
