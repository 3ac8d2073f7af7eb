package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	synerrors "github.com/ohboyftw/ClaudeSynth/internal/errors"
)

func testRetryConfig() synerrors.RetryConfig {
	return synerrors.RetryConfig{
		MaxAttempts:  2,
		BaseDelay:    time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		JitterFactor: 0,
	}
}

func rateLimited() error {
	return &ProviderError{Kind: ErrKindRateLimited, Backend: BackendHosted, Err: fmt.Errorf("HTTP 429")}
}

func TestRetryProviderRecoversFromRateLimiting(t *testing.T) {
	t.Parallel()

	stub := &StubProvider{
		Result: &GenerationResult{MarkdownBody: "done", Backend: BackendHosted},
		Errs:   []error{rateLimited(), rateLimited()},
	}
	provider := WrapWithRetry(stub, testRetryConfig())

	result, err := provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.MarkdownBody != "done" {
		t.Fatalf("unexpected body: %q", result.MarkdownBody)
	}
	if stub.Calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", stub.Calls)
	}
}

func TestRetryProviderGivesUpAfterCappedAttempts(t *testing.T) {
	t.Parallel()

	stub := &StubProvider{
		Errs: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited()},
	}
	provider := WrapWithRetry(stub, testRetryConfig())

	_, err := provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
	if err == nil {
		t.Fatal("expected error")
	}
	if stub.Calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", stub.Calls)
	}
	if !ProviderErrorOfKind(err, ErrKindRateLimited) {
		t.Fatalf("expected surfaced rate-limit error, got: %v", err)
	}
}

func TestRetryProviderDoesNotRetryOtherKinds(t *testing.T) {
	t.Parallel()

	kinds := []ProviderErrorKind{ErrKindUnreachable, ErrKindAuthFailure, ErrKindInvalidResponse}
	for _, kind := range kinds {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			stub := &StubProvider{
				Errs: []error{&ProviderError{Kind: kind, Backend: BackendHosted, Err: fmt.Errorf("fail")}},
			}
			provider := WrapWithRetry(stub, testRetryConfig())

			_, err := provider.Generate(context.Background(), GenerationRequest{TaskDescription: "t"})
			if !ProviderErrorOfKind(err, kind) {
				t.Fatalf("expected %s, got: %v", kind, err)
			}
			if stub.Calls != 1 {
				t.Fatalf("expected a single attempt, got %d", stub.Calls)
			}
		})
	}
}

func TestRetryProviderModelProxies(t *testing.T) {
	t.Parallel()

	provider := WrapWithRetry(&StubProvider{ModelID: "m1"}, testRetryConfig())
	if provider.Model() != "m1" {
		t.Fatalf("unexpected model: %s", provider.Model())
	}
}
