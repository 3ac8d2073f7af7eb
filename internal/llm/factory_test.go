package llm

import "testing"

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	local, err := New(Config{Backend: BackendLocal})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := local.(*ollamaClient); !ok {
		t.Fatalf("expected ollama client, got %T", local)
	}

	hosted, err := New(Config{Backend: BackendHosted, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("hosted: %v", err)
	}
	if _, ok := hosted.(*anthropicClient); !ok {
		t.Fatalf("expected anthropic client, got %T", hosted)
	}

	if _, err := New(Config{Backend: "other"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
