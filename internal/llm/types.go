package llm

import (
	"context"
	"time"
)

// Backend identifies which provider family served a request.
type Backend string

const (
	BackendHosted Backend = "hosted"
	BackendLocal  Backend = "local"
)

// GenerationRequest is the structured prompt assembled from the raw CLI
// inputs. Optional fields are normalized to empty strings before dispatch.
type GenerationRequest struct {
	TaskDescription   string
	CodeExamples      string
	ProjectGuidelines string
}

// TokenUsage reports prompt/completion token counts when the backend
// exposes them.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerationResult is the provider's structured output. ReasoningTrace is
// nil when the backend exposed no reasoning channel; the renderer
// distinguishes absent from empty.
type GenerationResult struct {
	MarkdownBody   string
	ReasoningTrace *string
	Backend        Backend
	ModelID        string
	Usage          TokenUsage
}

// Config carries everything a provider needs to reach its backend. It is
// built by merging explicit flags over saved preferences over built-in
// defaults; by the time it reaches a provider the merge is done.
type Config struct {
	Backend   Backend
	Model     string
	MaxTokens int
	APIKey    string        // hosted only
	BaseURL   string        // local only
	Timeout   time.Duration // bound on a single generate call
}

// Provider produces a markdown write-up (and optional reasoning trace) for
// an assembled request. Implementations block for the duration of one
// network round-trip and honor ctx cancellation.
type Provider interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
	Model() string
}

// ModelLister is implemented by providers that can enumerate the models
// available on their backend (the local Ollama provider).
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
