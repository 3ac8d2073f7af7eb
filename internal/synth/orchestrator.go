package synth

import (
	"context"

	synerrors "github.com/ohboyftw/ClaudeSynth/internal/errors"
	"github.com/ohboyftw/ClaudeSynth/internal/llm"
	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

// Result bundles everything produced by one generation cycle.
type Result struct {
	Request    llm.GenerationRequest
	Generation llm.GenerationResult
	Markdown   string // the rendered context document
	Tokens     int    // estimated prompt tokens, informational
}

// Orchestrator wires assembler, provider, and renderer together for one
// request/response cycle. It owns the retry policy: the provider passed to
// New is wrapped so that rate-limited calls are retried with backoff.
type Orchestrator struct {
	provider  llm.Provider
	assembler *Assembler
	logger    logging.Logger
}

// Options tunes an Orchestrator. Zero values select defaults.
type Options struct {
	MaxRequestBytes int
	Retry           *synerrors.RetryConfig
	Logger          logging.Logger
}

// New builds an Orchestrator around a provider.
func New(provider llm.Provider, opts Options) *Orchestrator {
	retryConfig := synerrors.DefaultRetryConfig()
	if opts.Retry != nil {
		retryConfig = *opts.Retry
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewComponentLogger("orchestrator")
	}

	return &Orchestrator{
		provider:  llm.WrapWithRetry(provider, retryConfig),
		assembler: NewAssembler(opts.MaxRequestBytes),
		logger:    logger,
	}
}

// GenerateContext runs one single-shot cycle: assemble, generate, render.
// Validation failures never reach the provider; the renderer only runs
// after a successful generation, so output is never partially built.
func (o *Orchestrator) GenerateContext(ctx context.Context, task, examples, guidelines string) (*Result, error) {
	req, err := o.assembler.Assemble(task, examples, guidelines)
	if err != nil {
		return nil, err
	}

	tokens := EstimateTokens(req)
	o.logger.Info("Generating context via %s (~%d prompt tokens)", o.provider.Model(), tokens)

	generation, err := o.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Request:    req,
		Generation: *generation,
		Markdown:   Render(req, *generation),
		Tokens:     tokens,
	}, nil
}

// Regenerate re-runs generation for an already-assembled request. Providers
// may be non-deterministic, so repeated calls can legitimately differ.
func (o *Orchestrator) Regenerate(ctx context.Context, req llm.GenerationRequest) (*Result, error) {
	generation, err := o.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{
		Request:    req,
		Generation: *generation,
		Markdown:   Render(req, *generation),
		Tokens:     EstimateTokens(req),
	}, nil
}
