package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	synerrors "github.com/ohboyftw/ClaudeSynth/internal/errors"
	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

// retryProvider wraps a Provider with the orchestrator's retry policy:
// rate-limited responses are retried with capped exponential backoff, every
// other failure is surfaced immediately.
type retryProvider struct {
	underlying  Provider
	retryConfig synerrors.RetryConfig
	logger      logging.Logger
}

// WrapWithRetry applies the retry policy to a provider.
func WrapWithRetry(provider Provider, retryConfig synerrors.RetryConfig) Provider {
	return &retryProvider{
		underlying:  provider,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryProvider) Model() string {
	return c.underlying.Model()
}

func (c *retryProvider) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	startTime := time.Now()

	result, err := synerrors.RetryWithResult(ctx, c.retryConfig, func(ctx context.Context) (*GenerationResult, error) {
		response, err := c.underlying.Generate(ctx, req)
		if err != nil {
			return nil, classifyForRetry(err)
		}
		return response, nil
	}, c.logger)

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("Generation failed after %v: %v", duration.Round(time.Millisecond), err)
		return nil, unwrapRetryError(err)
	}

	if duration > 5*time.Second {
		c.logger.Debug("Generation succeeded after %v", duration.Round(time.Millisecond))
	}
	return result, nil
}

// ListModels proxies to the underlying provider when it supports listing.
func (c *retryProvider) ListModels(ctx context.Context) ([]string, error) {
	if lister, ok := c.underlying.(ModelLister); ok {
		return lister.ListModels(ctx)
	}
	return nil, fmt.Errorf("backend does not support model listing")
}

// classifyForRetry marks rate-limit errors transient so the retry helper
// backs off and tries again; everything else stops retrying immediately.
func classifyForRetry(err error) error {
	if ProviderErrorOfKind(err, ErrKindRateLimited) {
		return synerrors.NewTransientError(err, "")
	}
	return err
}

// unwrapRetryError strips the retry wrappers so callers see the original
// ProviderError (e.g. RateLimited after exhausting attempts).
func unwrapRetryError(err error) error {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}
	return err
}
