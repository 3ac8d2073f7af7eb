package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ohboyftw/ClaudeSynth/internal/config"
	"github.com/ohboyftw/ClaudeSynth/internal/llm"
	"github.com/ohboyftw/ClaudeSynth/internal/synth"
)

// Exit codes per the CLI contract.
const (
	exitOK         = 0
	exitError      = 1 // uncategorized, including output I/O failures
	exitValidation = 2
	exitConfig     = 3
	exitProvider   = 4
)

func main() {
	// A .env file next to the working directory may carry ANTHROPIC_API_KEY
	// or OLLAMA_HOST; absence is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, synth.ErrAborted) {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case synth.IsValidationError(err):
		return exitValidation
	case config.IsConfigError(err):
		return exitConfig
	case llm.IsProviderError(err):
		return exitProvider
	default:
		return exitError
	}
}
