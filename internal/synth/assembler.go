package synth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ohboyftw/ClaudeSynth/internal/llm"
)

// DefaultMaxRequestBytes bounds the combined size of all request fields.
const DefaultMaxRequestBytes = 100_000

// ValidationError indicates a user-fixable input problem, detected before
// any provider call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// Assembler builds GenerationRequests from raw text fields and enforces the
// size invariant.
type Assembler struct {
	maxBytes int
}

// NewAssembler returns an Assembler with the given combined-size bound;
// zero or negative means DefaultMaxRequestBytes.
func NewAssembler(maxBytes int) *Assembler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	return &Assembler{maxBytes: maxBytes}
}

// Assemble normalizes the raw fields into a GenerationRequest. A context
// file with no task is meaningless, so an empty task fails validation.
func (a *Assembler) Assemble(task, examples, guidelines string) (llm.GenerationRequest, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return llm.GenerationRequest{}, &ValidationError{Msg: "task description must not be empty"}
	}

	combined := len(task) + len(examples) + len(guidelines)
	if combined > a.maxBytes {
		return llm.GenerationRequest{}, &ValidationError{
			Msg: fmt.Sprintf("combined input is %d bytes, exceeding the %d byte limit", combined, a.maxBytes),
		}
	}

	return llm.GenerationRequest{
		TaskDescription:   task,
		CodeExamples:      examples,
		ProjectGuidelines: guidelines,
	}, nil
}

var (
	tokenEncoderOnce sync.Once
	tokenEncoder     *tiktoken.Tiktoken
)

// EstimateTokens approximates the prompt token count for operator feedback.
// The byte-size invariant is the hard limit; this is informational only.
// Falls back to a bytes/4 heuristic when the encoding is unavailable.
func EstimateTokens(req llm.GenerationRequest) int {
	text := req.TaskDescription + "\n" + req.CodeExamples + "\n" + req.ProjectGuidelines

	tokenEncoderOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			tokenEncoder = enc
		}
	})
	if tokenEncoder != nil {
		return len(tokenEncoder.Encode(text, nil, nil))
	}
	return len(text) / 4
}
