package synth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohboyftw/ClaudeSynth/internal/llm"
)

// scriptedIO drives a Session from canned responses.
type scriptedIO struct {
	fields       []Fields
	actions      []Action
	retryOnError bool

	collectCalls int
	previews     []*Result
}

func (s *scriptedIO) CollectFields(prior Fields) (Fields, error) {
	if s.collectCalls >= len(s.fields) {
		return Fields{}, fmt.Errorf("no more scripted fields")
	}
	fields := s.fields[s.collectCalls]
	s.collectCalls++
	return fields, nil
}

func (s *scriptedIO) ShowPreview(result *Result) error {
	s.previews = append(s.previews, result)
	return nil
}

func (s *scriptedIO) ChooseAction() (Action, error) {
	if len(s.actions) == 0 {
		return ActionAbort, fmt.Errorf("no more scripted actions")
	}
	action := s.actions[0]
	s.actions = s.actions[1:]
	return action, nil
}

func (s *scriptedIO) ReportError(err error) bool {
	return s.retryOnError
}

func TestSessionAcceptFirstResult(t *testing.T) {
	t.Parallel()

	stub := &llm.StubProvider{
		Result: &llm.GenerationResult{MarkdownBody: "body", Backend: llm.BackendLocal, ModelID: "m"},
	}
	io := &scriptedIO{
		fields:  []Fields{{Task: "do it"}},
		actions: []Action{ActionAccept},
	}
	session := NewSession(newTestOrchestrator(stub), io)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, StateDone, session.State())
	require.NotNil(t, session.Result())
	assert.Contains(t, session.Result().Markdown, "body")
	assert.Len(t, io.previews, 1)
	assert.Equal(t, 1, stub.Calls)
}

func TestSessionRegenerateCallsProviderAgain(t *testing.T) {
	t.Parallel()

	stub := &llm.StubProvider{
		Result: &llm.GenerationResult{MarkdownBody: "body", Backend: llm.BackendLocal, ModelID: "m"},
	}
	io := &scriptedIO{
		fields:  []Fields{{Task: "do it"}},
		actions: []Action{ActionRegenerate, ActionAccept},
	}
	session := NewSession(newTestOrchestrator(stub), io)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, 2, stub.Calls)
	assert.Len(t, io.previews, 2)
	// Only one round of field collection: regenerate reuses the request.
	assert.Equal(t, 1, io.collectCalls)
}

func TestSessionEditReturnsToCollection(t *testing.T) {
	t.Parallel()

	stub := &llm.StubProvider{
		Result: &llm.GenerationResult{MarkdownBody: "body", Backend: llm.BackendLocal, ModelID: "m"},
	}
	io := &scriptedIO{
		fields:  []Fields{{Task: "first"}, {Task: "second"}},
		actions: []Action{ActionEdit, ActionAccept},
	}
	session := NewSession(newTestOrchestrator(stub), io)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, 2, io.collectCalls)
	assert.Equal(t, "second", session.Result().Request.TaskDescription)
}

func TestSessionAbort(t *testing.T) {
	t.Parallel()

	stub := &llm.StubProvider{
		Result: &llm.GenerationResult{MarkdownBody: "body", Backend: llm.BackendLocal, ModelID: "m"},
	}
	io := &scriptedIO{
		fields:  []Fields{{Task: "do it"}},
		actions: []Action{ActionAbort},
	}
	session := NewSession(newTestOrchestrator(stub), io)

	assert.ErrorIs(t, session.Run(context.Background()), ErrAborted)
	assert.Equal(t, StateAborted, session.State())
}

func TestSessionGenerationErrorCanRetry(t *testing.T) {
	t.Parallel()

	unreachable := &llm.ProviderError{Kind: llm.ErrKindUnreachable, Backend: llm.BackendLocal, Err: fmt.Errorf("refused")}
	stub := &llm.StubProvider{
		Result: &llm.GenerationResult{MarkdownBody: "body", Backend: llm.BackendLocal, ModelID: "m"},
		Errs:   []error{unreachable},
	}
	io := &scriptedIO{
		fields:       []Fields{{Task: "do it"}, {Task: "do it"}},
		actions:      []Action{ActionAccept},
		retryOnError: true,
	}
	session := NewSession(newTestOrchestrator(stub), io)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, 2, io.collectCalls)
}

func TestSessionGenerationErrorAborts(t *testing.T) {
	t.Parallel()

	unreachable := &llm.ProviderError{Kind: llm.ErrKindUnreachable, Backend: llm.BackendLocal, Err: fmt.Errorf("refused")}
	stub := &llm.StubProvider{Errs: []error{unreachable}}
	io := &scriptedIO{
		fields: []Fields{{Task: "do it"}},
	}
	session := NewSession(newTestOrchestrator(stub), io)

	assert.ErrorIs(t, session.Run(context.Background()), ErrAborted)
}

func TestNextStateTransitions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StateDone, nextState(ActionAccept))
	assert.Equal(t, StateGenerate, nextState(ActionRegenerate))
	assert.Equal(t, StateCollect, nextState(ActionEdit))
	assert.Equal(t, StateAborted, nextState(ActionAbort))
}
