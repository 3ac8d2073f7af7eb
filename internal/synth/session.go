package synth

import (
	"context"
	"errors"
	"fmt"
)

// SessionState is the interactive loop's explicit state machine, kept
// separate from terminal I/O so the transition semantics are testable.
type SessionState int

const (
	StateCollect SessionState = iota // prompting for task/examples/guidelines
	StateGenerate
	StateReview // preview shown, waiting for an action
	StateDone
	StateAborted
)

func (s SessionState) String() string {
	switch s {
	case StateCollect:
		return "collect"
	case StateGenerate:
		return "generate"
	case StateReview:
		return "review"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Action is the operator's choice after previewing a generation.
type Action int

const (
	ActionAccept Action = iota
	ActionRegenerate
	ActionEdit
	ActionAbort
)

// Fields holds the raw inputs collected from the operator. On edit, prior
// values are passed back so prompts can pre-fill them.
type Fields struct {
	Task       string
	Examples   string
	Guidelines string
}

// SessionIO abstracts the terminal interaction so the loop can be driven by
// a scripted fake in tests.
type SessionIO interface {
	// CollectFields prompts for each field in turn, pre-filled with prior.
	CollectFields(prior Fields) (Fields, error)
	// ShowPreview displays a generation result to the operator.
	ShowPreview(result *Result) error
	// ChooseAction asks what to do with the previewed result.
	ChooseAction() (Action, error)
	// ReportError surfaces a generation failure; returning false aborts the
	// session, true returns to field collection.
	ReportError(err error) (retry bool)
}

// ErrAborted is returned when the operator abandons the session.
var ErrAborted = errors.New("session aborted")

// Session runs the interactive prompt-generate-review loop. No state
// persists across sessions except what the caller explicitly saves.
type Session struct {
	io     SessionIO
	orch   *Orchestrator
	state  SessionState
	fields Fields
	result *Result
}

// NewSession builds an interactive session over an orchestrator.
func NewSession(orch *Orchestrator, io SessionIO) *Session {
	return &Session{io: io, orch: orch, state: StateCollect}
}

// State exposes the current state, mostly for tests.
func (s *Session) State() SessionState {
	return s.state
}

// Result returns the accepted generation once Run finished successfully.
func (s *Session) Result() *Result {
	return s.result
}

// Run drives the state machine until the operator accepts or aborts.
func (s *Session) Run(ctx context.Context) error {
	for {
		switch s.state {
		case StateCollect:
			fields, err := s.io.CollectFields(s.fields)
			if err != nil {
				s.state = StateAborted
				continue
			}
			s.fields = fields
			s.state = StateGenerate

		case StateGenerate:
			result, err := s.orch.GenerateContext(ctx, s.fields.Task, s.fields.Examples, s.fields.Guidelines)
			if err != nil {
				if s.io.ReportError(err) {
					s.state = StateCollect
					continue
				}
				s.state = StateAborted
				continue
			}
			s.result = result
			s.state = StateReview

		case StateReview:
			if err := s.io.ShowPreview(s.result); err != nil {
				s.state = StateAborted
				continue
			}
			action, err := s.io.ChooseAction()
			if err != nil {
				s.state = StateAborted
				continue
			}
			s.state = nextState(action)

		case StateDone:
			return nil

		case StateAborted:
			return ErrAborted

		default:
			return fmt.Errorf("invalid session state %d", s.state)
		}
	}
}

// nextState maps a review action to the following state. Regenerate loops
// back to generation with the same request; edit returns to field
// collection with prior values pre-filled.
func nextState(action Action) SessionState {
	switch action {
	case ActionAccept:
		return StateDone
	case ActionRegenerate:
		return StateGenerate
	case ActionEdit:
		return StateCollect
	case ActionAbort:
		return StateAborted
	}
	return StateAborted
}
