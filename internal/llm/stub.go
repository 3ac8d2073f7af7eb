package llm

import "context"

// StubProvider is a deterministic Provider for tests. It records calls and
// returns either a queued error script or a fixed result.
type StubProvider struct {
	ModelID string
	Result  *GenerationResult
	// Errs is consumed one per call before Result is returned; a nil entry
	// means that call succeeds.
	Errs  []error
	Calls int
}

func (s *StubProvider) Model() string {
	if s.ModelID != "" {
		return s.ModelID
	}
	return "stub-model"
}

func (s *StubProvider) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	call := s.Calls
	s.Calls++

	if call < len(s.Errs) && s.Errs[call] != nil {
		return nil, s.Errs[call]
	}

	if s.Result != nil {
		result := *s.Result
		if result.ModelID == "" {
			result.ModelID = s.Model()
		}
		return &result, nil
	}

	return &GenerationResult{
		MarkdownBody: "stub output",
		Backend:      BackendLocal,
		ModelID:      s.Model(),
	}, nil
}
