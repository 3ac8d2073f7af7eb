package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ohboyftw/ClaudeSynth/internal/logging"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	ollamaChatPath       = "/api/chat"
	ollamaTagsPath       = "/api/tags"
	ollamaNotRunningHint = "the local model server is not running; start it with: ollama serve"
)

// ollamaClient implements Provider and ModelLister against a local Ollama server.
type ollamaClient struct {
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     logging.Logger
}

// NewLocalProvider builds the local provider. No credential is required;
// model may be empty, in which case the best available model is selected
// on first use.
func NewLocalProvider(config Config) (Provider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	// Local inference can be slow; the default bound is generous but finite.
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	return &ollamaClient{
		model:      config.Model,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger("ollama-client"),
	}, nil
}

func (c *ollamaClient) Model() string {
	return c.model
}

func (c *ollamaClient) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	model := c.model
	if model == "" {
		available, err := c.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		model = PickDefaultModel(available)
		if model == "" {
			return nil, &ProviderError{
				Kind:    ErrKindUnreachable,
				Backend: BackendLocal,
				Err:     fmt.Errorf("no models installed"),
				Hint:    "install one with: ollama pull " + RecommendedModels[0],
			}
		}
		c.model = model
		c.logger.Info("Auto-selected local model: %s", model)
	}

	payload := ollamaRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		Stream: false,
		Options: map[string]any{
			"num_predict": c.maxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	endpoint := c.baseURL + ollamaChatPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("POST %s model=%s", endpoint, model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("HTTP request failed: %v", err)
		return nil, classifyTransportError(BackendLocal, err, ollamaNotRunningHint)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(BackendLocal, fmt.Errorf("read response: %w", err), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyHTTPStatus(BackendLocal, resp.StatusCode, respBody)
	}

	var apiResp ollamaResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendLocal,
			Err:     fmt.Errorf("decode ollama response: %w", err),
			Snippet: responseSnippet(respBody),
		}
	}
	if apiResp.Error != "" {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendLocal,
			Err:     fmt.Errorf("ollama error: %s", apiResp.Error),
			Snippet: responseSnippet(respBody),
		}
	}
	if strings.TrimSpace(apiResp.Message.Content) == "" {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendLocal,
			Err:     fmt.Errorf("response contains no content"),
			Snippet: responseSnippet(respBody),
		}
	}

	// Reasoning-capable models report a separate thinking field; other
	// models fall back to the chain-of-thought markers in the text.
	var reasoning *string
	content := apiResp.Message.Content
	if t := strings.TrimSpace(apiResp.Message.Thinking); t != "" {
		reasoning = &t
	} else {
		reasoning, content = splitSynthesis(apiResp.Message.Content)
	}

	modelID := strings.TrimSpace(apiResp.Model)
	if modelID == "" {
		modelID = model
	}

	return &GenerationResult{
		MarkdownBody:   content,
		ReasoningTrace: reasoning,
		Backend:        BackendLocal,
		ModelID:        modelID,
		Usage: TokenUsage{
			PromptTokens:     apiResp.PromptEvalCount,
			CompletionTokens: apiResp.EvalCount,
			TotalTokens:      apiResp.PromptEvalCount + apiResp.EvalCount,
		},
	}, nil
}

// ListModels queries the server for locally available model identifiers.
func (c *ollamaClient) ListModels(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + ollamaTagsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(BackendLocal, err, ollamaNotRunningHint)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(BackendLocal, fmt.Errorf("read response: %w", err), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyHTTPStatus(BackendLocal, resp.StatusCode, respBody)
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(respBody, &tags); err != nil {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendLocal,
			Err:     fmt.Errorf("decode tags response: %w", err),
			Snippet: responseSnippet(respBody),
		}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Thinking string `json:"thinking,omitempty"`
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}
