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
	defaultAnthropicBaseURL     = "https://api.anthropic.com/v1"
	defaultAnthropicVersion     = "2023-06-01"
	anthropicVersionHeaderKey   = "anthropic-version"
	anthropicAPIKeyHeaderKey    = "x-api-key"
	anthropicMessagesPath       = "/messages"
	anthropicRequestContentType = "application/json"
)

// DefaultHostedModel is the fallback model for the hosted backend when
// neither a flag nor a saved preference names one.
const DefaultHostedModel = "claude-3-sonnet-20240229"

// anthropicClient implements Provider against the Anthropic Messages API.
type anthropicClient struct {
	model      string
	apiKey     string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     logging.Logger
}

// NewHostedProvider builds the hosted provider. A missing API key fails
// fast here, at provider-selection time, rather than on the network call.
func NewHostedProvider(config Config) (Provider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, &ProviderError{
			Kind:    ErrKindAuthFailure,
			Backend: BackendHosted,
			Err:     fmt.Errorf("no API key configured"),
			Hint:    "set the ANTHROPIC_API_KEY environment variable",
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	model := config.Model
	if model == "" {
		model = DefaultHostedModel
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &anthropicClient{
		model:      model,
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger("anthropic-client"),
	}, nil
}

func (c *anthropicClient) Model() string {
	return c.model
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	payload := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildUserPrompt(req)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + anthropicMessagesPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", anthropicRequestContentType)
	httpReq.Header.Set(anthropicAPIKeyHeaderKey, c.apiKey)
	httpReq.Header.Set(anthropicVersionHeaderKey, defaultAnthropicVersion)

	c.logger.Debug("POST %s model=%s max_tokens=%d", endpoint, c.model, c.maxTokens)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("HTTP request failed: %v", err)
		return nil, classifyTransportError(BackendHosted, err, "")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(BackendHosted, fmt.Errorf("read response: %w", err), "")
	}

	c.logger.Debug("Status: %d, body length: %d", resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyHTTPStatus(BackendHosted, resp.StatusCode, respBody)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendHosted,
			Err:     fmt.Errorf("decode response: %w", err),
			Snippet: responseSnippet(respBody),
		}
	}
	if apiResp.Error != nil && apiResp.Error.Message != "" {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendHosted,
			Err:     fmt.Errorf("%s: %s", apiResp.Error.Type, apiResp.Error.Message),
			Snippet: responseSnippet(respBody),
		}
	}

	content, thinking := parseAnthropicContent(apiResp.Content)
	if strings.TrimSpace(content) == "" {
		return nil, &ProviderError{
			Kind:    ErrKindInvalidResponse,
			Backend: BackendHosted,
			Err:     fmt.Errorf("response contains no text content"),
			Snippet: responseSnippet(respBody),
		}
	}

	// Prefer the model's native reasoning channel; fall back to the
	// chain-of-thought markers embedded in the text.
	reasoning := thinking
	markdown := content
	if reasoning == nil {
		reasoning, markdown = splitSynthesis(content)
	}

	modelID := strings.TrimSpace(apiResp.Model)
	if modelID == "" {
		modelID = c.model
	}

	result := &GenerationResult{
		MarkdownBody:   markdown,
		ReasoningTrace: reasoning,
		Backend:        BackendHosted,
		ModelID:        modelID,
		Usage: TokenUsage{
			PromptTokens:     apiResp.Usage.InputTokens,
			CompletionTokens: apiResp.Usage.OutputTokens,
			TotalTokens:      apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		},
	}

	c.logger.Debug("Stop reason: %s, usage: %d+%d tokens",
		apiResp.StopReason, result.Usage.PromptTokens, result.Usage.CompletionTokens)

	return result, nil
}

// parseAnthropicContent joins text blocks and collects thinking blocks when
// the model emitted an explicit reasoning channel.
func parseAnthropicContent(blocks []anthropicContentBlock) (content string, thinking *string) {
	var textParts, thinkingParts []string
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				textParts = append(textParts, block.Text)
			}
		case "thinking":
			if block.Thinking != "" {
				thinkingParts = append(thinkingParts, block.Thinking)
			}
		}
	}

	content = strings.Join(textParts, "\n")
	if len(thinkingParts) > 0 {
		joined := strings.TrimSpace(strings.Join(thinkingParts, "\n"))
		if joined != "" {
			thinking = &joined
		}
	}
	return content, thinking
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
	Error      *anthropicError         `json:"error,omitempty"`
}
