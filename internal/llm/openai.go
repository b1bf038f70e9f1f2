package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	ProviderOpenAI = "openai"

	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-3.5-turbo"

	maxResponseBytes = 4 << 20
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint directly.
type OpenAIClient struct {
	endpoint   string
	opts       Options
	httpClient *http.Client
}

// NewOpenAIClient creates a client for POST {BaseURL}/v1/chat/completions.
// BaseURL may already end in /v1.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	opts = opts.withDefaults(defaultOpenAIModel)

	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	endpoint := base + "/v1/chat/completions"
	if strings.HasSuffix(base, "/v1") {
		endpoint = base + "/chat/completions"
	}

	return &OpenAIClient{
		endpoint: endpoint,
		opts:     opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message *chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt and userText and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, userText string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.opts.SystemPrompt},
			{Role: "user", Content: userText},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: *c.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: ProviderOpenAI, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Provider: ProviderOpenAI, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &UpstreamError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Body: "malformed response: " + string(respBody)}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return "", &UpstreamError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Body: "response has no choices: " + string(respBody)}
	}

	return result.Choices[0].Message.Content, nil
}
