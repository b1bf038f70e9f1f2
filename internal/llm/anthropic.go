package llm

import (
	"context"
	"errors"
	"net/http"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const (
	ProviderAnthropic = "anthropic"

	defaultAnthropicModel = "claude-3-haiku-20240307"
)

// AnthropicClient calls the Anthropic Messages API through go-anthropic.
type AnthropicClient struct {
	client *anthropic.Client
	opts   Options
}

// NewAnthropicClient creates an Anthropic-backed Completer.
func NewAnthropicClient(opts Options) (*AnthropicClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	opts = opts.withDefaults(defaultAnthropicModel)

	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts.APIKey, clientOpts...),
		opts:   opts,
	}, nil
}

// Complete sends the system prompt and userText and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, userText string) (string, error) {
	temperature := float32(*c.opts.Temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.opts.Model),
		System:      c.opts.SystemPrompt,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(userText)},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		var reqErr *anthropic.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
			return "", &UpstreamError{Provider: ProviderAnthropic, StatusCode: reqErr.StatusCode, Body: err.Error()}
		}
		return "", classifySDKError(ProviderAnthropic, err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", &UpstreamError{Provider: ProviderAnthropic, StatusCode: http.StatusOK, Body: "response has no text content"}
	}
	return text, nil
}
