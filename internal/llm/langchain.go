package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const ProviderLangChain = "langchain"

// Local OpenAI-compatible servers such as Ollama ignore the token, but langchaingo requires one.
const placeholderToken = "not-needed"

// LangChainClient talks to any OpenAI-compatible server (Ollama, LiteLLM, vLLM) through langchaingo.
type LangChainClient struct {
	llm  llms.Model
	opts Options
}

// NewLangChainClient creates a langchaingo-backed Completer.
// Either an API key or a base URL pointing at a self-hosted server is required.
func NewLangChainClient(opts Options) (*LangChainClient, error) {
	if opts.APIKey == "" && opts.BaseURL == "" {
		return nil, errors.New("langchain: API key or base URL is required")
	}
	opts = opts.withDefaults(defaultOpenAIModel)

	token := opts.APIKey
	if token == "" {
		token = placeholderToken
	}
	clientOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(opts.Model),
		openai.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(opts.BaseURL))
	}

	model, err := openai.New(clientOpts...)
	if err != nil {
		return nil, err
	}
	return &LangChainClient{llm: model, opts: opts}, nil
}

// Complete sends the system prompt and userText and returns the first choice's content.
func (c *LangChainClient) Complete(ctx context.Context, userText string) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, c.opts.SystemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, userText),
		},
		llms.WithMaxTokens(c.opts.MaxTokens),
		llms.WithTemperature(*c.opts.Temperature),
	)
	if err != nil {
		return "", classifySDKError(ProviderLangChain, err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Provider: ProviderLangChain, StatusCode: http.StatusOK, Body: "response has no choices"}
	}
	return resp.Choices[0].Content, nil
}
