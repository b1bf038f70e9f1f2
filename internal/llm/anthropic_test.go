package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.APIKey = "ak-test"
	opts.BaseURL = server.URL
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	client, err := NewAnthropicClient(opts)
	require.NoError(t, err)
	return client
}

func TestAnthropicClientComplete(t *testing.T) {
	zero := 0.0
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, defaultAnthropicModel, body["model"])
		assert.Equal(t, SystemPrompt, body["system"])
		assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])
		assert.Equal(t, 0.0, body["temperature"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",`+
			`"content":[{"type":"text","text":"Rest and fluids."}],"stop_reason":"end_turn",`+
			`"usage":{"input_tokens":10,"output_tokens":4}}`)
	}, Options{Temperature: &zero})

	text, err := client.Complete(context.Background(), "I have a cold")
	require.NoError(t, err)
	assert.Equal(t, "Rest and fluids.", text)
}

func TestAnthropicClientUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain body", `upstream exploded`},
		{"api error body", `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, tt.body)
			}, Options{})

			_, err := client.Complete(context.Background(), "hi")
			var upstream *UpstreamError
			require.True(t, errors.As(err, &upstream), "got %T: %v", err, err)
			assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
			assert.Equal(t, ProviderAnthropic, upstream.Provider)
		})
	}
}

func TestAnthropicClientMalformedPayload(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": [`)
	}, Options{})

	_, err := client.Complete(context.Background(), "hi")
	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream), "got %T: %v", err, err)
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	client := newAnthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg_2","type":"message","role":"assistant","content":[]}`)
	}, Options{})

	_, err := client.Complete(context.Background(), "hi")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "got %T: %v", err, err)
	assert.Equal(t, http.StatusOK, upstream.StatusCode)
}

func TestAnthropicClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewAnthropicClient(Options{APIKey: "ak-test", BaseURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")
	var transport *TransportError
	assert.True(t, errors.As(err, &transport), "got %T: %v", err, err)
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(Options{})
	assert.Error(t, err)
}
