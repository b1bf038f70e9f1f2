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

func TestOpenAIClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, SystemPrompt, req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "What are symptoms of flu?", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Fever and cough."},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "What are symptoms of flu?")
	require.NoError(t, err)
	assert.Equal(t, "Fever and cough.", text)
}

func TestOpenAIClientSendsZeroTemperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		temperature, ok := body["temperature"]
		require.True(t, ok, "temperature missing from request body")
		assert.Equal(t, 0.0, temperature)
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer server.Close()

	zero := 0.0
	client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL, Temperature: &zero})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hi")
	require.NoError(t, err)
}

func TestOpenAIClientBaseURLWithVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestOpenAIClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "expected *UpstreamError, got %T", err)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "boom")
	assert.Contains(t, err.Error(), "500")
	assert.True(t, IsCompletionError(err))
}

func TestOpenAIClientMalformedPayload(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":   `<html>oops</html>`,
		"no choices": `{"choices":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, payload)
			}))
			defer server.Close()

			client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "hello")
			var upstream *UpstreamError
			require.True(t, errors.As(err, &upstream), "expected *UpstreamError, got %T", err)
			assert.Equal(t, http.StatusOK, upstream.StatusCode)
		})
	}
}

func TestOpenAIClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	var transport *TransportError
	require.True(t, errors.As(err, &transport), "expected *TransportError, got %T", err)
	assert.True(t, IsCompletionError(err))
}

func TestOpenAIClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewOpenAIClient(Options{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	var transport *TransportError
	assert.True(t, errors.As(err, &transport), "expected *TransportError, got %T", err)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Options{})
	assert.Error(t, err)
}
