// Package llm sends user questions to an external chat-completion service.
//
// Every provider returns the generated text verbatim or one of two typed errors:
// *UpstreamError when the service answered with a non-success status or an unusable
// payload, and *TransportError when the request never got a usable answer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// Completer produces a completion for a single user message under the fixed system prompt.
type Completer interface {
	Complete(ctx context.Context, userText string) (string, error)
}

// Options configures a provider. Zero values fall back to the provider's defaults.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  *float64 // nil means DefaultTemperature; 0 is a valid setting
	Timeout      time.Duration
	SystemPrompt string
}

const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = SystemPrompt
	}
	return o
}

// UpstreamError reports a response from the completion service that carries no usable text.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when the provider SDK does not expose it
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// TransportError reports a network-level failure, including timeouts.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsCompletionError reports whether err came from the completion service rather than from a caller bug.
func IsCompletionError(err error) bool {
	var upstream *UpstreamError
	var transport *TransportError
	return errors.As(err, &upstream) || errors.As(err, &transport)
}

// Validate checks credentials and reachability with one short completion through the normal client.
func Validate(ctx context.Context, c Completer) error {
	if _, err := c.Complete(ctx, "Hello"); err != nil {
		return fmt.Errorf("completion service validation failed: %w", err)
	}
	return nil
}

var statusPattern = regexp.MustCompile(`status code:? (\d{3})`)

// classifySDKError maps an error returned by a provider SDK onto the package's error types.
// SDKs that only report the HTTP status inside the message are matched on "status code NNN".
func classifySDKError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &TransportError{Provider: provider, Err: err}
	}
	status := 0
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ = strconv.Atoi(m[1])
	}
	return &UpstreamError{Provider: provider, StatusCode: status, Body: err.Error()}
}
