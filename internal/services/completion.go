package services

import (
	"context"
	"errors"
	"time"

	"medicalink-backend/internal/llm"

	"go.uber.org/zap"
)

// ErrInvalidInput is returned when a request fails validation (empty message, rating out of range).
var ErrInvalidInput = errors.New("invalid input")

// degradedPrefix starts the text returned to the user when the completion service fails.
const degradedPrefix = "Sorry, an error occurred while processing your question. "

// now returns the current UTC time truncated to microseconds, the precision every store keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// completion wraps a Completer with the per-call timeout and the degraded fallback.
type completion struct {
	client  llm.Completer
	timeout time.Duration
	logger  *zap.Logger
}

// complete never fails: a completion error becomes the degraded text and degraded=true.
func (c completion) complete(ctx context.Context, userText string) (text string, degraded bool) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := c.client.Complete(callCtx, userText)
	if err != nil {
		c.logger.Warn("completion failed, returning degraded response",
			zap.Error(err),
			zap.Bool("completion_error", llm.IsCompletionError(err)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return degradedPrefix + err.Error(), true
	}
	c.logger.Debug("completion succeeded", zap.Duration("elapsed", time.Since(start)), zap.Int("chars", len(text)))
	return text, false
}
