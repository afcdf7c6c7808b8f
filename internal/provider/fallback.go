package provider

import (
	"context"
	"errors"
	"log/slog"
)

// withFallback wraps a primary Provider and retries on any error with a
// secondary one.
type withFallback struct {
	primary  Provider
	fallback Provider
}

// Name reports the primary backend.
func (w *withFallback) Name() string { return w.primary.Name() }

// Chat tries the primary provider; on any error tries the fallback.
func (w *withFallback) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error) {
	resp, err := w.primary.Chat(ctx, messages, tools)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	slog.Warn("primary LLM failed, trying fallback",
		slog.String("error", err.Error()),
		slog.Bool("auth_error", isAuthError(err)))

	resp, fallbackErr := w.fallback.Chat(ctx, messages, tools)
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	return resp, nil
}

// isAuthError returns true if err is a 401 or 403 ProviderError.
func isAuthError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsAuth()
}
