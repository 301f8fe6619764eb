package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// NewAuthError reports a missing or rejected API key for a provider.
func NewAuthError(provider string, cause error) *types.GustoError {
	return types.WrapError(
		types.PROVIDER_UNAVAILABLE,
		fmt.Sprintf("%s: missing or invalid API key", provider),
		cause,
	)
}

// NewProviderError wraps a provider-side failure.
func NewProviderError(provider string, cause error) *types.GustoError {
	return types.WrapError(
		types.PROVIDER_COMPLETION_ERROR,
		fmt.Sprintf("%s: completion failed", provider),
		cause,
	)
}

// NewBadResponseError reports a response the caller could not interpret
// (e.g., no valid JSON where structured output was requested).
func NewBadResponseError(provider, detail string) *types.GustoError {
	return types.NewError(
		types.PROVIDER_BAD_RESPONSE,
		fmt.Sprintf("%s: %s", provider, detail),
	)
}

// TranslateError converts a raw provider error into a GustoError, marking
// transient transport and rate-limit failures as retryable.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.WrapError(types.PROVIDER_COMPLETION_ERROR, provider+": request canceled", err)
	}

	msg := strings.ToLower(err.Error())
	transient := strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "overloaded")
	if transient {
		return types.WrapRetryableError(types.PROVIDER_UNAVAILABLE, provider+": transient failure", err)
	}

	if strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") {
		return NewAuthError(provider, err)
	}

	return NewProviderError(provider, err)
}
