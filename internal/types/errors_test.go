package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGustoError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GustoError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewError(ROUTE_UNKNOWN, "router returned an unknown route"),
			expected: "[ROUTE_UNKNOWN] router returned an unknown route",
		},
		{
			name:     "with cause",
			err:      WrapError(CYPHER_EXECUTION_FAILED, "query failed", fmt.Errorf("connection refused")),
			expected: "[CYPHER_EXECUTION_FAILED] query failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestGustoError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := WrapRetryableError(CACHE_UNAVAILABLE, "redis unreachable", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable)
}

func TestGustoError_Is_MatchesByCode(t *testing.T) {
	err := WrapError(SQL_NOT_READ_ONLY, "statement rejected", errors.New("UPDATE detected"))

	assert.True(t, errors.Is(err, NewError(SQL_NOT_READ_ONLY, "")))
	assert.False(t, errors.Is(err, NewError(SQL_VALIDATION_FAILED, "")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(GRAPHRAG_UNAVAILABLE, "backend down")))
	assert.False(t, IsRetryable(NewError(PARAM_MISSING, "dish_name required")))
	assert.False(t, IsRetryable(errors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", NewRetryableError(PROVIDER_UNAVAILABLE, "503"))
	assert.True(t, IsRetryable(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, TEMPLATE_NOT_FOUND, CodeOf(NewError(TEMPLATE_NOT_FOUND, "no such template")))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
