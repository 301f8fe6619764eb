package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for GustoBot errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// LLM provider error codes
const (
	PROVIDER_UNAVAILABLE      ErrorCode = "PROVIDER_UNAVAILABLE"
	PROVIDER_COMPLETION_ERROR ErrorCode = "PROVIDER_COMPLETION_ERROR"
	PROVIDER_BAD_RESPONSE     ErrorCode = "PROVIDER_BAD_RESPONSE"
	EMBEDDING_FAILED          ErrorCode = "EMBEDDING_FAILED"
)

// Workflow error codes
const (
	WORKFLOW_NODE_FAILED   ErrorCode = "WORKFLOW_NODE_FAILED"
	WORKFLOW_NO_SUCH_NODE  ErrorCode = "WORKFLOW_NO_SUCH_NODE"
	WORKFLOW_CYCLE_LIMIT   ErrorCode = "WORKFLOW_CYCLE_LIMIT"
	GUARDRAIL_BLOCKED      ErrorCode = "GUARDRAIL_BLOCKED"
	ROUTE_UNKNOWN          ErrorCode = "ROUTE_UNKNOWN"
	PLAN_EMPTY             ErrorCode = "PLAN_EMPTY"
	TOOL_SELECTION_FAILED  ErrorCode = "TOOL_SELECTION_FAILED"
	TOOL_EXECUTION_FAILED  ErrorCode = "TOOL_EXECUTION_FAILED"
	SUMMARIZATION_FAILED   ErrorCode = "SUMMARIZATION_FAILED"
	CAPABILITY_UNSUPPORTED ErrorCode = "CAPABILITY_UNSUPPORTED"
)

// Knowledge graph error codes
const (
	GRAPH_CONNECTION_FAILED   ErrorCode = "GRAPH_CONNECTION_FAILED"
	CYPHER_GENERATION_FAILED  ErrorCode = "CYPHER_GENERATION_FAILED"
	CYPHER_VALIDATION_FAILED  ErrorCode = "CYPHER_VALIDATION_FAILED"
	CYPHER_EXECUTION_FAILED   ErrorCode = "CYPHER_EXECUTION_FAILED"
	TEMPLATE_NOT_FOUND        ErrorCode = "TEMPLATE_NOT_FOUND"
	TEMPLATE_MATCH_BELOW_MIN  ErrorCode = "TEMPLATE_MATCH_BELOW_MIN"
	PARAM_MISSING             ErrorCode = "PARAM_MISSING"
	PARAM_EXTRACTION_FAILED   ErrorCode = "PARAM_EXTRACTION_FAILED"
	GRAPHRAG_UNAVAILABLE      ErrorCode = "GRAPHRAG_UNAVAILABLE"
	GRAPHRAG_MODE_UNSUPPORTED ErrorCode = "GRAPHRAG_MODE_UNSUPPORTED"
)

// Text2SQL error codes
const (
	SQL_SCHEMA_RETRIEVAL_FAILED ErrorCode = "SQL_SCHEMA_RETRIEVAL_FAILED"
	SQL_GENERATION_FAILED       ErrorCode = "SQL_GENERATION_FAILED"
	SQL_VALIDATION_FAILED       ErrorCode = "SQL_VALIDATION_FAILED"
	SQL_NOT_READ_ONLY           ErrorCode = "SQL_NOT_READ_ONLY"
	SQL_EXECUTION_FAILED        ErrorCode = "SQL_EXECUTION_FAILED"
	SQL_CONNECTION_NOT_FOUND    ErrorCode = "SQL_CONNECTION_NOT_FOUND"
)

// Storage error codes
const (
	CACHE_UNAVAILABLE     ErrorCode = "CACHE_UNAVAILABLE"
	CACHE_STORE_FAILED    ErrorCode = "CACHE_STORE_FAILED"
	HISTORY_UNAVAILABLE   ErrorCode = "HISTORY_UNAVAILABLE"
	VECTOR_STORE_FAILED   ErrorCode = "VECTOR_STORE_FAILED"
	VECTOR_SEARCH_FAILED  ErrorCode = "VECTOR_SEARCH_FAILED"
	KB_INGEST_FAILED      ErrorCode = "KB_INGEST_FAILED"
	KB_DOCUMENT_NOT_FOUND ErrorCode = "KB_DOCUMENT_NOT_FOUND"
)

// GustoError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type GustoError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *GustoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *GustoError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *GustoError) Is(target error) bool {
	var gustoErr *GustoError
	if errors.As(target, &gustoErr) {
		return e.Code == gustoErr.Code
	}
	return false
}

// NewError creates a new non-retryable GustoError with the given code and message.
func NewError(code ErrorCode, message string) *GustoError {
	return &GustoError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable GustoError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *GustoError {
	return &GustoError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable GustoError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *GustoError {
	return &GustoError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// WrapRetryableError creates a retryable GustoError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *GustoError {
	return &GustoError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err (or any error in its chain) is a retryable GustoError.
func IsRetryable(err error) bool {
	var gustoErr *GustoError
	if errors.As(err, &gustoErr) {
		return gustoErr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err if it is a GustoError, or an empty code.
func CodeOf(err error) ErrorCode {
	var gustoErr *GustoError
	if errors.As(err, &gustoErr) {
		return gustoErr.Code
	}
	return ""
}
