package domain

import (
	"errors"
	"fmt"
)

// Category sentinels shared across the module.
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrDuplicate    = fmt.Errorf("duplicate")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConfigLoad   = fmt.Errorf("failed to load configuration")
	ErrDecryption   = fmt.Errorf("decryption failed")
)

// Sentinel errors for the orchestration core.
var (
	// ErrMalformedResponse marks a reasoning completion missing its
	// required structural markers. Distinct from an empty or absent
	// completion, so callers can tell "unparseable" from "no answer".
	ErrMalformedResponse = fmt.Errorf("malformed model response")
	// ErrEmptyCompletion marks a provider response with no usable choice.
	ErrEmptyCompletion = fmt.Errorf("empty completion from provider")
	// ErrAgentFailed marks an agent that exhausted its retries and
	// aborted the pipeline.
	ErrAgentFailed = fmt.Errorf("agent execution failed")

	// Provider resilience errors.
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
	ErrContextOverflow = fmt.Errorf("context window exceeded")
	ErrProviderError   = fmt.Errorf("provider error")
)

// DomainError wraps a sentinel error with operation context.
type DomainError struct {
	Op     string // operation name (e.g., "Executor.Execute")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeDuplicate         ErrorCode = "DUPLICATE"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeConfigLoad        ErrorCode = "CONFIG_LOAD"
	CodeDecryption        ErrorCode = "DECRYPTION"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	CodeEmptyCompletion   ErrorCode = "EMPTY_COMPLETION"
	CodeAgentFailed       ErrorCode = "AGENT_FAILED"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid       ErrorCode = "AUTH_INVALID"
	CodeContextOverflow   ErrorCode = "CONTEXT_OVERFLOW"
	CodeProviderError     ErrorCode = "PROVIDER_ERROR"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:          CodeNotFound,
	ErrDuplicate:         CodeDuplicate,
	ErrInvalidInput:      CodeInvalidInput,
	ErrConfigLoad:        CodeConfigLoad,
	ErrDecryption:        CodeDecryption,
	ErrMalformedResponse: CodeMalformedResponse,
	ErrEmptyCompletion:   CodeEmptyCompletion,
	ErrAgentFailed:       CodeAgentFailed,
	ErrRateLimit:         CodeRateLimit,
	ErrAuthInvalid:       CodeAuthInvalid,
	ErrContextOverflow:   CodeContextOverflow,
	ErrProviderError:     CodeProviderError,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and walks the chain with errors.Is.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}
