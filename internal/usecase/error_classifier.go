package usecase

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"friday/internal/domain"
)

// ErrorCategory indicates whether an error is retryable or permanent.
type ErrorCategory int

const (
	ErrorCategoryUnknown   ErrorCategory = iota
	ErrorCategoryRetryable               // 429, 5xx, connection errors, malformed output
	ErrorCategoryPermanent               // 401, 403, 400
)

// ClassifiedError holds the result of error classification.
type ClassifiedError struct {
	Original   error
	Category   ErrorCategory
	Sentinel   error // mapped domain sentinel (e.g. domain.ErrRateLimit), or nil
	StatusCode int   // extracted HTTP status, or 0 if unknown
}

// ErrorClassifier analyzes model-call errors and categorizes them so that
// the retry policy can stop early on errors another attempt cannot fix
// (bad credentials, rejected requests). Malformed model output stays
// retryable: a fresh completion may parse.
type ErrorClassifier struct{}

// NewErrorClassifier creates a new classifier.
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// apiErrorPattern matches "API error <status_code>:" produced by LLM providers.
var apiErrorPattern = regexp.MustCompile(`API error (\d+):`)

// Classify inspects an error (typically from an LLM provider) and returns
// a ClassifiedError with category and mapped sentinel.
func (c *ErrorClassifier) Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	if cls := c.classifyBySentinel(err); cls.Category != ErrorCategoryUnknown {
		return cls
	}

	errStr := err.Error()

	if matches := apiErrorPattern.FindStringSubmatch(errStr); len(matches) == 2 {
		code, _ := strconv.Atoi(matches[1])
		return c.classifyByStatus(err, code)
	}

	return c.classifyByString(err, errStr)
}

// classifyBySentinel checks if the error wraps a known domain sentinel.
func (c *ErrorClassifier) classifyBySentinel(err error) ClassifiedError {
	switch {
	case errors.Is(err, domain.ErrRateLimit):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrRateLimit,
		}
	case errors.Is(err, domain.ErrContextOverflow):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrContextOverflow,
		}
	case errors.Is(err, domain.ErrMalformedResponse):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrMalformedResponse,
		}
	case errors.Is(err, domain.ErrEmptyCompletion):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrEmptyCompletion,
		}
	case errors.Is(err, domain.ErrProviderError):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrProviderError,
		}
	case errors.Is(err, domain.ErrAuthInvalid):
		return ClassifiedError{
			Original: err, Category: ErrorCategoryPermanent,
			Sentinel: domain.ErrAuthInvalid,
		}
	default:
		return ClassifiedError{Original: err, Category: ErrorCategoryUnknown}
	}
}

func (c *ErrorClassifier) classifyByStatus(err error, code int) ClassifiedError {
	switch {
	case code == 429:
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable,
			Sentinel: domain.ErrRateLimit, StatusCode: code,
		}
	case code == 401 || code == 403:
		return ClassifiedError{
			Original: err, Category: ErrorCategoryPermanent,
			Sentinel: domain.ErrAuthInvalid, StatusCode: code,
		}
	case code == 400:
		return ClassifiedError{
			Original: err, Category: ErrorCategoryPermanent, StatusCode: code,
		}
	case code >= 500 && code < 600:
		return ClassifiedError{
			Original: err, Category: ErrorCategoryRetryable, StatusCode: code,
		}
	default:
		return ClassifiedError{
			Original: err, Category: ErrorCategoryPermanent, StatusCode: code,
		}
	}
}

func (c *ErrorClassifier) classifyByString(err error, errStr string) ClassifiedError {
	lower := strings.ToLower(errStr)

	for _, p := range []string{"rate limit", "too many requests"} {
		if strings.Contains(lower, p) {
			return ClassifiedError{
				Original: err, Category: ErrorCategoryRetryable,
				Sentinel: domain.ErrRateLimit,
			}
		}
	}

	// Transient network / timeout patterns.
	for _, p := range []string{
		"connection refused", "no such host", "timeout",
		"deadline exceeded", "connection reset",
	} {
		if strings.Contains(lower, p) {
			return ClassifiedError{
				Original: err, Category: ErrorCategoryRetryable,
			}
		}
	}

	return ClassifiedError{Original: err, Category: ErrorCategoryUnknown}
}
