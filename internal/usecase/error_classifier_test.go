package usecase

import (
	"errors"
	"fmt"
	"testing"

	"friday/internal/domain"
)

func TestClassifySentinels(t *testing.T) {
	c := NewErrorClassifier()

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		sentinel error
	}{
		{"rate limit", domain.ErrRateLimit, ErrorCategoryRetryable, domain.ErrRateLimit},
		{"context overflow", domain.ErrContextOverflow, ErrorCategoryRetryable, domain.ErrContextOverflow},
		{"malformed response", fmt.Errorf("parse: %w", domain.ErrMalformedResponse), ErrorCategoryRetryable, domain.ErrMalformedResponse},
		{"empty completion", domain.ErrEmptyCompletion, ErrorCategoryRetryable, domain.ErrEmptyCompletion},
		{"provider error", domain.ErrProviderError, ErrorCategoryRetryable, domain.ErrProviderError},
		{"auth invalid", domain.ErrAuthInvalid, ErrorCategoryPermanent, domain.ErrAuthInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := c.Classify(tt.err)
			if cls.Category != tt.category {
				t.Errorf("category = %v, want %v", cls.Category, tt.category)
			}
			if !errors.Is(cls.Sentinel, tt.sentinel) {
				t.Errorf("sentinel = %v, want %v", cls.Sentinel, tt.sentinel)
			}
		})
	}
}

func TestClassifyByStatusCode(t *testing.T) {
	c := NewErrorClassifier()

	tests := []struct {
		err      string
		category ErrorCategory
		status   int
	}{
		{"API error 429: too many requests", ErrorCategoryRetryable, 429},
		{"API error 401: invalid key", ErrorCategoryPermanent, 401},
		{"API error 403: forbidden", ErrorCategoryPermanent, 403},
		{"API error 400: bad request", ErrorCategoryPermanent, 400},
		{"API error 500: internal error", ErrorCategoryRetryable, 500},
		{"API error 503: overloaded", ErrorCategoryRetryable, 503},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			cls := c.Classify(errors.New(tt.err))
			if cls.Category != tt.category {
				t.Errorf("category = %v, want %v", cls.Category, tt.category)
			}
			if cls.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", cls.StatusCode, tt.status)
			}
		})
	}
}

func TestClassifyByStringPatterns(t *testing.T) {
	c := NewErrorClassifier()

	retryable := []string{
		"Rate limit exceeded, slow down",
		"dial tcp: connection refused",
		"context deadline exceeded",
		"read: connection reset by peer",
	}
	for _, s := range retryable {
		if cls := c.Classify(errors.New(s)); cls.Category != ErrorCategoryRetryable {
			t.Errorf("Classify(%q).Category = %v, want retryable", s, cls.Category)
		}
	}

	if cls := c.Classify(errors.New("something novel happened")); cls.Category != ErrorCategoryUnknown {
		t.Errorf("unexpected category %v for unrecognized error", cls.Category)
	}
}

func TestClassifyNil(t *testing.T) {
	c := NewErrorClassifier()
	if cls := c.Classify(nil); cls.Category != ErrorCategoryUnknown || cls.Original != nil {
		t.Errorf("Classify(nil) = %+v, want zero value", cls)
	}
}
