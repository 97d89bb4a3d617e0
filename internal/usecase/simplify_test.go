package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"friday/internal/domain"
)

func TestSimplify(t *testing.T) {
	provider := &scriptedProvider{script: []string{"short and sweet"}}
	s := NewSimplifier(provider, "test-model", NewRetrier(3, time.Millisecond, nil, nil))

	out, err := s.Simplify(context.Background(), "long technical dump")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	if out != "short and sweet" {
		t.Errorf("Simplify() = %q", out)
	}

	req := provider.request(0)
	if req.Temperature != simplifyTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, simplifyTemperature)
	}
	if !strings.Contains(req.Messages[0].Content, "long technical dump") {
		t.Error("prompt is missing the original message")
	}
}

func TestSimplifyRetriesEmptyCompletion(t *testing.T) {
	provider := &scriptedProvider{script: []string{"", "  ", "readable now"}}
	s := NewSimplifier(provider, "test-model", NewRetrier(3, time.Millisecond, nil, nil))

	out, err := s.Simplify(context.Background(), "x")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	if out != "readable now" {
		t.Errorf("Simplify() = %q", out)
	}
	if provider.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", provider.callCount())
	}
}

func TestSimplifyExhaustsRetries(t *testing.T) {
	provider := &scriptedProvider{script: []string{""}}
	s := NewSimplifier(provider, "test-model", NewRetrier(3, time.Millisecond, nil, nil))

	_, err := s.Simplify(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmptyCompletion) {
		t.Errorf("Simplify() error = %v, want ErrEmptyCompletion", err)
	}
	if provider.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", provider.callCount())
	}
}
