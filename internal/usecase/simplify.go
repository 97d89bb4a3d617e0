package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"friday/internal/domain"
	"friday/internal/infra/tracer"
)

const simplifyTemperature = 0.4

// Simplifier rewrites a raw tool result into user-facing prose. It runs
// only when the pipeline's terminating agent asks for it.
type Simplifier struct {
	provider domain.LLMProvider
	model    string
	retrier  *Retrier
}

func NewSimplifier(provider domain.LLMProvider, model string, retrier *Retrier) *Simplifier {
	return &Simplifier{provider: provider, model: model, retrier: retrier}
}

// Simplify sends the message through a rewrite completion and returns the
// simplified text. An empty completion counts as a failure and is retried.
func (s *Simplifier) Simplify(ctx context.Context, message string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "simplifier.simplify",
		trace.WithAttributes(tracer.IntAttr("input_len", len(message))),
	)
	defer span.End()

	req := domain.ChatRequest{
		Model:       s.model,
		Messages:    []domain.Message{domain.UserMessage(simplificationPrompt(message))},
		Temperature: simplifyTemperature,
	}

	var out string
	err := s.retrier.Do(ctx, "simplify", func(ctx context.Context) error {
		resp, err := s.provider.Chat(ctx, req)
		if err != nil {
			return err
		}
		content := strings.TrimSpace(resp.Message.Content)
		if content == "" {
			return domain.NewDomainError("simplifier.simplify", domain.ErrEmptyCompletion, "")
		}
		out = content
		return nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return out, nil
}
