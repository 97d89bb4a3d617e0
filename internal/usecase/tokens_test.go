package usecase

import (
	"testing"

	"friday/internal/domain"
)

func TestTiktokenCounterFallsBackForUnknownModel(t *testing.T) {
	c, err := NewTiktokenCounter("some-model-tiktoken-never-heard-of")
	if err != nil {
		t.Fatalf("NewTiktokenCounter() error = %v", err)
	}
	if n := c.CountText("hello world"); n == 0 {
		t.Error("CountText() = 0 for non-empty text")
	}
}

func TestCountMessagesIncludesFraming(t *testing.T) {
	c, err := NewTiktokenCounter("gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewTiktokenCounter() error = %v", err)
	}
	messages := []domain.Message{
		domain.SystemMessage("be helpful"),
		domain.UserMessage("hi"),
	}
	per := c.CountText(string(domain.RoleSystem)) + c.CountText("be helpful") +
		c.CountText(string(domain.RoleUser)) + c.CountText("hi")
	if got := c.CountMessages(messages); got != per+2*tokensPerMessage {
		t.Errorf("CountMessages() = %d, want %d", got, per+2*tokensPerMessage)
	}
}

type fixedCounter struct{ perMessage int }

func (f fixedCounter) CountText(string) int { return f.perMessage }
func (f fixedCounter) CountMessages(m []domain.Message) int {
	return f.perMessage * len(m)
}

func TestPromptGuardBudget(t *testing.T) {
	g := NewPromptGuard(fixedCounter{perMessage: 100}, 1000, 0.2, nil)

	if got := g.Check([]domain.Message{domain.UserMessage("x")}, "test"); got != 100 {
		t.Errorf("Check() = %d, want 100", got)
	}
	// Nine messages exceed the 800-token budget; Check still reports
	// the count rather than failing.
	msgs := make([]domain.Message, 9)
	for i := range msgs {
		msgs[i] = domain.UserMessage("x")
	}
	if got := g.Check(msgs, "test"); got != 900 {
		t.Errorf("Check() = %d, want 900", got)
	}
}
