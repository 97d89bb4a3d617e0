package usecase

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	"friday/internal/domain"
)

// Per-message framing overhead for chat-format token accounting.
const tokensPerMessage = 4

// TiktokenCounter counts tokens with the model's BPE encoding, falling
// back to cl100k_base for models tiktoken does not know.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TiktokenCounter{encoding: enc}, nil
}

// CountText returns the token count of a single string.
func (c *TiktokenCounter) CountText(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages returns the approximate token count of a chat payload,
// including per-message framing overhead.
func (c *TiktokenCounter) CountMessages(messages []domain.Message) int {
	total := 0
	for _, m := range messages {
		total += tokensPerMessage
		total += c.CountText(string(m.Role))
		total += c.CountText(m.Content)
	}
	return total
}

// PromptGuard warns when an outgoing chat payload approaches the model's
// context window. It never blocks a call; the provider remains the
// authority on hard limits.
type PromptGuard struct {
	counter domain.TokenCounter
	limit   int
	logger  *slog.Logger
}

// NewPromptGuard builds a guard for a context window of maxTokens,
// keeping safetyMargin (a fraction, e.g. 0.15) free.
func NewPromptGuard(counter domain.TokenCounter, maxTokens int, safetyMargin float64, logger *slog.Logger) *PromptGuard {
	if maxTokens <= 0 {
		maxTokens = 128000
	}
	if safetyMargin <= 0 || safetyMargin >= 1 {
		safetyMargin = 0.15
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptGuard{
		counter: counter,
		limit:   int(float64(maxTokens) * (1 - safetyMargin)),
		logger:  logger,
	}
}

// Check logs a warning when the payload exceeds the guarded budget and
// returns the counted size.
func (g *PromptGuard) Check(messages []domain.Message, op string) int {
	count := g.counter.CountMessages(messages)
	if count > g.limit {
		g.logger.Warn("prompt approaching context window",
			"op", op,
			"tokens", count,
			"budget", g.limit,
		)
	}
	return count
}
