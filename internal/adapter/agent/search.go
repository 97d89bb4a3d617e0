package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"friday/internal/domain"
)

const searchTemperature = 0.4

// SearchAgent answers lookup-style questions with a focused completion.
// The extraction step distills the conversation into a single query; the
// agent then asks the model for a structured answer to that query alone,
// free of the surrounding conversation.
type SearchAgent struct{}

func NewSearchAgent() *SearchAgent { return &SearchAgent{} }

func (a *SearchAgent) Name() string { return "search" }

func (a *SearchAgent) Description() string {
	return `This agent is used to search for real-time & updated information or historical data from online sources / internet,
such as Google. It is versatile for retrieving the most up-to-date information, like current events or breaking news,
as well as archived or past data or current, making it suitable for research, trends analysis, and historical references.
Note: If user asked about current / recent events, this agent can be used to provide relevant information, such as breaking news, live updates, or real-time updates.
`
}

func (a *SearchAgent) Keywords() []string {
	return []string{"google", "real-time", "recent-events", "historical", "news", "research", "trends", "live", "market"}
}

func (a *SearchAgent) ViewType() domain.ViewType { return domain.ViewText }
func (a *SearchAgent) NeedSimplify() bool        { return true }

func (a *SearchAgent) CallFormat() string {
	return `{ "query": "simple search query..." }`
}

type searchCall struct {
	Query string `json:"query"`
}

func (a *SearchAgent) OnCall(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
	extracted := ExtractFirstJSON(raw)
	if extracted == "" {
		return nil, nil
	}
	var call searchCall
	if err := json.Unmarshal([]byte(extracted), &call); err != nil {
		return nil, nil
	}
	if strings.TrimSpace(call.Query) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf("please answer to this query very useful, it's better to be in readme & structured format. query: \n%s", call.Query)
	resp, err := ai.Create(ctx, domain.ChatRequest{
		Messages:    []domain.Message{domain.UserMessage(prompt)},
		Temperature: searchTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("search completion: %w", err)
	}
	if resp.Message.Content == "" {
		return nil, nil
	}
	return &domain.AgentOutput{Result: resp.Message.Content}, nil
}

var _ domain.ToolAgent = (*SearchAgent)(nil)
