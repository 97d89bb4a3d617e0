package usecase

import (
	"context"
	"fmt"
	"sync"

	"friday/internal/domain"
)

// stubAgent is a configurable domain.ToolAgent used across tests.
type stubAgent struct {
	name         string
	description  string
	keywords     []string
	viewType     domain.ViewType
	needSimplify bool
	callFormat   string

	onCall func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error)
	calls  int
}

func (a *stubAgent) Name() string             { return a.name }
func (a *stubAgent) Description() string      { return a.description }
func (a *stubAgent) Keywords() []string       { return a.keywords }
func (a *stubAgent) NeedSimplify() bool       { return a.needSimplify }
func (a *stubAgent) CallFormat() string       { return a.callFormat }

func (a *stubAgent) ViewType() domain.ViewType {
	if a.viewType == "" {
		return domain.ViewText
	}
	return a.viewType
}

func (a *stubAgent) OnCall(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
	a.calls++
	if a.onCall != nil {
		return a.onCall(ctx, raw, ai)
	}
	return &domain.AgentOutput{Result: raw}, nil
}

// scriptedProvider replays canned completions in order and records every
// request it saw. Once the script is exhausted it repeats the last entry.
type scriptedProvider struct {
	mu       sync.Mutex
	script   []string
	errs     []error
	requests []domain.ChatRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.requests)
	p.requests = append(p.requests, req)

	if idx < len(p.errs) && p.errs[idx] != nil {
		return nil, p.errs[idx]
	}

	content := ""
	if len(p.script) > 0 {
		if idx >= len(p.script) {
			idx = len(p.script) - 1
		}
		content = p.script[idx]
	}
	return &domain.ChatResponse{
		ID:      fmt.Sprintf("resp-%d", idx),
		Model:   req.Model,
		Message: domain.Message{Role: domain.RoleAssistant, Content: content},
	}, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *scriptedProvider) request(i int) domain.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[i]
}
