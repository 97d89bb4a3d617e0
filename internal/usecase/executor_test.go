package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"friday/internal/domain"
)

func newTestExecutor(t *testing.T, provider *scriptedProvider, agents ...*stubAgent) *Executor {
	t.Helper()
	registry := NewRegistry()
	for _, a := range agents {
		if err := registry.Register(a); err != nil {
			t.Fatalf("Register(%s) error = %v", a.name, err)
		}
	}
	retrier := NewRetrier(3, time.Millisecond, NewErrorClassifier(), nil)
	return NewExecutor(ExecutorDeps{
		Provider:        provider,
		Model:           "test-model",
		Registry:        registry,
		Retrier:         retrier,
		Classifier:      NewErrorClassifier(),
		Simplifier:      NewSimplifier(provider, "test-model", retrier),
		MaxAgentRetries: 3,
	})
}

func collectingHooks(finished *[]string, final **domain.FinalResult, failed *string) domain.RunHooks {
	return domain.RunHooks{
		OnAgentFinished: func(name string, result any) {
			if finished != nil {
				*finished = append(*finished, name)
			}
		},
		OnAgentFailed: func(name string, errMsg string) {
			if failed != nil {
				*failed = name + ": " + errMsg
			}
		},
		OnFinish: func(r *domain.FinalResult) {
			if final != nil {
				*final = r
			}
		},
	}
}

func TestExecuteThreadsContextBetweenAgents(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step for search", "step for chart"}}

	search := &stubAgent{name: "search", callFormat: `{"query": "..."}`}
	search.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return &domain.AgentOutput{Result: "BTC closed at 64k"}, nil
	}
	var chartPromptSeen string
	chart := &stubAgent{name: "chart", callFormat: `{"values": []}`}
	chart.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return &domain.AgentOutput{Result: "chart ready", Data: map[string]any{"kind": "line"}}, nil
	}

	e := newTestExecutor(t, provider, search, chart)

	var finished []string
	var final *domain.FinalResult
	base := []domain.Message{domain.SystemMessage("sys"), domain.UserMessage("plot btc")}

	err := e.Execute(context.Background(), []string{"search", "chart"}, base, collectingHooks(&finished, &final, nil))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if final == nil {
		t.Fatal("OnFinish was not called")
	}

	// The chart step request must carry the search agent's threaded output.
	chartReq := provider.request(1)
	chartPromptSeen = chartReq.Messages[len(chartReq.Messages)-1].Content
	if !strings.Contains(chartPromptSeen, "Tool: search") || !strings.Contains(chartPromptSeen, "BTC closed at 64k") {
		t.Error("second agent's prompt is missing the previous step result")
	}
	joined := ""
	for _, m := range chartReq.Messages {
		joined += m.Content + "\n"
	}
	if !strings.Contains(joined, "[Agent search]") || !strings.Contains(joined, "Agent Call Result:\nBTC closed at 64k") {
		t.Error("working conversation is missing the synthetic agent result message")
	}

	if len(finished) != 2 || finished[0] != "search" || finished[1] != "chart" {
		t.Errorf("finished = %v, want [search chart]", finished)
	}
	if len(final.UsedAgents) != 2 || final.UsedAgents[0].Name != "search" || final.UsedAgents[1].Name != "chart" {
		t.Errorf("UsedAgents order = %v", final.UsedAgents)
	}
	if final.Type != domain.ViewText || final.Text != "chart ready" {
		t.Errorf("final = %+v, want text 'chart ready'", final)
	}
	if final.Data == nil {
		t.Error("final result should carry the terminating agent's data payload")
	}
	if len(final.AgentMessages) != 4 {
		t.Errorf("AgentMessages len = %d, want 4 (prompt+result per agent)", len(final.AgentMessages))
	}
}

func TestExecuteDoesNotMutateCallerMessages(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step"}}
	agent := &stubAgent{name: "search", callFormat: `{"query": ""}`}
	e := newTestExecutor(t, provider, agent)

	base := []domain.Message{domain.UserMessage("hello")}
	var final *domain.FinalResult
	if err := e.Execute(context.Background(), []string{"search"}, base, collectingHooks(nil, &final, nil)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(base) != 1 || base[0].Content != "hello" {
		t.Errorf("caller messages were mutated: %v", base)
	}
}

func TestExecuteFailFast(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step", "step", "step"}}

	failing := &stubAgent{name: "search"}
	failing.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return nil, fmt.Errorf("backend unreachable: connection refused")
	}
	never := &stubAgent{name: "chart"}

	e := newTestExecutor(t, provider, failing, never)

	var final *domain.FinalResult
	var failed string
	err := e.Execute(context.Background(), []string{"search", "chart"}, nil, collectingHooks(nil, &final, &failed))

	if !errors.Is(err, domain.ErrAgentFailed) {
		t.Errorf("Execute() error = %v, want ErrAgentFailed", err)
	}
	if failing.calls != 3 {
		t.Errorf("failing agent attempts = %d, want 3", failing.calls)
	}
	if never.calls != 0 {
		t.Error("downstream agent ran after an upstream failure")
	}
	if final != nil {
		t.Error("OnFinish fired for an aborted run")
	}
	if !strings.HasPrefix(failed, "search: ") {
		t.Errorf("OnAgentFailed = %q, want search failure", failed)
	}
}

func TestExecutePermanentErrorSkipsRetries(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step"}}
	failing := &stubAgent{name: "search"}
	failing.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return nil, fmt.Errorf("call backend: %w", domain.ErrAuthInvalid)
	}

	e := newTestExecutor(t, provider, failing)

	var failed string
	err := e.Execute(context.Background(), []string{"search"}, nil, collectingHooks(nil, nil, &failed))
	if !errors.Is(err, domain.ErrAgentFailed) {
		t.Errorf("Execute() error = %v, want ErrAgentFailed", err)
	}
	if failing.calls != 1 {
		t.Errorf("agent attempts = %d, want 1 for a permanent error", failing.calls)
	}
}

func TestExecuteSkipsUnknownTools(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step"}}
	chart := &stubAgent{name: "chart"}
	e := newTestExecutor(t, provider, chart)

	var finished []string
	var final *domain.FinalResult
	err := e.Execute(context.Background(), []string{"ghost", "chart"}, nil, collectingHooks(&finished, &final, nil))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(finished) != 1 || finished[0] != "chart" {
		t.Errorf("finished = %v, want only chart", finished)
	}
	if len(final.UsedAgents) != 1 || final.UsedAgents[0].Name != "chart" {
		t.Errorf("UsedAgents = %v, want only chart", final.UsedAgents)
	}
}

func TestExecuteAllToolsUnknown(t *testing.T) {
	provider := &scriptedProvider{}
	e := newTestExecutor(t, provider, &stubAgent{name: "chart"})

	var final *domain.FinalResult
	err := e.Execute(context.Background(), []string{"ghost", "phantom"}, nil, collectingHooks(nil, &final, nil))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if final == nil {
		t.Fatal("OnFinish was not called")
	}
	if final.Text != apologyText || len(final.UsedAgents) != 0 {
		t.Errorf("final = %+v, want apology with no used agents", final)
	}
	if provider.callCount() != 0 {
		t.Errorf("provider calls = %d, want 0", provider.callCount())
	}
}

func TestExecuteSimplifiesFinalResult(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step", "plain words"}}
	agent := &stubAgent{name: "search", needSimplify: true}
	agent.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return &domain.AgentOutput{Result: "dense technical output"}, nil
	}

	e := newTestExecutor(t, provider, agent)

	var final *domain.FinalResult
	if err := e.Execute(context.Background(), []string{"search"}, nil, collectingHooks(nil, &final, nil)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if final.Text != "plain words" {
		t.Errorf("Text = %q, want the simplified rewrite", final.Text)
	}
	// UsedAgents keeps the raw result; only the surfaced text is rewritten.
	if final.UsedAgents[0].Result != "dense technical output" {
		t.Errorf("UsedAgents result = %v, want raw output", final.UsedAgents[0].Result)
	}

	simplifyReq := provider.request(1)
	if simplifyReq.Temperature != simplifyTemperature {
		t.Errorf("simplify temperature = %v, want %v", simplifyReq.Temperature, simplifyTemperature)
	}
	if !strings.Contains(simplifyReq.Messages[0].Content, "dense technical output") {
		t.Error("simplify prompt is missing the raw result")
	}
}

func TestExecuteSkipsSimplifyWhenNotRequested(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step"}}
	agent := &stubAgent{name: "search", needSimplify: false}
	e := newTestExecutor(t, provider, agent)

	var final *domain.FinalResult
	if err := e.Execute(context.Background(), []string{"search"}, nil, collectingHooks(nil, &final, nil)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if provider.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1 (no simplify pass)", provider.callCount())
	}
}

func TestExecuteDuplicateAgentLastWriteWins(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step1", "step2", "step3"}}

	run := 0
	search := &stubAgent{name: "search"}
	search.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		run++
		return &domain.AgentOutput{Result: fmt.Sprintf("result-%d", run)}, nil
	}
	chart := &stubAgent{name: "chart"}

	e := newTestExecutor(t, provider, search, chart)

	var final *domain.FinalResult
	err := e.Execute(context.Background(), []string{"search", "chart", "search"}, nil, collectingHooks(nil, &final, nil))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(final.UsedAgents) != 2 {
		t.Fatalf("UsedAgents len = %d, want 2", len(final.UsedAgents))
	}
	// Record keeps first-execution position with the latest outcome.
	if final.UsedAgents[0].Name != "search" || final.UsedAgents[1].Name != "chart" {
		t.Errorf("UsedAgents order = %v, want [search chart]", final.UsedAgents)
	}
	if final.UsedAgents[0].Result != "result-2" {
		t.Errorf("search record = %v, want the later execution's result", final.UsedAgents[0].Result)
	}
}

func TestExecuteUnusableInputContinuesChain(t *testing.T) {
	provider := &scriptedProvider{script: []string{"step1", "step2"}}

	skip := &stubAgent{name: "search"}
	skip.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return nil, nil
	}
	chart := &stubAgent{name: "chart"}
	var chartPrev string
	chart.onCall = func(ctx context.Context, raw string, ai domain.ModelCaller) (*domain.AgentOutput, error) {
		return &domain.AgentOutput{Result: "ok"}, nil
	}

	e := newTestExecutor(t, provider, skip, chart)

	var finished []string
	var final *domain.FinalResult
	hooks := collectingHooks(&finished, &final, nil)
	var nilResults []string
	base := hooks.OnAgentFinished
	hooks.OnAgentFinished = func(name string, result any) {
		if result == nil {
			nilResults = append(nilResults, name)
		}
		base(name, result)
	}

	if err := e.Execute(context.Background(), []string{"search", "chart"}, nil, hooks); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(nilResults) != 1 || nilResults[0] != "search" {
		t.Errorf("nil-result notifications = %v, want [search]", nilResults)
	}
	chartReq := provider.request(1)
	chartPrev = chartReq.Messages[len(chartReq.Messages)-1].Content
	if strings.Contains(chartPrev, "Previous Step Result") {
		t.Error("skipped agent leaked an empty previous-step section into the next prompt")
	}
	if final.Text != "ok" {
		t.Errorf("final text = %q, want ok", final.Text)
	}
}
