package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"friday/internal/domain"
	"friday/internal/infra/tracer"
)

// Sampling settings for the tool-selection call. Low temperature and
// narrow nucleus keep the structured response format stable.
const (
	reasoningTemperature = 0.3
	reasoningTopP        = 0.2
)

// Orchestrator is the single entry point for a run: it asks the model to
// pick a tool chain for the latest user message, then either answers
// directly or hands the chain to the executor. The terminal result is
// always delivered through RunHooks.OnFinish, never as a return value.
type Orchestrator struct {
	provider domain.LLMProvider
	model    string
	registry *Registry
	retrier  *Retrier
	executor *Executor
	guard    *PromptGuard
	bus      domain.EventBus
	logger   *slog.Logger
}

// OrchestratorDeps collects the orchestrator's collaborators. Guard and
// Bus are optional.
type OrchestratorDeps struct {
	Provider domain.LLMProvider
	Model    string
	Registry *Registry
	Retrier  *Retrier
	Executor *Executor
	Guard    *PromptGuard
	Bus      domain.EventBus
	Logger   *slog.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Orchestrator{
		provider: deps.Provider,
		model:    deps.Model,
		registry: deps.Registry,
		retrier:  deps.Retrier,
		executor: deps.Executor,
		guard:    deps.Guard,
		bus:      deps.Bus,
		logger:   deps.Logger,
	}
}

// Run executes one turn. The returned error covers aborted runs only;
// a nil error means OnFinish was called exactly once.
func (o *Orchestrator) Run(ctx context.Context, input domain.RunInput, hooks domain.RunHooks) error {
	if err := hooks.Validate(); err != nil {
		return err
	}
	if len(input.Messages) == 0 {
		return domain.NewDomainError("orchestrator.run", domain.ErrInvalidInput, "empty conversation")
	}

	runID := ulid.Make().String()
	log := o.logger.With("run_id", runID)

	ctx, span := tracer.StartSpan(ctx, "orchestrator.run",
		trace.WithAttributes(
			tracer.StringAttr("run.id", runID),
			tracer.IntAttr("run.messages", len(input.Messages)),
		),
	)
	defer span.End()

	log.Info("run started", "messages", len(input.Messages))
	o.publish(ctx, domain.EventRunStarted, runID, nil)

	systemPrompt := buildSystemPrompt(input.User, input.Date, input.CutoffDate)
	pure := make([]domain.Message, 0, len(input.Messages)+1)
	pure = append(pure, domain.SystemMessage(systemPrompt))
	pure = append(pure, input.Messages...)

	decision, err := o.chooseTools(ctx, pure, input.Messages)
	if err != nil {
		log.Error("tool selection failed", "error", err)
		tracer.RecordError(span, err)
		o.publish(ctx, domain.EventRunFailed, runID, err.Error())
		return err
	}
	log.Info("tools chosen", "tools", decision.Tools, "reasoning", decision.Reasoning)

	if hooks.OnChooseAgents != nil {
		hooks.OnChooseAgents(decision.Reasoning, decision.Tools)
	}
	o.publish(ctx, domain.EventAgentsChosen, runID, domain.AgentsChosenPayload{
		Reasoning: decision.Reasoning,
		Tools:     decision.Tools,
	})

	if decision.IsDirect() {
		text := decision.Message
		if text == "" {
			text = apologyText
		}
		hooks.OnFinish(&domain.FinalResult{
			Type:       domain.ViewText,
			Text:       text,
			UsedAgents: []domain.AgentUsage{},
		})
		log.Info("run finished", "path", "direct")
		o.publish(ctx, domain.EventRunFinished, runID, nil)
		tracer.SetOK(span)
		return nil
	}

	if err := o.executor.Execute(ctx, decision.Tools, pure, o.instrumentHooks(ctx, runID, hooks)); err != nil {
		log.Error("run aborted", "error", err)
		tracer.RecordError(span, err)
		o.publish(ctx, domain.EventRunFailed, runID, err.Error())
		return err
	}

	log.Info("run finished", "path", "agents", "tools", decision.Tools)
	o.publish(ctx, domain.EventRunFinished, runID, nil)
	tracer.SetOK(span)
	return nil
}

// chooseTools performs the reasoning completion and parses its decision.
// A malformed completion counts as a failed attempt: a fresh completion
// may parse, so the whole call-and-parse unit sits inside the retry loop.
func (o *Orchestrator) chooseTools(ctx context.Context, pure []domain.Message, history []domain.Message) (domain.Decision, error) {
	ctx, span := tracer.StartSpan(ctx, "orchestrator.choose_tools")
	defer span.End()

	selection := buildSelectionPrompt(o.registry.All(), history)
	combined := append(append([]domain.Message{}, pure...), domain.UserMessage(selection))
	if o.guard != nil {
		o.guard.Check(combined, "reasoning")
	}

	var decision domain.Decision
	err := o.retrier.Do(ctx, "reasoning", func(ctx context.Context) error {
		resp, err := o.provider.Chat(ctx, domain.ChatRequest{
			Model:       o.model,
			Messages:    combined,
			Temperature: reasoningTemperature,
			TopP:        reasoningTopP,
		})
		if err != nil {
			return err
		}
		content := resp.Message.Content
		if strings.TrimSpace(content) == "" {
			return domain.NewDomainError("orchestrator.choose_tools", domain.ErrEmptyCompletion, "")
		}

		dec, source, err := ParseDecision(content)
		if err != nil {
			return err
		}
		if source == DecisionSentinel {
			o.logger.Debug("structured block missing, using sentinel fallback")
		}
		decision = dec
		return nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return domain.Decision{}, err
	}

	tracer.SetOK(span)
	return decision, nil
}

// instrumentHooks decorates the caller's hooks so every agent lifecycle
// callback also lands on the event bus.
func (o *Orchestrator) instrumentHooks(ctx context.Context, runID string, hooks domain.RunHooks) domain.RunHooks {
	if o.bus == nil {
		return hooks
	}

	wrapped := hooks
	wrapped.OnUsingAgent = func(name string) {
		o.publish(ctx, domain.EventAgentStarted, runID, name)
		if hooks.OnUsingAgent != nil {
			hooks.OnUsingAgent(name)
		}
	}
	wrapped.OnAgentFinished = func(name string, result any) {
		o.publish(ctx, domain.EventAgentFinished, runID, domain.AgentFinishedPayload{Name: name})
		if hooks.OnAgentFinished != nil {
			hooks.OnAgentFinished(name, result)
		}
	}
	wrapped.OnAgentFailed = func(name string, errMsg string) {
		o.publish(ctx, domain.EventAgentFailed, runID, domain.AgentFailedPayload{Name: name, Error: errMsg})
		hooks.OnAgentFailed(name, errMsg)
	}
	return wrapped
}

func (o *Orchestrator) publish(ctx context.Context, typ domain.EventType, runID string, payload any) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(ctx, domain.Event{
		Type:      typ,
		RunID:     runID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
