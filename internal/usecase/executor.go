package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"friday/internal/domain"
	"friday/internal/infra/tracer"
)

const agentTemperature = 0.2

// Executor runs a selected tool chain sequentially, threading each agent's
// output into the next agent's prompt. It owns a private working copy of
// the conversation; the caller's message slice is never mutated.
//
// Failure is fail-fast: when an agent exhausts its attempts the run aborts,
// OnAgentFailed fires for that agent, and OnFinish is never called.
type Executor struct {
	provider        domain.LLMProvider
	model           string
	registry        *Registry
	retrier         *Retrier
	classifier      *ErrorClassifier
	simplifier      *Simplifier
	guard           *PromptGuard
	maxAgentRetries int
	logger          *slog.Logger
}

// ExecutorDeps collects the executor's collaborators.
type ExecutorDeps struct {
	Provider   domain.LLMProvider
	Model      string
	Registry   *Registry
	Retrier    *Retrier
	Classifier *ErrorClassifier
	Simplifier *Simplifier
	// Guard is optional; when set, oversized prompts are logged
	// before each model step.
	Guard           *PromptGuard
	MaxAgentRetries int
	Logger          *slog.Logger
}

func NewExecutor(deps ExecutorDeps) *Executor {
	if deps.MaxAgentRetries <= 0 {
		deps.MaxAgentRetries = defaultMaxAttempts
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Executor{
		provider:        deps.Provider,
		model:           deps.Model,
		registry:        deps.Registry,
		retrier:         deps.Retrier,
		classifier:      deps.Classifier,
		simplifier:      deps.Simplifier,
		guard:           deps.Guard,
		maxAgentRetries: deps.MaxAgentRetries,
		logger:          deps.Logger,
	}
}

// apologyText is the fallback answer when no usable output was produced.
const apologyText = "I apologize, but I couldn't generate a response for your query."

// Execute runs the tool chain against the given conversation and delivers
// the terminal result through hooks.OnFinish. Unknown tool names are
// logged and skipped. The returned error is non-nil only when the run
// aborted; OnFinish and the error are mutually exclusive.
func (e *Executor) Execute(ctx context.Context, tools []string, base []domain.Message, hooks domain.RunHooks) error {
	working := make([]domain.Message, len(base), len(base)+2*len(tools))
	copy(working, base)

	records := make(map[string]*domain.AgentUsage)
	var order []string
	var agentMessages []domain.Message

	var lastAgent domain.ToolAgent
	var lastAgentName string
	lastResult := ""

	for _, name := range tools {
		agent, err := e.registry.Get(name)
		if err != nil {
			e.logger.Warn("agent not found, skipping", "agent", name)
			continue
		}

		if hooks.OnUsingAgent != nil {
			hooks.OnUsingAgent(name)
		}

		rec := &domain.AgentUsage{Name: name}
		if _, seen := records[name]; !seen {
			order = append(order, name)
		}
		records[name] = rec

		out, stepRaw, err := e.runAgent(ctx, agent, working, lastAgentName, lastResult)
		rec.UsedSeconds = out.elapsed.Seconds()
		if err != nil {
			rec.Error = err.Error()
			e.logger.Error("agent failed, aborting run", "agent", name, "error", err)
			hooks.OnAgentFailed(name, err.Error())
			return domain.NewDomainError("executor.execute", domain.ErrAgentFailed, name)
		}

		if out.output != nil {
			rec.Result = out.output.Result
			rec.Data = out.output.Data

			normalized := normalizeResult(out.output.Result)
			promptMsg := domain.UserMessage(out.prompt)
			resultMsg := domain.UserMessage(fmt.Sprintf(
				"[Agent %s]\nAgent Step 1 Output:\n%s\nAgent Call Result:\n%s",
				name, stepRaw, normalized,
			))
			working = append(working, promptMsg, resultMsg)
			agentMessages = append(agentMessages, promptMsg, resultMsg)

			lastResult = normalized
			if hooks.OnAgentFinished != nil {
				hooks.OnAgentFinished(name, out.output.Result)
			}
		} else {
			// Agent found nothing usable in its input; the chain
			// continues with the previous context.
			e.logger.Warn("agent produced no usable output", "agent", name)
			if hooks.OnAgentFinished != nil {
				hooks.OnAgentFinished(name, nil)
			}
		}

		lastAgent = agent
		lastAgentName = name
	}

	if lastAgent == nil {
		// Every requested tool was unknown. Answer with the fallback
		// rather than going silent.
		hooks.OnFinish(&domain.FinalResult{
			Type:       domain.ViewText,
			Text:       apologyText,
			UsedAgents: []domain.AgentUsage{},
		})
		return nil
	}

	if lastAgent.NeedSimplify() && lastResult != "" {
		simplified, err := e.simplifier.Simplify(ctx, lastResult)
		if err != nil {
			return fmt.Errorf("simplify final result: %w", err)
		}
		lastResult = simplified
	}
	if lastResult == "" {
		lastResult = apologyText
	}

	used := make([]domain.AgentUsage, 0, len(order))
	for _, name := range order {
		used = append(used, *records[name])
	}

	hooks.OnFinish(&domain.FinalResult{
		Type:          lastAgent.ViewType(),
		Text:          lastResult,
		Data:          records[lastAgentName].Data,
		UsedAgents:    used,
		AgentMessages: agentMessages,
	})
	return nil
}

// agentOutcome carries one agent execution's artifacts.
type agentOutcome struct {
	output  *domain.AgentOutput
	prompt  string
	elapsed time.Duration
}

// runAgent performs the two-step agent protocol with bounded attempts:
// a context-extraction completion followed by the agent's OnCall. Errors
// classified as permanent are not reattempted.
func (e *Executor) runAgent(ctx context.Context, agent domain.ToolAgent, working []domain.Message, prevAgent, prevResult string) (agentOutcome, string, error) {
	name := agent.Name()
	ctx, span := tracer.StartSpan(ctx, "executor.run_agent",
		trace.WithAttributes(tracer.StringAttr("agent.name", name)),
	)
	defer span.End()

	start := time.Now()
	outcome := agentOutcome{}

	prompt := buildAgentPrompt(agent, prevAgent, prevResult)
	outcome.prompt = prompt

	stepMessages := append(append([]domain.Message{}, working...), domain.UserMessage(prompt))
	if e.guard != nil {
		e.guard.Check(stepMessages, "agent."+name)
	}

	// Agents get model access through this caller; the configured model
	// and retry policy apply no matter what the agent asks for.
	ai := domain.ModelCallerFunc(func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
		req.Model = e.model
		var resp *domain.ChatResponse
		err := e.retrier.Do(ctx, "agent."+name+".create", func(ctx context.Context) error {
			var callErr error
			resp, callErr = e.provider.Chat(ctx, req)
			return callErr
		})
		return resp, err
	})

	var lastErr error
	var stepRaw string
	for attempt := 1; attempt <= e.maxAgentRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			tracer.RecordError(span, err)
			return outcome, "", err
		}

		var resp *domain.ChatResponse
		err := e.retrier.Do(ctx, "agent."+name+".step", func(ctx context.Context) error {
			var callErr error
			resp, callErr = e.provider.Chat(ctx, domain.ChatRequest{
				Model:       e.model,
				Messages:    stepMessages,
				Temperature: agentTemperature,
			})
			return callErr
		})
		if err == nil {
			stepRaw = resp.Message.Content
			var out *domain.AgentOutput
			out, err = agent.OnCall(ctx, stepRaw, ai)
			if err == nil {
				outcome.output = out
				outcome.elapsed = time.Since(start)
				tracer.SetOK(span)
				return outcome, stepRaw, nil
			}
		}

		lastErr = err
		e.logger.Warn("agent attempt failed",
			"agent", name,
			"attempt", attempt,
			"max_attempts", e.maxAgentRetries,
			"error", err,
		)
		if e.classifier != nil {
			if cls := e.classifier.Classify(err); cls.Category == ErrorCategoryPermanent {
				break
			}
		}
	}

	outcome.elapsed = time.Since(start)
	tracer.RecordError(span, lastErr)
	return outcome, "", lastErr
}

// normalizeResult renders an agent result for conversation threading.
func normalizeResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
