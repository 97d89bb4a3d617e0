package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	agentadapter "friday/internal/adapter/agent"
	"friday/internal/adapter/llm"
	"friday/internal/adapter/store"
	"friday/internal/domain"
	"friday/internal/infra/config"
	"friday/internal/infra/logger"
	"friday/internal/infra/tracer"
	"friday/internal/usecase"
	"friday/internal/usecase/eventbus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath     = flag.String("config", "friday.yaml", "path to config file")
		conversationID = flag.String("conversation", "", "conversation id for persistence (optional)")
		userName       = flag.String("name", "", "user name for the system prompt (optional)")
		userAge        = flag.Int("age", 0, "user age for the system prompt (optional)")
		date           = flag.String("date", "", "today's date passed to the model (optional)")
		cutoffDate     = flag.String("cutoff", "", "model data cutoff date (optional)")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		return fmt.Errorf("usage: friday [flags] \"your message\"")
	}
	message := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, closeLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLogger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	provider := buildProvider(cfg, log)

	registry := usecase.NewRegistry()
	for _, a := range []domain.ToolAgent{
		agentadapter.NewSearchAgent(),
		agentadapter.NewChartAgent(),
		agentadapter.NewCodeGenAgent(),
	} {
		if err := registry.Register(a); err != nil {
			return err
		}
	}

	classifier := usecase.NewErrorClassifier()
	retrier := usecase.NewRetrier(
		cfg.Orchestrator.MaxCallRetries,
		cfg.Orchestrator.RetryBackoff,
		classifier,
		log,
	)

	var guard *usecase.PromptGuard
	if counter, err := usecase.NewTiktokenCounter(cfg.LLM.Model); err != nil {
		log.Warn("token counter unavailable, prompt guard disabled", "error", err)
	} else {
		guard = usecase.NewPromptGuard(counter, cfg.Guard.MaxTokens, cfg.Guard.SafetyMargin, log)
	}

	bus := eventbus.New(log)
	defer bus.Close()
	if cfg.Orchestrator.Debug {
		bus.SubscribeAll(func(_ context.Context, e domain.Event) {
			log.Debug("event", "type", string(e.Type), "run_id", e.RunID)
		})
	}

	executor := usecase.NewExecutor(usecase.ExecutorDeps{
		Provider:        provider,
		Model:           cfg.LLM.Model,
		Registry:        registry,
		Retrier:         retrier,
		Classifier:      classifier,
		Simplifier:      usecase.NewSimplifier(provider, cfg.LLM.Model, retrier),
		Guard:           guard,
		MaxAgentRetries: cfg.Orchestrator.MaxAgentRetries,
		Logger:          log,
	})

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Provider: provider,
		Model:    cfg.LLM.Model,
		Registry: registry,
		Retrier:  retrier,
		Executor: executor,
		Guard:    guard,
		Bus:      bus,
		Logger:   log,
	})

	messages, persist, err := loadHistory(ctx, cfg, *conversationID, message)
	if err != nil {
		return err
	}

	var user *domain.UserProfile
	if *userName != "" {
		user = &domain.UserProfile{Name: *userName, Age: *userAge}
	}

	var final *domain.FinalResult
	hooks := domain.RunHooks{
		OnChooseAgents: func(reasoning string, tools []string) {
			log.Info("agents chosen", "tools", tools)
		},
		OnUsingAgent: func(name string) {
			fmt.Fprintf(os.Stderr, "... running %s\n", name)
		},
		OnAgentFinished: func(name string, result any) {
			log.Info("agent finished", "agent", name)
		},
		OnAgentFailed: func(name string, errMsg string) {
			fmt.Fprintf(os.Stderr, "agent %s failed: %s\n", name, errMsg)
		},
		OnFinish: func(r *domain.FinalResult) {
			final = r
		},
	}

	if err := orchestrator.Run(ctx, domain.RunInput{
		Messages:   messages,
		User:       user,
		Date:       *date,
		CutoffDate: *cutoffDate,
	}, hooks); err != nil {
		return err
	}

	printResult(final)

	if persist != nil {
		turn := []domain.Message{
			domain.UserMessage(message),
			{Role: domain.RoleAssistant, Content: final.Text},
		}
		if err := persist(ctx, turn); err != nil {
			log.Warn("persist conversation failed", "error", err)
		}
	}
	return nil
}

// buildProvider assembles the provider chain: base client, then an
// optional circuit breaker, then an optional client-side rate limiter.
func buildProvider(cfg *config.Config, log *slog.Logger) domain.LLMProvider {
	var provider domain.LLMProvider = llm.NewOpenAIProvider(cfg.LLM, log)
	if cfg.LLM.CircuitBreaker.Enabled {
		provider = llm.NewCircuitBreakerProvider(provider, cfg.LLM.CircuitBreaker, log)
	}
	if cfg.LLM.RequestsPerMin > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RequestsPerMin, cfg.LLM.BurstSize)
	}
	return provider
}

// loadHistory returns the conversation to run against and, when
// persistence is configured, a function that appends the new turn.
func loadHistory(ctx context.Context, cfg *config.Config, conversationID, message string) ([]domain.Message, func(context.Context, []domain.Message) error, error) {
	if conversationID == "" || cfg.Store.Path == "" {
		return []domain.Message{domain.UserMessage(message)}, nil, nil
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}

	history, err := st.Messages(ctx, conversationID)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	messages := append(history, domain.UserMessage(message))

	persist := func(ctx context.Context, turn []domain.Message) error {
		defer st.Close()
		return st.Append(ctx, conversationID, turn...)
	}
	return messages, persist, nil
}

func printResult(r *domain.FinalResult) {
	fmt.Println(r.Text)
	if r.Type == domain.ViewData && r.Data != nil {
		if b, err := json.MarshalIndent(r.Data, "", "  "); err == nil {
			fmt.Println(string(b))
		}
	}
}
