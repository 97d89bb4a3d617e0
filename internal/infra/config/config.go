package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"friday/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	LLM          ProviderConfig     `yaml:"llm"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Logger       LoggerConfig       `yaml:"logger"`
	Tracer       TracerConfig       `yaml:"tracer"`
	Store        StoreConfig        `yaml:"store"`
	Guard        GuardConfig        `yaml:"guard"`
}

// ProviderConfig holds LLM provider connection settings.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"` // plain, "enc:..." or empty (env)
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`

	// RequestsPerMin enables a client-side rate limiter when > 0.
	RequestsPerMin float64 `yaml:"requests_per_min"`
	BurstSize      int     `yaml:"burst_size"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`

	Pool PoolConfig `yaml:"pool"`
}

// CircuitBreakerConfig configures the provider circuit breaker.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig configures HTTP connection pooling for the provider client.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// OrchestratorConfig holds run-level settings.
type OrchestratorConfig struct {
	// MaxCallRetries bounds attempts for reasoning, agent and simplify
	// model calls (default 3).
	MaxCallRetries int `yaml:"max_call_retries"`
	// MaxAgentRetries bounds attempts for a single agent execution
	// (default 3).
	MaxAgentRetries int `yaml:"max_agent_retries"`
	// RetryBackoff is the fixed sleep between attempts (default 1s).
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	// Debug enables verbose run logging.
	Debug bool `yaml:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout, noop
}

// StoreConfig holds conversation persistence settings.
type StoreConfig struct {
	Path string `yaml:"path"` // sqlite database path; empty = no persistence
}

// GuardConfig holds prompt-size guard settings.
type GuardConfig struct {
	// MaxTokens is the model's context window size (default 128000).
	MaxTokens int `yaml:"max_tokens"`
	// SafetyMargin is the fraction of the window kept free (default 0.15).
	SafetyMargin float64 `yaml:"safety_margin"`
}

// Environment variables overriding config file values.
const (
	EnvAPIKey     = "FRIDAY_API_KEY"
	EnvPassphrase = "FRIDAY_CONFIG_PASSPHRASE"
)

// Load reads, decrypts and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigLoad, path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfigLoad, path, err)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config populated with defaults.
func Default() *Config {
	return &Config{
		LLM: ProviderConfig{
			Name:  "openai",
			Model: "gpt-4o-mini",
		},
		Orchestrator: OrchestratorConfig{
			MaxCallRetries:  3,
			MaxAgentRetries: 3,
			RetryBackoff:    time.Second,
		},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Guard:  GuardConfig{MaxTokens: 128000, SafetyMargin: 0.15},
	}
}

// resolveSecrets applies env overrides and decrypts "enc:" values.
func (c *Config) resolveSecrets() error {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.LLM.APIKey = key
	}

	if strings.HasPrefix(c.LLM.APIKey, "enc:") {
		passphrase := os.Getenv(EnvPassphrase)
		if passphrase == "" {
			return fmt.Errorf("%w: encrypted api key requires %s", domain.ErrDecryption, EnvPassphrase)
		}
		plain, err := DecryptValue(strings.TrimPrefix(c.LLM.APIKey, "enc:"), passphrase)
		if err != nil {
			return fmt.Errorf("%w: llm api key: %v", domain.ErrDecryption, err)
		}
		c.LLM.APIKey = plain
	}
	return nil
}

// Validate checks required fields and normalizes defaults.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is required", domain.ErrConfigLoad)
	}
	if c.Orchestrator.MaxCallRetries <= 0 {
		c.Orchestrator.MaxCallRetries = 3
	}
	if c.Orchestrator.MaxAgentRetries <= 0 {
		c.Orchestrator.MaxAgentRetries = 3
	}
	if c.Orchestrator.RetryBackoff <= 0 {
		c.Orchestrator.RetryBackoff = time.Second
	}
	return nil
}
