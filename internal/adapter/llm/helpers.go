package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"friday/internal/domain"
	"friday/internal/infra/config"
	"friday/internal/infra/tracer"
)

// maxResponseBody is the maximum response body size we read from LLM APIs.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// doJSONRequest performs a JSON POST request and returns the response body.
// It handles: create request, set headers, execute, read body (with limit),
// and check HTTP status code. Returns a domain error for non-200 responses.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// logChatCompleted logs the standard debug message after a successful chat.
func logChatCompleted(logger *slog.Logger, providerName string, result *domain.ChatResponse) {
	logger.Debug("llm chat completed",
		"provider", providerName,
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
	)
}

// setUsageAttrs adds token usage attributes to a trace span.
func setUsageAttrs(span trace.Span, usage domain.Usage) {
	span.SetAttributes(
		tracer.IntAttr("llm.prompt_tokens", usage.PromptTokens),
		tracer.IntAttr("llm.completion_tokens", usage.CompletionTokens),
	)
}

// mapHTTPError maps an HTTP status code + response body to a domain error,
// so the error classifier and circuit breaker see a stable shape.
func mapHTTPError(statusCode int, body []byte) error {
	detail := fmt.Sprintf("API error %d: %s", statusCode, string(body))

	switch {
	case statusCode == http.StatusTooManyRequests: // 429
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, detail)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden: // 401, 403
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, detail)
	case statusCode == http.StatusRequestEntityTooLarge: // 413
		return fmt.Errorf("%w: %s", domain.ErrContextOverflow, detail)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", domain.ErrProviderError, detail)
	default:
		return fmt.Errorf("%s", detail)
	}
}

// Default provider timeouts.
const (
	defaultConnTimeout = 30 * time.Second
	defaultRespTimeout = 120 * time.Second
)

// Default connection pool settings for LLM API usage patterns:
// few hosts, long-lived connections.
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 20
	defaultIdleConnTimeout     = 120 * time.Second
)

// newPooledTransport creates an http.Transport with connection pooling
// sized from the provider config.
func newPooledTransport(connTimeout, respTimeout time.Duration, pool config.PoolConfig) *http.Transport {
	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	maxConnsPerHost := pool.MaxConnsPerHost
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}
	idleTimeout := pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       idleTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient creates an *http.Client with pooled transport and timeout
// defaults suitable for LLM providers.
func NewHTTPClient(cfg config.ProviderConfig) *http.Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = defaultConnTimeout
	}
	respTimeout := cfg.RespTimeout
	if respTimeout == 0 {
		respTimeout = defaultRespTimeout
	}

	return &http.Client{
		Transport: newPooledTransport(connTimeout, respTimeout, cfg.Pool),
		Timeout:   connTimeout + respTimeout,
	}
}
