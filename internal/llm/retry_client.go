package llm

import (
	"context"
	"time"

	mysterrors "mystique/internal/errors"
	"mystique/internal/logging"
	"mystique/internal/ports"
)

// retryClient wraps an LLM client with retry logic for transient failures.
// Rate-limit errors pass straight through: the caller decides whether to
// retry those, not this process.
type retryClient struct {
	underlying  ports.LLMClient
	retryConfig mysterrors.RetryConfig
	logger      logging.Logger
}

// NewRetryClient wraps an LLM client with retry logic.
func NewRetryClient(client ports.LLMClient, retryConfig mysterrors.RetryConfig) ports.LLMClient {
	return &retryClient{
		underlying:  client,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("llm-retry"),
	}
}

// Complete executes the completion with retry logic
func (c *retryClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	startTime := time.Now()

	resp, err := mysterrors.RetryWithResult(ctx, c.retryConfig, func(ctx context.Context) (*ports.CompletionResponse, error) {
		return c.underlying.Complete(ctx, req)
	}, c.logger)

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Warn("LLM request failed after retries (took %v): %v", duration, err)
		return nil, err
	}

	if duration > 5*time.Second {
		c.logger.Debug("LLM request succeeded after %v", duration)
	}

	return resp, nil
}

// Model returns the underlying model name
func (c *retryClient) Model() string {
	return c.underlying.Model()
}
