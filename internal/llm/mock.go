package llm

import (
	"context"
	"fmt"
	"sync"

	"mystique/internal/ports"
)

// MockClient implements ports.LLMClient for testing. Responses are returned
// in order; after the scripted responses run out the last one repeats.
type MockClient struct {
	mu        sync.Mutex
	model     string
	responses []string
	err       error
	calls     []ports.CompletionRequest
}

// NewMockClient returns a mock provider scripted with the given responses.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{
		model:     "mock-model",
		responses: responses,
	}
}

// FailWith makes every Complete call return err.
func (m *MockClient) FailWith(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockClient) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.err != nil {
		return nil, m.err
	}

	content := ""
	if len(m.responses) > 0 {
		idx := len(m.calls) - 1
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		content = m.responses[idx]
	}

	promptChars := 0
	for _, msg := range req.Messages {
		promptChars += len(msg.Content)
	}

	return &ports.CompletionResponse{
		Content:    content,
		StopReason: "stop",
		Usage: ports.TokenUsage{
			PromptTokens:     promptChars / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      (promptChars + len(content)) / 4,
		},
	}, nil
}

func (m *MockClient) Model() string {
	return m.model
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent request, or an error when none were made.
func (m *MockClient) LastCall() (ports.CompletionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ports.CompletionRequest{}, fmt.Errorf("no calls recorded")
	}
	return m.calls[len(m.calls)-1], nil
}
