package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a Client for tests. Responses are served in order; when the
// queue is exhausted, CompleteFunc (if set) takes over, else an error.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	calls     int

	// CompleteFunc, when set, overrides the canned response queue.
	CompleteFunc func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// Prompts records every prompt received, for assertions.
	Prompts []string
}

// NewMockClient creates a mock that replies with the given responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// Complete serves the next canned response.
func (m *MockClient) Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.calls++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature)
	}

	if m.calls > len(m.responses) {
		return "", fmt.Errorf("mock client: no response configured for call %d", m.calls)
	}

	return m.responses[m.calls-1], nil
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Model returns a fixed mock model name.
func (m *MockClient) Model() string { return "mock-model" }

// Provider returns "mock".
func (m *MockClient) Provider() string { return "mock" }

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
