package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Request captures a normalized single-turn model input.
type Request struct {
	// Instructions is the system-level role description.
	Instructions string `json:"instructions,omitempty"`
	// Prompt is the user-level task text.
	Prompt string `json:"prompt"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed model output for a Request.
type Response struct {
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// mockRule pairs a prompt substring with its canned completion.
type mockRule struct{ match, response string }

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Canned responses are matched by prompt substring in registration order so a
// single mock can serve the several differently-shaped prompts one pipeline
// run issues.
type MockModel struct {
	mu    sync.Mutex
	info  Info
	rules []mockRule
	err   error
	calls int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse registers a canned completion for prompts containing match.
func (m *MockModel) AddResponse(match, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, response: response})
}

// FailWith makes every subsequent Generate call return err. Pass nil to
// restore normal behavior.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Generate invocations observed.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Response{}, m.err
	}
	for _, r := range m.rules {
		if strings.Contains(req.Prompt, r.match) {
			return Response{Text: r.response, FinishReason: "stop"}, nil
		}
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}
