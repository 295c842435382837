package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/callical/internal/generation"
)

// MockModel is a generation.Model with a canned answer
type MockModel struct {
	mu sync.Mutex

	Response string
	Err      error

	calls       int
	lastRequest *generation.Request
}

// NewMockModel creates a mock that answers with response
func NewMockModel(response string) *MockModel {
	return &MockModel{Response: response}
}

// Complete records the call and returns the canned answer
func (m *MockModel) Complete(ctx context.Context, req *generation.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastRequest = req

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Response, m.Err
}

// Name returns "mock"
func (m *MockModel) Name() string {
	return "mock"
}

// Calls returns the number of Complete calls
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or nil
func (m *MockModel) LastRequest() *generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// NewMockService wraps a mock model in a generation service
func NewMockService(response string) (*generation.Service, *MockModel) {
	model := NewMockModel(response)
	return generation.NewService(&generation.ServiceConfig{Model: model}), model
}
