package testutil

import (
	"context"
	"sync"
)

// Request is one recorded request.
type Request struct {
	Subject string
	Data    []byte
}

// MockRequester is an in-memory request/reply transport for testing.
type MockRequester struct {
	mu       sync.Mutex
	handler  func(subject string, data []byte) ([]byte, error)
	requests []Request
}

// NewMockRequester creates a requester answering with handler.
func NewMockRequester(handler func(subject string, data []byte) ([]byte, error)) *MockRequester {
	return &MockRequester{handler: handler}
}

// Request records the request and returns the handler's reply.
func (m *MockRequester) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.requests = append(m.requests, Request{Subject: subject, Data: append([]byte(nil), data...)})
	handler := m.handler
	m.mu.Unlock()
	return handler(subject, data)
}

// Requests returns a copy of the recorded requests.
func (m *MockRequester) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Count returns the number of recorded requests.
func (m *MockRequester) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
