package mocks

import (
	"context"
	"sync"
)

// Message records one notification request.
type Message struct {
	Email string
	Name  string
}

// MockNotifier records welcome and cancellation requests.
type MockNotifier struct {
	mu            sync.Mutex
	welcomes      []Message
	cancellations []Message
}

// SendWelcome implements service.Notifier.
func (m *MockNotifier) SendWelcome(_ context.Context, email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, Message{Email: email, Name: name})
}

// SendCancellation implements service.Notifier.
func (m *MockNotifier) SendCancellation(_ context.Context, email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations = append(m.cancellations, Message{Email: email, Name: name})
}

// Welcomes returns a copy of the recorded welcome requests.
func (m *MockNotifier) Welcomes() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.welcomes...)
}

// Cancellations returns a copy of the recorded cancellation requests.
func (m *MockNotifier) Cancellations() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.cancellations...)
}
