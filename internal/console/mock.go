package console

import (
	"context"

	"github.com/google/uuid"
)

// MockMirror records console calls for assertions in tests.
type MockMirror struct {
	EchoError   error
	LabelError  error
	RemoveError error

	// Call tracking for assertions
	EchoCalls   []string
	AddCalls    []string
	RemoveCalls []string
}

func NewMockMirror() *MockMirror {
	return &MockMirror{}
}

func (m *MockMirror) EchoMessage(ctx context.Context, conversationID uuid.UUID, text string) error {
	m.EchoCalls = append(m.EchoCalls, text)
	return m.EchoError
}

func (m *MockMirror) AddLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	m.AddCalls = append(m.AddCalls, label)
	return m.LabelError
}

func (m *MockMirror) RemoveLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	m.RemoveCalls = append(m.RemoveCalls, label)
	return m.RemoveError
}

// NopMirror discards all console calls, for deployments without a console.
type NopMirror struct{}

func (NopMirror) EchoMessage(context.Context, uuid.UUID, string) error { return nil }

func (NopMirror) AddLabel(context.Context, uuid.UUID, string) error { return nil }

func (NopMirror) RemoveLabel(context.Context, uuid.UUID, string) error { return nil }
