package messenger

import (
	"context"

	"github.com/dfarias/chaperone/internal/domain"
)

// MockSender is a configurable sender for testing.
// Set the response fields to control what Send returns.
type MockSender struct {
	SendResponse *domain.SendResult
	SendError    error

	// Call tracking for assertions
	SendCalls []MockSendCall
}

type MockSendCall struct {
	Contact string
	Text    string
	Meta    map[string]string
}

func NewMockSender() *MockSender {
	return &MockSender{
		SendResponse: &domain.SendResult{Success: true},
	}
}

func (m *MockSender) Send(ctx context.Context, contact, text string, meta map[string]string) (*domain.SendResult, error) {
	m.SendCalls = append(m.SendCalls, MockSendCall{Contact: contact, Text: text, Meta: meta})
	if m.SendError != nil {
		return nil, m.SendError
	}
	return m.SendResponse, nil
}
