package notify

import (
	"context"

	"github.com/dfarias/chaperone/internal/domain"
)

// MockNotifier records operator events for assertions in tests.
type MockNotifier struct {
	NotifyError error

	// Call tracking for assertions
	NotifyCalls []MockNotifyCall
}

type MockNotifyCall struct {
	ConversationID string
	Event          domain.OperatorEvent
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, conv *domain.Conversation, event domain.OperatorEvent) error {
	m.NotifyCalls = append(m.NotifyCalls, MockNotifyCall{ConversationID: conv.ID.String(), Event: event})
	return m.NotifyError
}

// NopNotifier discards events, for deployments with no operator channel.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *domain.Conversation, domain.OperatorEvent) error {
	return nil
}
