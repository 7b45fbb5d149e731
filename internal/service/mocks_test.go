package service

import (
	"context"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockConversationStore implements domain.ConversationStore for testing.
type mockConversationStore struct {
	conversations map[uuid.UUID]*domain.Conversation
	updateErr     error
	updateCalls   int
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{conversations: make(map[uuid.UUID]*domain.Conversation)}
}

func (m *mockConversationStore) add(state domain.ConversationState, controller domain.Controller) *domain.Conversation {
	conv := &domain.Conversation{
		ID:             uuid.New(),
		CounterpartyID: uuid.New(),
		State:          state,
		Controller:     controller,
		CreatedAt:      time.Now().Add(-10 * time.Minute),
		UpdatedAt:      time.Now(),
	}
	m.conversations[conv.ID] = conv
	return conv
}

func (m *mockConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.conversations[c.ID] = c
	return nil
}

func (m *mockConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	c, ok := m.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockConversationStore) UpdateState(ctx context.Context, id uuid.UUID, state domain.ConversationState, controller domain.Controller, reason *string) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.conversations[id]
	if !ok {
		return store.ErrNotFound
	}
	c.State = state
	c.Controller = controller
	c.EscalationReason = reason
	c.UpdatedAt = time.Now()
	return nil
}

func (m *mockConversationStore) IncrementConfrontations(ctx context.Context, id uuid.UUID) (int, error) {
	c, ok := m.conversations[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	c.ConfrontationCount++
	return c.ConfrontationCount, nil
}

// mockCounterpartyStore implements domain.CounterpartyStore for testing.
type mockCounterpartyStore struct {
	parties map[uuid.UUID]*domain.Counterparty
}

func newMockCounterpartyStore() *mockCounterpartyStore {
	return &mockCounterpartyStore{parties: make(map[uuid.UUID]*domain.Counterparty)}
}

func (m *mockCounterpartyStore) add(id uuid.UUID, contact string) *domain.Counterparty {
	p := &domain.Counterparty{
		ID:        id,
		Name:      "Dra. Ana Souza",
		Contact:   contact,
		Specialty: "pediatria",
		CreatedAt: time.Now(),
	}
	m.parties[p.ID] = p
	return p
}

func (m *mockCounterpartyStore) Create(ctx context.Context, p *domain.Counterparty) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.parties[p.ID] = p
	return nil
}

func (m *mockCounterpartyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	p, ok := m.parties[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

// mockHandoffStore implements domain.HandoffStore for testing.
type mockHandoffStore struct {
	records   map[uuid.UUID]*domain.HandoffRecord
	createErr error
}

func newMockHandoffStore() *mockHandoffStore {
	return &mockHandoffStore{records: make(map[uuid.UUID]*domain.HandoffRecord)}
}

func (m *mockHandoffStore) Create(ctx context.Context, h *domain.HandoffRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	m.records[h.ID] = h
	return nil
}

func (m *mockHandoffStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.HandoffRecord, error) {
	h, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *mockHandoffStore) Resolve(ctx context.Context, id uuid.UUID, resolvedBy, notes string) (*domain.HandoffRecord, error) {
	h, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now()
	h.Status = domain.HandoffResolved
	h.ResolvedBy = resolvedBy
	h.Notes = notes
	h.ResolvedAt = &now
	cp := *h
	return &cp, nil
}

func (m *mockHandoffStore) ResolvePendingByConversation(ctx context.Context, conversationID uuid.UUID, resolvedBy, notes string) (int64, error) {
	var n int64
	now := time.Now()
	for _, h := range m.records {
		if h.ConversationID == conversationID && h.Status == domain.HandoffPending {
			h.Status = domain.HandoffResolved
			h.ResolvedBy = resolvedBy
			h.Notes = notes
			h.ResolvedAt = &now
			n++
		}
	}
	return n, nil
}

func (m *mockHandoffStore) ListPendingOlderThan(ctx context.Context, age time.Duration) ([]domain.HandoffRecord, error) {
	cutoff := time.Now().Add(-age)
	var out []domain.HandoffRecord
	for _, h := range m.records {
		if h.Status == domain.HandoffPending && h.CreatedAt.Before(cutoff) {
			out = append(out, *h)
		}
	}
	return out, nil
}

// mockSender implements domain.MessageSender for testing.
type mockSender struct {
	sendErr error
	calls   []string
}

func (m *mockSender) Send(ctx context.Context, contact, text string, meta map[string]string) (*domain.SendResult, error) {
	m.calls = append(m.calls, text)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &domain.SendResult{Success: true}, nil
}

// mockNotifier implements domain.OperatorNotifier for testing.
type mockNotifier struct {
	events []domain.OperatorEvent
}

func (m *mockNotifier) Notify(ctx context.Context, conv *domain.Conversation, event domain.OperatorEvent) error {
	m.events = append(m.events, event)
	return nil
}

// mockMirror implements domain.ConsoleMirror for testing.
type mockMirror struct {
	labels  []string
	removed []string
	echoes  []string
}

func (m *mockMirror) EchoMessage(ctx context.Context, conversationID uuid.UUID, text string) error {
	m.echoes = append(m.echoes, text)
	return nil
}

func (m *mockMirror) AddLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	m.labels = append(m.labels, label)
	return nil
}

func (m *mockMirror) RemoveLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	m.removed = append(m.removed, label)
	return nil
}

// recordingEmitter implements domain.EventEmitter for testing.
type recordingEmitter struct {
	events []string
}

func (e *recordingEmitter) Emit(ctx context.Context, eventType string, payload map[string]any) {
	e.events = append(e.events, eventType)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
