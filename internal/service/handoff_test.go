package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/store"
	"github.com/google/uuid"
)

type handoffFixture struct {
	svc      *HandoffService
	convs    *mockConversationStore
	parties  *mockCounterpartyStore
	handoffs *mockHandoffStore
	sessions *store.MemorySessionStore
	sender   *mockSender
	notifier *mockNotifier
	mirror   *mockMirror
	emitter  *recordingEmitter
	registry *AgentRegistry
}

func newHandoffFixture() *handoffFixture {
	f := &handoffFixture{
		convs:    newMockConversationStore(),
		parties:  newMockCounterpartyStore(),
		handoffs: newMockHandoffStore(),
		sessions: store.NewMemorySessionStore(),
		sender:   &mockSender{},
		notifier: &mockNotifier{},
		mirror:   &mockMirror{},
		emitter:  &recordingEmitter{},
		registry: NewAgentRegistry(),
	}
	f.registry.Register("conversational", []domain.AgentCapability{{Name: "negotiate"}})
	f.registry.Register("scheduler", []domain.AgentCapability{{Name: "book"}})
	f.svc = NewHandoffService(f.convs, f.parties, f.handoffs, f.sessions,
		f.sender, f.emitter, f.notifier, f.mirror, f.registry, testLogger())
	return f
}

func (f *handoffFixture) activeConversation(contact string) *domain.Conversation {
	conv := f.convs.add(domain.StateActive, domain.ControllerAgent)
	f.parties.add(conv.CounterpartyID, contact)
	return conv
}

func TestHandoffService_Initiate(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")
	ctx := context.Background()

	sess, _ := f.sessions.Get(ctx, conv.ID)
	sess.AppendReply("the rate is R$ 2.500")
	sess.AppendReply("let me check with the team")
	_ = f.sessions.Put(ctx, sess)

	record, err := f.svc.Initiate(ctx, conv.ID, "counterparty asked for a human", domain.TriggerCounterpartyRequest, nil)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if record.Status != domain.HandoffPending {
		t.Fatalf("expected pending record, got %v", record.Status)
	}
	if record.LastReplyExcerpt != "let me check with the team" {
		t.Fatalf("unexpected excerpt %q", record.LastReplyExcerpt)
	}
	if record.InteractionCount != 2 {
		t.Fatalf("expected interaction count 2, got %d", record.InteractionCount)
	}

	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.State != domain.StateHandoff || got.Controller != domain.ControllerOperator {
		t.Fatalf("conversation not in handoff/operator: %v/%v", got.State, got.Controller)
	}
	if got.MayAgentReply() {
		t.Fatal("agent must not reply after handoff")
	}

	if len(f.sender.calls) != 1 {
		t.Fatalf("expected 1 transition message, got %d", len(f.sender.calls))
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Kind != domain.OperatorEventHandoffInitiated {
		t.Fatalf("expected initiated notification, got %+v", f.notifier.events)
	}
	if len(f.mirror.labels) != 1 || f.mirror.labels[0] != "human-handoff" {
		t.Fatalf("expected console label, got %v", f.mirror.labels)
	}
}

func TestHandoffService_InitiateContactMissing(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("")
	ctx := context.Background()

	_, err := f.svc.Initiate(ctx, conv.ID, "manual", domain.TriggerManual, nil)
	if !errors.Is(err, ErrContactMissing) {
		t.Fatalf("expected ErrContactMissing, got %v", err)
	}

	// Nothing may have been mutated or sent.
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.State != domain.StateActive || got.Controller != domain.ControllerAgent {
		t.Fatalf("conversation mutated despite missing contact: %v/%v", got.State, got.Controller)
	}
	if len(f.sender.calls) != 0 {
		t.Fatalf("transition message sent despite missing contact: %v", f.sender.calls)
	}
	if len(f.handoffs.records) != 0 {
		t.Fatal("handoff record created despite missing contact")
	}
}

func TestHandoffService_InitiateCompensatesOnInsertFailure(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")
	f.handoffs.createErr = errors.New("insert failed")
	ctx := context.Background()

	_, err := f.svc.Initiate(ctx, conv.ID, "manual", domain.TriggerManual, nil)
	if err == nil {
		t.Fatal("expected error from record insert")
	}

	// The controller flip must have been rolled back.
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.State != domain.StateActive || got.Controller != domain.ControllerAgent {
		t.Fatalf("compensation did not restore conversation: %v/%v", got.State, got.Controller)
	}
}

func TestHandoffService_InitiateTerminalConversation(t *testing.T) {
	f := newHandoffFixture()
	conv := f.convs.add(domain.StateCompleted, domain.ControllerAgent)
	f.parties.add(conv.CounterpartyID, "+5511987650001")

	_, err := f.svc.Initiate(context.Background(), conv.ID, "manual", domain.TriggerManual, nil)
	if !errors.Is(err, ErrConversationCompleted) {
		t.Fatalf("expected ErrConversationCompleted, got %v", err)
	}
}

func TestHandoffService_Finalize(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")
	ctx := context.Background()

	record, err := f.svc.Initiate(ctx, conv.ID, "manual", domain.TriggerManual, nil)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	if err := f.svc.Finalize(ctx, conv.ID, "rate confirmed", "operator-1"); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.State != domain.StateActive || got.Controller != domain.ControllerAgent {
		t.Fatalf("conversation not returned to agent: %v/%v", got.State, got.Controller)
	}
	resolved, _ := f.handoffs.GetByID(ctx, record.ID)
	if resolved.Status != domain.HandoffResolved {
		t.Fatalf("pending record not resolved: %v", resolved.Status)
	}
	if resolved.ResolvedBy != "operator-1" {
		t.Fatalf("resolver not recorded: %q", resolved.ResolvedBy)
	}
	if len(f.mirror.removed) != 1 {
		t.Fatalf("console label not removed: %v", f.mirror.removed)
	}
}

func TestHandoffService_ResolveAlreadyResolved(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")
	ctx := context.Background()

	record, _ := f.svc.Initiate(ctx, conv.ID, "manual", domain.TriggerManual, nil)
	if _, err := f.svc.Resolve(ctx, record.ID, "operator-1", "done"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	_, err := f.svc.Resolve(ctx, record.ID, "operator-2", "again")
	if !errors.Is(err, ErrHandoffResolved) {
		t.Fatalf("expected ErrHandoffResolved, got %v", err)
	}
}

func TestHandoffService_ResolveNotFound(t *testing.T) {
	f := newHandoffFixture()
	_, err := f.svc.Resolve(context.Background(), uuid.New(), "operator-1", "")
	if !errors.Is(err, ErrHandoffNotFound) {
		t.Fatalf("expected ErrHandoffNotFound, got %v", err)
	}
}

func TestHandoffService_Transfer(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")
	ctx := context.Background()

	if err := f.svc.Transfer(ctx, conv.ID, "conversational", "scheduler"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.Controller != domain.Controller("scheduler") {
		t.Fatalf("controller not transferred: %v", got.Controller)
	}
	if got.State != domain.StateActive {
		t.Fatalf("transfer changed state: %v", got.State)
	}
	if len(f.handoffs.records) != 0 {
		t.Fatal("agent transfer must not create handoff records")
	}
}

func TestHandoffService_TransferUnknownAgent(t *testing.T) {
	f := newHandoffFixture()
	conv := f.activeConversation("+5511987650001")

	err := f.svc.Transfer(context.Background(), conv.ID, "conversational", "billing")
	if !errors.Is(err, ErrAgentNotRegistered) {
		t.Fatalf("expected ErrAgentNotRegistered, got %v", err)
	}
}
