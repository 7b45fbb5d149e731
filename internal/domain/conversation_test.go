package domain

import "testing"

func TestMayAgentReply(t *testing.T) {
	tests := []struct {
		state      ConversationState
		controller Controller
		want       bool
	}{
		{StateActive, ControllerAgent, true},
		{StateActive, ControllerOperator, false},
		{StateActive, Controller("scheduler"), false},
		{StateHandoff, ControllerAgent, false},
		{StatePaused, ControllerAgent, false},
		{StateAwaitingOperator, ControllerAgent, false},
		{StateCompleted, ControllerAgent, false},
	}
	for _, tt := range tests {
		c := &Conversation{State: tt.state, Controller: tt.controller}
		if got := c.MayAgentReply(); got != tt.want {
			t.Errorf("MayAgentReply() in %s/%s = %v, want %v", tt.state, tt.controller, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StateCompleted.Terminal() {
		t.Fatal("completed should be terminal")
	}
	for _, s := range []ConversationState{StateActive, StateAwaitingOperator, StateAwaitingCounterparty, StatePaused, StateHandoff} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestValidConversationState(t *testing.T) {
	if !ValidConversationState("active") || !ValidConversationState("handoff") {
		t.Fatal("known states rejected")
	}
	if ValidConversationState("archived") {
		t.Fatal("unknown state accepted")
	}
}

func TestValidTriggerType(t *testing.T) {
	for _, trigger := range []TriggerType{TriggerManual, TriggerCounterpartyRequest, TriggerLegal, TriggerNegativeSentiment, TriggerLowConfidence} {
		if !ValidTriggerType(trigger) {
			t.Errorf("%s rejected", trigger)
		}
	}
	if ValidTriggerType(TriggerType("weather")) {
		t.Fatal("unknown trigger accepted")
	}
}

func TestDetectorSessionBounds(t *testing.T) {
	sess := &DetectorSession{}
	for i := 0; i < SessionHistoryLimit+5; i++ {
		sess.AppendReply("reply")
		sess.AppendAmount(AmountMention{Raw: "R$ 100", Value: 100})
		sess.AppendEntity("Hospital Santa Clara")
	}
	if len(sess.Replies) != SessionHistoryLimit {
		t.Fatalf("replies not bounded: %d", len(sess.Replies))
	}
	if len(sess.Amounts) != SessionHistoryLimit {
		t.Fatalf("amounts not bounded: %d", len(sess.Amounts))
	}
	if len(sess.Entities) != SessionHistoryLimit {
		t.Fatalf("entities not bounded: %d", len(sess.Entities))
	}
}
