package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
)

// WebhookNotifier posts operator events to a configured webhook, typically an
// ops chat channel.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Kind              string `json:"kind"`
	ConversationID    string `json:"conversation_id"`
	ConversationState string `json:"conversation_state"`
	Reason            string `json:"reason,omitempty"`
	HandoffID         string `json:"handoff_id,omitempty"`
	TriggerType       string `json:"trigger_type,omitempty"`
	LastReplyExcerpt  string `json:"last_reply_excerpt,omitempty"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, conv *domain.Conversation, event domain.OperatorEvent) error {
	payload := webhookPayload{
		Kind:              string(event.Kind),
		ConversationID:    conv.ID.String(),
		ConversationState: string(conv.State),
		Reason:            event.Reason,
	}
	if event.Handoff != nil {
		payload.HandoffID = event.Handoff.ID.String()
		payload.TriggerType = string(event.Handoff.TriggerType)
		payload.LastReplyExcerpt = event.Handoff.LastReplyExcerpt
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notify webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
