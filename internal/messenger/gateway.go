package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
)

// GatewayClient delivers messages through the texting gateway's REST API.
type GatewayClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewGatewayClient(baseURL, token string) *GatewayClient {
	return &GatewayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewaySendRequest struct {
	To       string            `json:"to"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type gatewaySendResponse struct {
	Status      string `json:"status"`
	BlockReason string `json:"block_reason,omitempty"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *GatewayClient) Send(ctx context.Context, contact, text string, meta map[string]string) (*domain.SendResult, error) {
	body, err := json.Marshal(gatewaySendRequest{To: contact, Text: text, Metadata: meta})
	if err != nil {
		return nil, fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	// 422 means the gateway refused the message (opt-out, blocked number);
	// that is a policy outcome, not a transport error.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		var result gatewaySendResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("unmarshal gateway response: %w", err)
		}
		return &domain.SendResult{Blocked: true, BlockReason: result.BlockReason}, nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result gatewaySendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal gateway response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("gateway error: %s", result.Error.Message)
	}
	return &domain.SendResult{Success: true}, nil
}
