package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client mirrors conversation activity to the support console so operators
// watching the inbox see what the automated agent did and which threads are
// under human control.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) EchoMessage(ctx context.Context, conversationID uuid.UUID, text string) error {
	return c.post(ctx, fmt.Sprintf("/v1/conversations/%s/notes", conversationID), map[string]string{
		"text": text,
	})
}

func (c *Client) AddLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	return c.post(ctx, fmt.Sprintf("/v1/conversations/%s/labels", conversationID), map[string]string{
		"label": label,
	})
}

func (c *Client) RemoveLabel(ctx context.Context, conversationID uuid.UUID, label string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/v1/conversations/%s/labels/%s", c.baseURL, conversationID, label), nil)
	if err != nil {
		return fmt.Errorf("create console request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal console payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create console request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("console request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("console returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
