package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ClaimEvent is the JSON payload posted to Slack, Teams and generic
// webhooks when a batch is submitted.
type ClaimEvent struct {
	Event        string   `json:"event"`
	EmployeeID   string   `json:"employee_id"`
	ClaimNumbers []string `json:"claim_numbers"`
	TotalAmount  string   `json:"total_amount,omitempty"`
	OccurredAt   string   `json:"occurred_at"`
}

// NotifyClient posts claim events to configured endpoints. Delivery is
// fire-and-forget: failures are logged, never retried, and never block the
// submission path.
type NotifyClient struct {
	http *http.Client
}

func NewNotifyClient() *NotifyClient {
	return &NotifyClient{
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Post delivers one event to one endpoint.
func (n *NotifyClient) Post(ctx context.Context, url string, event ClaimEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling claim event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting claim event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Broadcast delivers the event to every URL, logging failures.
func (n *NotifyClient) Broadcast(ctx context.Context, urls []string, event ClaimEvent) {
	for _, url := range urls {
		if err := n.Post(ctx, url, event); err != nil {
			log.Error().Err(err).Str("url", url).Msg("claim event delivery failed")
		}
	}
}
