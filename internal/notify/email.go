package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EmailSender delivers notifications through a transactional email HTTP API.
type EmailSender struct {
	endpoint string
	apiKey   string
	from     string
	to       []string
	client   *http.Client
}

// NewEmailSender creates an EmailSender posting to the given API endpoint. It
// uses a default HTTP client with a 10-second timeout.
func NewEmailSender(endpoint, apiKey, from string, to []string) *EmailSender {
	return &EmailSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		to:       to,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a message to the email API. The title becomes the subject line
// and the message body is sent as plain text.
func (e *EmailSender) Send(ctx context.Context, title, message string) error {
	payload := map[string]any{
		"from":    e.from,
		"to":      e.to,
		"subject": title,
		"text":    message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("email: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("email: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (e *EmailSender) Name() string {
	return "email"
}
