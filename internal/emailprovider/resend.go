package emailprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendAPIBase = "https://api.resend.com"

// ResendProvider sends email via the Resend HTTP API. The teacher's stack
// has no existing email SDK to generalize; Resend's API is a single JSON
// POST, so net/http is the idiomatic choice here rather than pulling in a
// dedicated client library for one endpoint.
type ResendProvider struct {
	apiKey string
	from   string
	client *http.Client
}

// NewResendProvider creates a ResendProvider. from is the verified sender
// address configured in the Resend account.
func NewResendProvider(apiKey, from string) *ResendProvider {
	return &ResendProvider{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendErrorBody struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendSendRequest{
		From:    p.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIBase+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send invitation email to %s: %w", msg.To, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	var parsed resendErrorBody
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &NonRetryableError{Err: fmt.Errorf("resend rejected message to %s (%d): %s", msg.To, resp.StatusCode, parsed.Message)}
	}
	return fmt.Errorf("resend send failed (%d): %s", resp.StatusCode, parsed.Message)
}
