package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/misd-it/misdesk/internal/config"
)

// Message is the payload accepted by the mail collaborator.
type Message struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Sender delivers a single outbound message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts messages to the configured mail endpoint.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender builds a sender. Returns nil when no endpoint is
// configured; callers treat a nil sender as delivery disabled.
func NewHTTPSender(cfg config.MailConfig) *HTTPSender {
	if cfg.EndpointURL == "" {
		return nil
	}
	return &HTTPSender{
		endpoint: cfg.EndpointURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts the message. Non-2xx responses are delivery failures.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" || msg.Subject == "" {
		return errors.New("mailer: recipient and subject required")
	}
	if msg.Text == "" && msg.HTML == "" {
		return errors.New("mailer: empty body")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
