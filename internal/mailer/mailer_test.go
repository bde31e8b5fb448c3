package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/misd-it/misdesk/internal/config"
)

func TestHTTPSenderPostsJSONPayload(t *testing.T) {
	var got Message
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender(config.MailConfig{EndpointURL: srv.URL})
	msg := Message{
		To:      "maria@example.com",
		Subject: "Ticket #7 - Status changed to Resolved",
		Text:    "Your ticket #7 has been resolved.",
		HTML:    "<p>resolved</p>",
	}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("content type %q", contentType)
	}
	if got != msg {
		t.Fatalf("payload mismatch: got %+v, want %+v", got, msg)
	}
}

func TestHTTPSenderNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewHTTPSender(config.MailConfig{EndpointURL: srv.URL})
	err := sender.Send(context.Background(), Message{To: "a@b.c", Subject: "s", Text: "t"})
	if err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestHTTPSenderRejectsIncompleteMessages(t *testing.T) {
	sender := NewHTTPSender(config.MailConfig{EndpointURL: "http://mail.local"})
	if err := sender.Send(context.Background(), Message{Subject: "s", Text: "t"}); err == nil {
		t.Fatal("missing recipient must fail")
	}
	if err := sender.Send(context.Background(), Message{To: "a@b.c", Subject: "s"}); err == nil {
		t.Fatal("empty body must fail")
	}
}

func TestNewHTTPSenderDisabledWithoutEndpoint(t *testing.T) {
	if sender := NewHTTPSender(config.MailConfig{}); sender != nil {
		t.Fatal("no endpoint means delivery disabled")
	}
}
