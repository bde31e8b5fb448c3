package events

import (
	"time"

	"github.com/misd-it/misdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
)

// Event represents a lifecycle event emitted by the ticket engine after
// a write has committed.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.TicketView `json:"ticket"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Ticket    domain.TicketView   `json:"ticket"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Proof     string              `json:"proof,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Ticket        domain.TicketView `json:"ticket"`
	AssigneeID    string            `json:"assignee_id"`
	AssigneeEmail string            `json:"assignee_email"`
	AssigneeName  string            `json:"assignee_name"`
}
