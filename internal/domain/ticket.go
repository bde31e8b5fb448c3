package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// KnownStatus reports whether s is one of the three workflow states.
func KnownStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority is the urgency label stored on a ticket. The canonical
// values are Low, Moderate and High, but the field is persisted verbatim
// from the classifier so unknown labels can occur.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityModerate TicketPriority = "Moderate"
	TicketPriorityHigh     TicketPriority = "High"
)

// KnownPriority reports whether p is one of the canonical priority labels.
func KnownPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityModerate, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for one reported issue.
type Ticket struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Category     string
	Description  string
	DepartmentID int64
	FilerID      int64
	Status       TicketStatus
	Priority     TicketPriority
	AssigneeID   *string
	Proof        *string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

// TicketView is a ticket joined with the display names the list screens
// and notifications need.
type TicketView struct {
	Ticket
	DepartmentName string
	FilerName      string
	AssigneeName   string
	AssigneeEmail  string
}
