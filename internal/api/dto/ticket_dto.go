package dto

import (
	"time"

	"github.com/misd-it/misdesk/internal/domain"
)

// CreateTicketRequest is the public submission payload.
type CreateTicketRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	DepartmentID int64  `json:"department_id"`
	FilerID      int64  `json:"filer_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Proof  string              `json:"proof,omitempty"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignRequest payload.
type AssignRequest struct {
	StaffID string `json:"staff_id"`
}

// TicketRow is the projected list/detail representation.
type TicketRow struct {
	ID             int64                 `json:"ticket_id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Email          string                `json:"email"`
	Category       string                `json:"category"`
	Description    string                `json:"description"`
	DepartmentID   int64                 `json:"department_id"`
	DepartmentName string                `json:"department_name"`
	FilerID        int64                 `json:"filer_id"`
	FilerName      string                `json:"filer_name"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	AssigneeID     *string               `json:"assign_to"`
	AssigneeName   string                `json:"assignee_name,omitempty"`
	Proof          *string               `json:"proof,omitempty"`
	ResolvedAt     *time.Time            `json:"resolved_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// TicketPageResponse is one projected page of rows.
type TicketPageResponse struct {
	Items      []TicketRow `json:"items"`
	Page       int         `json:"page"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// FromTicketView maps a joined row to its response shape.
func FromTicketView(view *domain.TicketView) TicketRow {
	return TicketRow{
		ID:             view.ID,
		FirstName:      view.FirstName,
		LastName:       view.LastName,
		Email:          view.Email,
		Category:       view.Category,
		Description:    view.Description,
		DepartmentID:   view.DepartmentID,
		DepartmentName: view.DepartmentName,
		FilerID:        view.FilerID,
		FilerName:      view.FilerName,
		Status:         view.Status,
		Priority:       view.Priority,
		AssigneeID:     view.AssigneeID,
		AssigneeName:   view.AssigneeName,
		Proof:          view.Proof,
		ResolvedAt:     view.ResolvedAt,
		CreatedAt:      view.CreatedAt,
	}
}
