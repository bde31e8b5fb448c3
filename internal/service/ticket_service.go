package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/ai"
	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/events"
	"github.com/misd-it/misdesk/internal/repository"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// Actor is the resolved principal performing a gated operation. An empty
// permission set denies everything.
type Actor struct {
	ID          string
	Permissions auth.PermissionSet
}

// TicketService owns the ticket lifecycle: creation, status, priority and
// assignment transitions, and the events they emit.
type TicketService struct {
	tickets     repository.TicketRepository
	profiles    repository.ProfileRepository
	departments repository.DepartmentRepository
	filers      repository.FilerRepository
	classifier  ai.Classifier
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ProfileRepo    repository.ProfileRepository
	DepartmentRepo repository.DepartmentRepository
	FilerRepo      repository.FilerRepository
	Classifier     ai.Classifier
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		profiles:    deps.ProfileRepo,
		departments: deps.DepartmentRepo,
		filers:      deps.FilerRepo,
		classifier:  deps.Classifier,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// TicketCreateInput describes the public submission payload.
type TicketCreateInput struct {
	FirstName    string
	LastName     string
	Email        string
	Category     string
	Description  string
	DepartmentID int64
	FilerID      int64
}

// CreateTicket accepts a public submission. The classifier is invoked
// exactly once and its trimmed output is stored verbatim as priority;
// classifier failure falls back to Moderate and never blocks creation.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Category = strings.TrimSpace(input.Category)
	input.Description = strings.TrimSpace(input.Description)

	if len(input.FirstName) < 2 || len(input.LastName) < 2 {
		return nil, apperrors.NewValidationError("first and last name must be at least 2 characters", nil)
	}
	if !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	if input.Category == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("category and description required", nil)
	}
	if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, apperrors.NewNotFound("department", nil)
	}
	if _, err := s.filers.GetByID(ctx, input.FilerID); err != nil {
		return nil, apperrors.NewNotFound("filer", nil)
	}

	priority := s.classifyPriority(ctx, input.Description)

	ticket := &domain.Ticket{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Category:     input.Category,
		Description:  input.Description,
		DepartmentID: input.DepartmentID,
		FilerID:      input.FilerID,
		Status:       domain.TicketStatusPending,
		Priority:     priority,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if view, err := s.tickets.GetViewByID(ctx, ticket.ID); err == nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketCreated,
			TicketID: ticket.ID,
			Payload:  events.TicketCreatedPayload{Ticket: *view},
		})
	} else {
		s.logger.Warn("ticket view fetch failed, skipping event",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("event", string(events.EventTicketCreated)),
			zap.Error(err))
	}
	return ticket, nil
}

func (s *TicketService) classifyPriority(ctx context.Context, description string) domain.TicketPriority {
	if s.classifier == nil {
		return domain.TicketPriorityModerate
	}
	suggestion, err := s.classifier.Classify(ctx, description)
	if err != nil {
		s.logger.Warn("priority classification failed", zap.Error(err))
		return domain.TicketPriorityModerate
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return domain.TicketPriorityModerate
	}
	// Stored verbatim; unknown labels degrade gracefully downstream.
	return domain.TicketPriority(suggestion)
}

// SetStatus transitions a ticket's status. Resolution requires non-empty
// proof and stamps resolved_at exactly once; leaving Resolved never
// clears either field. Backward transitions are permitted.
func (s *TicketService) SetStatus(ctx context.Context, actor Actor, ticketID int64, newStatus domain.TicketStatus, proof string) (*domain.Ticket, error) {
	if !actor.Permissions.Has(auth.PermCanEditStatus) {
		return nil, apperrors.NewForbidden("missing permission: Can Edit Status")
	}
	if !domain.KnownStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	proof = strings.TrimSpace(proof)
	if newStatus == domain.TicketStatusResolved && proof == "" {
		return nil, apperrors.NewValidationError("resolution proof required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusResolved {
		ticket.Proof = &proof
		if ticket.ResolvedAt == nil {
			now := s.now()
			ticket.ResolvedAt = &now
		}
	}

	if err := s.tickets.UpdateStatus(ctx, ticketID, ticket.Status, ticket.Proof, ticket.ResolvedAt); err != nil {
		return nil, apperrors.MapError(err)
	}

	if view, err := s.tickets.GetViewByID(ctx, ticketID); err == nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				Ticket:    *view,
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Proof:     proof,
			},
		})
	} else {
		s.logger.Warn("ticket view fetch failed, skipping event",
			zap.Int64("ticket_id", ticketID),
			zap.String("event", string(events.EventTicketStatusChanged)),
			zap.Error(err))
	}
	return ticket, nil
}

// SetPriority changes a ticket's priority. Any canonical value to any
// other; no notification is triggered.
func (s *TicketService) SetPriority(ctx context.Context, actor Actor, ticketID int64, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !actor.Permissions.Has(auth.PermCanEditPriority) {
		return nil, apperrors.NewForbidden("missing permission: Can Edit Priority")
	}
	if !domain.KnownPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(newPriority)})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Priority = newPriority

	if err := s.tickets.UpdatePriority(ctx, ticketID, newPriority); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Assign overwrites the assignee unconditionally. The target must exist
// as a profile but needs no particular capability.
func (s *TicketService) Assign(ctx context.Context, actor Actor, ticketID int64, staffID string) (*domain.Ticket, error) {
	if !actor.Permissions.Has(auth.PermCanAssign) {
		return nil, apperrors.NewForbidden("missing permission: Can Assign")
	}

	assignee, err := s.profiles.GetByID(ctx, staffID)
	if err != nil {
		return nil, apperrors.NewNotFound("staff profile", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.AssigneeID = &assignee.ID

	if err := s.tickets.UpdateAssignee(ctx, ticketID, ticket.AssigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}

	if view, err := s.tickets.GetViewByID(ctx, ticketID); err == nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticketID,
			ActorID:  actor.ID,
			Payload: events.TicketAssignedPayload{
				Ticket:        *view,
				AssigneeID:    assignee.ID,
				AssigneeEmail: assignee.Email,
				AssigneeName:  assignee.DisplayName,
			},
		})
	} else {
		s.logger.Warn("ticket view fetch failed, skipping event",
			zap.Int64("ticket_id", ticketID),
			zap.String("event", string(events.EventTicketAssigned)),
			zap.Error(err))
	}
	return ticket, nil
}

// ListTickets returns the joined rows the view engine projects.
func (s *TicketService) ListTickets(ctx context.Context, actor Actor) ([]domain.TicketView, error) {
	if !actor.Permissions.Has(auth.PermCanView) {
		return nil, apperrors.NewForbidden("missing permission: Can View")
	}
	views, err := s.tickets.ListViews(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// GetTicket returns one joined row for staff detail and report export.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID int64) (*domain.TicketView, error) {
	if !actor.Permissions.Has(auth.PermCanView) {
		return nil, apperrors.NewForbidden("missing permission: Can View")
	}
	view, err := s.tickets.GetViewByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return view, nil
}

// TrackByEmail is the public tracker: substring match on the submitter
// email, no authentication.
func (s *TicketService) TrackByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []domain.TicketView{}, nil
	}
	views, err := s.tickets.ListViewsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
