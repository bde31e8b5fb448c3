package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/events"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	profiles   *fakeProfileRepo
	dispatcher *recordingDispatcher
	classifier *fakeClassifier
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	profiles := newFakeProfileRepo()
	departments := newFakeDepartmentRepo()
	filers := newFakeFilerRepo()
	dispatcher := newRecordingDispatcher()
	classifier := &fakeClassifier{result: "High"}

	_ = departments.Create(context.Background(), &domain.Department{Name: "Accounting"})
	_ = filers.Create(context.Background(), &domain.Filer{Name: "Walk-in"})
	tickets.departmentNames[1] = "Accounting"
	tickets.filerNames[1] = "Walk-in"

	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		ProfileRepo:    profiles,
		DepartmentRepo: departments,
		FilerRepo:      filers,
		Classifier:     classifier,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
	})
	return &ticketFixture{
		service:    svc,
		tickets:    tickets,
		profiles:   profiles,
		dispatcher: dispatcher,
		classifier: classifier,
	}
}

func validInput() TicketCreateInput {
	return TicketCreateInput{
		FirstName:    "Maria",
		LastName:     "Santos",
		Email:        "maria@example.com",
		Category:     "Hardware",
		Description:  "Printer in accounting will not turn on",
		DepartmentID: 1,
		FilerID:      1,
	}
}

func editorActor(perms ...auth.Permission) Actor {
	return Actor{ID: "actor-1", Permissions: auth.NewPermissionSet(perms...)}
}

func TestCreateTicketStoresClassifierOutputVerbatim(t *testing.T) {
	fx := newTicketFixture(t)
	fx.classifier.result = "  Somewhat Urgent\n"

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if fx.classifier.calls != 1 {
		t.Fatalf("classifier invoked %d times, want 1", fx.classifier.calls)
	}
	if ticket.Priority != domain.TicketPriority("Somewhat Urgent") {
		t.Fatalf("priority %q, want trimmed classifier output", ticket.Priority)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Fatalf("status %q, want Pending", ticket.Status)
	}
}

func TestCreateTicketClassifierFailureFallsBack(t *testing.T) {
	fx := newTicketFixture(t)
	fx.classifier.err = errors.New("quota exceeded")

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("classifier failure must not block creation: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityModerate {
		t.Fatalf("priority %q, want Moderate fallback", ticket.Priority)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	fx := newTicketFixture(t)

	cases := []struct {
		name   string
		mutate func(*TicketCreateInput)
	}{
		{"short first name", func(in *TicketCreateInput) { in.FirstName = "M" }},
		{"whitespace last name", func(in *TicketCreateInput) { in.LastName = "  S  " }},
		{"bad email", func(in *TicketCreateInput) { in.Email = "not-an-email" }},
		{"empty description", func(in *TicketCreateInput) { in.Description = "   " }},
		{"unknown department", func(in *TicketCreateInput) { in.DepartmentID = 99 }},
		{"unknown filer", func(in *TicketCreateInput) { in.FilerID = 99 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if _, err := fx.service.CreateTicket(context.Background(), input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateTicketPublishesCreatedEvent(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	created := fx.dispatcher.byType(events.EventTicketCreated)
	if len(created) != 1 || created[0].TicketID != ticket.ID {
		t.Fatalf("expected one created event for ticket %d, got %+v", ticket.ID, created)
	}
}

func TestSetStatusRequiresPermission(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.SetStatus(context.Background(), editorActor(auth.PermCanView), ticket.ID, domain.TicketStatusInProgress, "")
	var dErr *apperrors.DomainError
	if !errors.As(err, &dErr) || dErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if fx.tickets.statusWrites != 0 {
		t.Fatal("denied operation must not write")
	}
	if len(fx.dispatcher.byType(events.EventTicketStatusChanged)) != 0 {
		t.Fatal("denied operation must not publish")
	}
}

func TestSetStatusResolveRequiresProof(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())
	actor := editorActor(auth.PermCanEditStatus)

	_, err := fx.service.SetStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved, "   ")
	if err == nil {
		t.Fatal("whitespace proof must be rejected")
	}
	if fx.tickets.statusWrites != 0 {
		t.Fatal("rejected resolution must not reach the repository")
	}

	updated, err := fx.service.SetStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved, "Replaced the power supply")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Proof == nil || *updated.Proof != "Replaced the power supply" {
		t.Fatalf("proof not stored: %+v", updated.Proof)
	}
	if updated.ResolvedAt == nil {
		t.Fatal("resolved_at must be stamped on resolution")
	}
}

func TestSetStatusResolvedAtStampedOnce(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())
	actor := editorActor(auth.PermCanEditStatus)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return base }
	first, err := fx.service.SetStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved, "done")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	// Reopen, then resolve again later. The original stamp must survive.
	if _, err := fx.service.SetStatus(context.Background(), actor, ticket.ID, domain.TicketStatusInProgress, ""); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened, _ := fx.tickets.GetByID(context.Background(), ticket.ID)
	if reopened.ResolvedAt == nil || !reopened.ResolvedAt.Equal(base) {
		t.Fatalf("resolved_at must survive reopening, got %v", reopened.ResolvedAt)
	}

	fx.service.now = func() time.Time { return base.Add(48 * time.Hour) }
	second, err := fx.service.SetStatus(context.Background(), actor, ticket.ID, domain.TicketStatusResolved, "done again")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Fatalf("resolved_at restamped: first=%v second=%v", first.ResolvedAt, second.ResolvedAt)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.SetStatus(context.Background(), editorActor(auth.PermCanEditStatus), ticket.ID, domain.TicketStatus("Closed"), "")
	if err == nil {
		t.Fatal("unknown status must be rejected")
	}
}

func TestSetStatusPublishesOldAndNew(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.SetStatus(context.Background(), editorActor(auth.PermCanEditStatus), ticket.ID, domain.TicketStatusInProgress, "")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	changed := fx.dispatcher.byType(events.EventTicketStatusChanged)
	if len(changed) != 1 {
		t.Fatalf("expected one status event, got %d", len(changed))
	}
	payload, ok := changed[0].Payload.(events.TicketStatusChangedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", changed[0].Payload)
	}
	if payload.OldStatus != domain.TicketStatusPending || payload.NewStatus != domain.TicketStatusInProgress {
		t.Fatalf("payload statuses %q -> %q", payload.OldStatus, payload.NewStatus)
	}
}

func TestSetStatusViewFetchFailureLogsAndKeepsWrite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tickets := newFakeTicketRepo()
	dispatcher := newRecordingDispatcher()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		Dispatcher: dispatcher,
		Logger:     zap.New(core),
	})

	_ = tickets.Create(context.Background(), &domain.Ticket{
		FirstName: "Maria", LastName: "Santos", Email: "maria@example.com",
		Category: "Hardware", Description: "broken", DepartmentID: 1, FilerID: 1,
		Status: domain.TicketStatusPending, Priority: domain.TicketPriorityModerate,
	})
	tickets.viewErr = errors.New("replica lagging")

	updated, err := svc.SetStatus(context.Background(), editorActor(auth.PermCanEditStatus), 1, domain.TicketStatusInProgress, "")
	if err != nil {
		t.Fatalf("the committed write must not fail: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status %q", updated.Status)
	}
	if tickets.statusWrites != 1 {
		t.Fatalf("expected the write to land, got %d", tickets.statusWrites)
	}
	if len(dispatcher.published) != 0 {
		t.Fatal("no event without the joined view")
	}
	if logs.FilterMessage("ticket view fetch failed, skipping event").Len() != 1 {
		t.Fatalf("skip must be logged, got %d entries", logs.Len())
	}
}

func TestSetPriorityNoEvent(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())
	before := len(fx.dispatcher.published)

	updated, err := fx.service.SetPriority(context.Background(), editorActor(auth.PermCanEditPriority), ticket.ID, domain.TicketPriorityLow)
	if err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if updated.Priority != domain.TicketPriorityLow {
		t.Fatalf("priority %q", updated.Priority)
	}
	if len(fx.dispatcher.published) != before {
		t.Fatal("priority changes are silent")
	}
}

func TestSetPriorityRejectsUnknownLabel(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.SetPriority(context.Background(), editorActor(auth.PermCanEditPriority), ticket.ID, domain.TicketPriority("Critical"))
	if err == nil {
		t.Fatal("manual edits are limited to the canonical labels")
	}
}

func TestAssignOverwritesAndNotifies(t *testing.T) {
	fx := newTicketFixture(t)
	fx.profiles.put(&domain.Profile{ID: "staff-1", Email: "alice@misd.local", DisplayName: "Alice"})
	fx.profiles.put(&domain.Profile{ID: "staff-2", Email: "bob@misd.local", DisplayName: "Bob"})
	fx.tickets.assigneeNames["staff-2"] = "Bob"
	fx.tickets.assigneeEmails["staff-2"] = "bob@misd.local"

	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())
	actor := editorActor(auth.PermCanAssign)

	if _, err := fx.service.Assign(context.Background(), actor, ticket.ID, "staff-1"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	updated, err := fx.service.Assign(context.Background(), actor, ticket.ID, "staff-2")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != "staff-2" {
		t.Fatalf("assignee not overwritten: %+v", updated.AssigneeID)
	}

	assigned := fx.dispatcher.byType(events.EventTicketAssigned)
	if len(assigned) != 2 {
		t.Fatalf("expected 2 assigned events, got %d", len(assigned))
	}
	payload, ok := assigned[1].Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssigneeEmail != "bob@misd.local" {
		t.Fatalf("unexpected payload %+v", assigned[1].Payload)
	}
}

func TestAssignUnknownStaffFails(t *testing.T) {
	fx := newTicketFixture(t)
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.Assign(context.Background(), editorActor(auth.PermCanAssign), ticket.ID, "ghost")
	var dErr *apperrors.DomainError
	if !errors.As(err, &dErr) || dErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
	if fx.tickets.assigneeWrites != 0 {
		t.Fatal("failed assign must not write")
	}
}

func TestAssignDeniedWithoutPermission(t *testing.T) {
	fx := newTicketFixture(t)
	fx.profiles.put(&domain.Profile{ID: "staff-1", Email: "alice@misd.local", DisplayName: "Alice"})
	ticket, _ := fx.service.CreateTicket(context.Background(), validInput())

	_, err := fx.service.Assign(context.Background(), editorActor(auth.PermCanEditStatus), ticket.ID, "staff-1")
	if err == nil {
		t.Fatal("Can Assign is required")
	}
	if fx.tickets.assigneeWrites != 0 {
		t.Fatal("denied assign must not write")
	}
}

func TestTrackByEmailEmptyIsEmpty(t *testing.T) {
	fx := newTicketFixture(t)
	_, _ = fx.service.CreateTicket(context.Background(), validInput())

	views, err := fx.service.TrackByEmail(context.Background(), "   ")
	if err != nil {
		t.Fatalf("TrackByEmail: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("empty email must return nothing, got %d rows", len(views))
	}
}

func TestListTicketsRequiresCanView(t *testing.T) {
	fx := newTicketFixture(t)
	if _, err := fx.service.ListTickets(context.Background(), Actor{}); err == nil {
		t.Fatal("empty permission set must be denied")
	}
}
