package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/config"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/events"
	"github.com/misd-it/misdesk/internal/mailer"
)

// NotificationService consumes lifecycle events and delivers email
// notifications through the mail collaborator. Delivery is best-effort:
// failures are logged and never affect the committed mutation.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mailer.Sender
	logger     *zap.Logger
	cfg        config.MailConfig
}

// NewNotificationService creates the service. sender may be nil when
// mail is not configured.
func NewNotificationService(dispatcher events.Dispatcher, sender mailer.Sender, logger *zap.Logger, cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	// Moving back to Pending is silent.
	if payload.NewStatus != domain.TicketStatusInProgress && payload.NewStatus != domain.TicketStatusResolved {
		return nil
	}

	subject := fmt.Sprintf("Ticket #%d - Status changed to %s", event.TicketID, payload.NewStatus)
	n.deliver(ctx, mailer.Message{
		To:      payload.Ticket.Email,
		Subject: subject,
		Text:    statusChangedText(&payload),
		HTML:    ticketHTML(&payload.Ticket, statusChangedIntro(&payload), payload.Proof),
	})
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketAssigned",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("assignee_id", payload.AssigneeID))

	subject := fmt.Sprintf("Ticket #%d - Assigned to you", event.TicketID)
	intro := fmt.Sprintf("Hi %s, ticket #%d has been assigned to you.", payload.AssigneeName, event.TicketID)
	n.deliver(ctx, mailer.Message{
		To:      payload.AssigneeEmail,
		Subject: subject,
		Text:    intro,
		HTML:    ticketHTML(&payload.Ticket, intro, ""),
	})
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, msg mailer.Message) {
	if n.sender == nil || msg.To == "" {
		return
	}
	if msg.From == "" {
		msg.From = n.cfg.From
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}

func statusChangedIntro(payload *events.TicketStatusChangedPayload) string {
	if payload.NewStatus == domain.TicketStatusResolved {
		return fmt.Sprintf("Your ticket #%d has been resolved.", payload.Ticket.ID)
	}
	return fmt.Sprintf("Your ticket #%d is now %s.", payload.Ticket.ID, payload.NewStatus)
}

func statusChangedText(payload *events.TicketStatusChangedPayload) string {
	var b strings.Builder
	b.WriteString(statusChangedIntro(payload))
	if payload.Proof != "" {
		b.WriteString("\nResolution: " + payload.Proof)
	}
	return b.String()
}

// priorityBadgeColor color-codes the priority cell in the HTML body.
func priorityBadgeColor(priority domain.TicketPriority) string {
	switch priority {
	case domain.TicketPriorityHigh:
		return "#FCA5A5"
	case domain.TicketPriorityModerate:
		return "#FEF08A"
	case domain.TicketPriorityLow:
		return "#BBF7D0"
	}
	return "#E5E7EB"
}

// statusBadgeColor color-codes the status cell in the HTML body.
func statusBadgeColor(status domain.TicketStatus) string {
	switch status {
	case domain.TicketStatusPending:
		return "#E9D5FF"
	case domain.TicketStatusInProgress:
		return "#FEF08A"
	case domain.TicketStatusResolved:
		return "#BBF7D0"
	}
	return "#E5E7EB"
}

func ticketHTML(view *domain.TicketView, intro, proof string) string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString(`<div style="font-family:Helvetica,Arial,sans-serif">`)
	b.WriteString(`<h2 style="color:#166534">MISDesk Ticket #` + fmt.Sprintf("%d", view.ID) + `</h2>`)
	b.WriteString(`<p>` + esc(intro) + `</p>`)
	b.WriteString(`<table cellpadding="6" style="border-collapse:collapse">`)
	row := func(label, value string) {
		b.WriteString(`<tr><td style="font-weight:bold">` + label + `</td><td>` + esc(value) + `</td></tr>`)
	}
	row("Name", view.FirstName+" "+view.LastName)
	row("Category", view.Category)
	row("Description", view.Description)
	row("Department", view.DepartmentName)
	row("Filed By", view.FilerName)
	b.WriteString(`<tr><td style="font-weight:bold">Priority</td><td style="background:` +
		priorityBadgeColor(view.Priority) + `">` + esc(string(view.Priority)) + `</td></tr>`)
	b.WriteString(`<tr><td style="font-weight:bold">Status</td><td style="background:` +
		statusBadgeColor(view.Status) + `">` + esc(string(view.Status)) + `</td></tr>`)
	row("Created At", view.CreatedAt.Format("1/2/2006, 3:04:05 PM"))
	if view.ResolvedAt != nil {
		row("Resolved At", view.ResolvedAt.Format("1/2/2006, 3:04:05 PM"))
	}
	if proof != "" {
		row("Resolution Proof", proof)
	}
	b.WriteString(`</table></div>`)
	return b.String()
}
