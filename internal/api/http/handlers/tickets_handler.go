package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/api/dto"
	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/query"
	"github.com/misd-it/misdesk/internal/service"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

func actorFrom(c *fiber.Ctx) service.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{Permissions: auth.PermissionSet{}}
	}
	return service.Actor{ID: principal.Profile.ID, Permissions: principal.Permissions}
}

// CreateTicket POST /tickets. Public submission form.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Category:     req.Category,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		FilerID:      req.FilerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": ticket.ID,
		"status":    ticket.Status,
		"priority":  ticket.Priority,
	}})
}

// ListTickets GET /tickets. Staff list with filter/sort/page projection.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	views, err := h.service.ListTickets(c.UserContext(), actorFrom(c))
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	projected := query.Project(views, query.Params{
		Filter: c.Query("search"),
		Sort:   query.SortKey(c.Query("sort")),
		Status: domain.TicketStatus(c.Query("status")),
		Page:   page,
	})

	items := make([]dto.TicketRow, 0, len(projected.Items))
	for i := range projected.Items {
		items = append(items, dto.FromTicketView(&projected.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketPageResponse{
		Items:      items,
		Page:       projected.Page,
		Total:      projected.Total,
		TotalPages: projected.TotalPages,
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	view, err := h.service.GetTicket(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketView(view)})
}

// Track GET /tickets/track?email=. Public tracker.
func (h *TicketsHandler) Track(c *fiber.Ctx) error {
	views, err := h.service.TrackByEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketRow, 0, len(views))
	for i := range views {
		items = append(items, dto.FromTicketView(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SetStatus(c.UserContext(), actorFrom(c), id, req.Status, req.Proof)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id":   ticket.ID,
		"status":      ticket.Status,
		"resolved_at": ticket.ResolvedAt,
	}})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SetPriority(c.UserContext(), actorFrom(c), id, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": ticket.ID,
		"priority":  ticket.Priority,
	}})
}

// Assign PATCH /tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" {
		return apperrors.NewValidationError("staff_id required", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), actorFrom(c), id, req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": ticket.ID,
		"assign_to": ticket.AssigneeID,
	}})
}
