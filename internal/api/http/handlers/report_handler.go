package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/report"
	"github.com/misd-it/misdesk/internal/service"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// ReportHandler exports single-ticket PDF documents.
type ReportHandler struct {
	service *service.TicketService
}

// NewReportHandler constructs handler.
func NewReportHandler(ticketService *service.TicketService) *ReportHandler {
	return &ReportHandler{service: ticketService}
}

// Export GET /tickets/:id/report.
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	view, err := h.service.GetTicket(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return err
	}

	doc, err := report.Render(view)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+report.Filename(view)+`"`)
	return c.Send(doc)
}
