package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/api/dto"
	"github.com/misd-it/misdesk/internal/service"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// RegistryHandler manages department and filer reference data.
type RegistryHandler struct {
	service *service.RegistryService
}

// NewRegistryHandler constructs handler.
func NewRegistryHandler(registryService *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: registryService}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

// ListDepartments GET /departments. Public; feeds the submission form.
func (h *RegistryHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": depts})
}

// CreateDepartment POST /departments.
func (h *RegistryHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), actorFrom(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dept})
}

// UpdateDepartment PUT /departments/:id.
func (h *RegistryHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), actorFrom(c), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dept})
}

// DeleteDepartment DELETE /departments/:id.
func (h *RegistryHandler) DeleteDepartment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteDepartment(c.UserContext(), actorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListFilers GET /filers. Public; feeds the submission form.
func (h *RegistryHandler) ListFilers(c *fiber.Ctx) error {
	filers, err := h.service.ListFilers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": filers})
}

// CreateFiler POST /filers.
func (h *RegistryHandler) CreateFiler(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	filer, err := h.service.CreateFiler(c.UserContext(), actorFrom(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": filer})
}

// UpdateFiler PUT /filers/:id.
func (h *RegistryHandler) UpdateFiler(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	filer, err := h.service.UpdateFiler(c.UserContext(), actorFrom(c), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": filer})
}

// DeleteFiler DELETE /filers/:id.
func (h *RegistryHandler) DeleteFiler(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteFiler(c.UserContext(), actorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
