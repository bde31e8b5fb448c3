package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/api/dto"
	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/service"
	apperrors "github.com/misd-it/misdesk/pkg/util"
)

// StaffHandler manages auth and team administration endpoints.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{service: staffService}
}

// Register POST /auth/register. Public bootstrap sign-up.
func (h *StaffHandler) Register(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.Register(c.UserContext(), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromProfile(profile)})
}

// Login POST /auth/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Profile:   dto.FromProfile(result.Profile),
	}})
}

// Me GET /auth/me. Returns the resolved principal.
func (h *StaffHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	resp := dto.FromProfile(principal.Profile)
	resp.Roles = principal.Permissions.Strings()
	return c.JSON(fiber.Map{"data": resp})
}

// List GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	profiles, err := h.service.List(c.UserContext(), actorFrom(c))
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.FromProfile(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /staff. Team-page account creation.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.AddTeamMember(c.UserContext(), actorFrom(c), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromProfile(profile)})
}

// UpdateRoles PUT /staff/:id/roles.
func (h *StaffHandler) UpdateRoles(c *fiber.Ctx) error {
	var req dto.UpdateRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.service.UpdateRoles(c.UserContext(), actorFrom(c), c.Params("id"), req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProfile(profile)})
}

// Delete DELETE /staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
