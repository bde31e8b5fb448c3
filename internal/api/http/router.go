package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/misd-it/misdesk/internal/api/http/handlers"
	"github.com/misd-it/misdesk/internal/auth"
)

// RouteConfig bundles the handlers and middleware the router wires up.
type RouteConfig struct {
	Auth     *auth.AuthMiddleware
	Tickets  *handlers.TicketsHandler
	Reports  *handlers.ReportHandler
	Staff    *handlers.StaffHandler
	Registry *handlers.RegistryHandler
	Health   *handlers.HealthHandler
}

// RegisterRoutes mounts the full API surface. Public routes cover ticket
// submission, tracking and the reference lists the submission form needs;
// everything else sits behind the bearer-token middleware.
func RegisterRoutes(app *fiber.App, rc RouteConfig) {
	app.Get("/health/live", rc.Health.Live)
	app.Get("/health/ready", rc.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/auth/register", rc.Staff.Register)
	api.Post("/auth/login", rc.Staff.Login)

	api.Post("/tickets", rc.Tickets.CreateTicket)
	api.Get("/tickets/track", rc.Tickets.Track)
	api.Get("/departments", rc.Registry.ListDepartments)
	api.Get("/filers", rc.Registry.ListFilers)

	protected := api.Group("", rc.Auth.Handle)

	protected.Get("/auth/me", rc.Staff.Me)

	protected.Get("/tickets", auth.Require(auth.PermCanView), rc.Tickets.ListTickets)
	protected.Get("/tickets/:id", auth.Require(auth.PermCanView), rc.Tickets.GetTicket)
	protected.Get("/tickets/:id/report", auth.Require(auth.PermCanView), rc.Reports.Export)
	protected.Patch("/tickets/:id/status", auth.Require(auth.PermCanEditStatus), rc.Tickets.UpdateStatus)
	protected.Patch("/tickets/:id/priority", auth.Require(auth.PermCanEditPriority), rc.Tickets.UpdatePriority)
	protected.Patch("/tickets/:id/assignee", auth.Require(auth.PermCanAssign), rc.Tickets.Assign)

	protected.Get("/staff", auth.Require(auth.PermCanView), rc.Staff.List)
	protected.Post("/staff", auth.Require(auth.PermCanAddTeams), rc.Staff.Create)
	protected.Put("/staff/:id/roles", auth.Require(auth.PermCanEditTeams), rc.Staff.UpdateRoles)
	protected.Delete("/staff/:id", auth.Require(auth.PermCanDelete), rc.Staff.Delete)

	protected.Post("/departments", auth.Require(auth.PermCanAddConfig), rc.Registry.CreateDepartment)
	protected.Put("/departments/:id", auth.Require(auth.PermCanEditConfig), rc.Registry.UpdateDepartment)
	protected.Delete("/departments/:id", auth.Require(auth.PermCanDeleteConfig), rc.Registry.DeleteDepartment)

	protected.Post("/filers", auth.Require(auth.PermCanAddConfig), rc.Registry.CreateFiler)
	protected.Put("/filers/:id", auth.Require(auth.PermCanEditConfig), rc.Registry.UpdateFiler)
	protected.Delete("/filers/:id", auth.Require(auth.PermCanDeleteConfig), rc.Registry.DeleteFiler)
}
