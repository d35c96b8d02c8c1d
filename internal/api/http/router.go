package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk/internal/auth"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentsHandler
	Directory      *handlers.DirectoryHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role groups are coarse gates; the
// services repeat the role checks so no endpoint depends on routing alone.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	api.Get("/auth/me", cfg.Auth.Me)
	api.Get("/dashboard", cfg.Dashboard.Dashboard)

	api.Get("/categories", cfg.Directory.ListCategories)
	api.Get("/priorities", cfg.Directory.ListPriorities)
	api.Get("/statuses", cfg.Directory.ListStatuses)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)

	staff := api.Group("", auth.RequireStaff())
	staff.Get("/technicians", cfg.Directory.ListTechnicians)
	staff.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.Tickets.UpdatePriority)
	staff.Patch("/tickets/:id/assignee", cfg.Assignments.Assign)
	staff.Post("/tickets/:id/claim", cfg.Assignments.Claim)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Get("/users/:id", cfg.Users.GetUser)
	admin.Put("/users/:id", cfg.Users.UpdateUser)
	admin.Delete("/users/:id", cfg.Users.DeleteUser)
	admin.Post("/categories", cfg.Directory.CreateCategory)
	admin.Put("/categories/:id", cfg.Directory.UpdateCategory)
	admin.Delete("/categories/:id", cfg.Directory.DeleteCategory)
}
