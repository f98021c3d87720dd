package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-service/internal/api/http/handlers"
	"github.com/spec-kit/equipment-service/internal/auth"
	"github.com/spec-kit/equipment-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Approvals      *handlers.ApprovalsHandler
	Parts          *handlers.PartsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/auth/register",
		auth.RequireRole(domain.RoleAdmin), cfg.Auth.Register)

	tickets := protected.Group("/tickets")
	tickets.Post("",
		auth.RequireRole(domain.RoleEndUser), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/start",
		auth.RequireRole(domain.RoleTechnician), cfg.Tickets.StartService)
	tickets.Post("/:id/hold",
		auth.RequireRole(domain.RoleTechnician), cfg.Tickets.Hold)
	tickets.Post("/:id/resume",
		auth.RequireRole(domain.RoleTechnician), cfg.Tickets.Resume)
	tickets.Post("/:id/reassign",
		auth.RequireRole(domain.RoleTechnician), cfg.Tickets.RequestReassignment)
	tickets.Post("/:id/cancel",
		auth.RequireRole(domain.RoleEndUser, domain.RoleCoordinator, domain.RoleAdmin), cfg.Tickets.Cancel)
	tickets.Post("/:id/completion",
		auth.RequireRole(domain.RoleTechnician), cfg.Tickets.SubmitCompletion)

	approvals := protected.Group("/approvals")
	approvals.Get("/:id",
		auth.RequireRole(domain.RoleCoordinator, domain.RoleAdmin), cfg.Approvals.GetApproval)
	approvals.Post("/:id/decision",
		auth.RequireRole(domain.RoleCoordinator), cfg.Approvals.Decide)

	protected.Get("/parts",
		auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Parts.Catalog)

	partsRequests := protected.Group("/parts/requests")
	partsRequests.Post("",
		auth.RequireRole(domain.RoleTechnician), cfg.Parts.RequestParts)
	partsRequests.Get("",
		auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Parts.ListRequests)
	partsRequests.Post("/:id/decision",
		auth.RequireRole(domain.RoleAdmin), cfg.Parts.DecideRequest)

	protected.Get("/inventory/central",
		auth.RequireRole(domain.RoleAdmin, domain.RoleCoordinator), cfg.Parts.CentralStock)
	protected.Get("/inventory/mine",
		auth.RequireRole(domain.RoleTechnician), cfg.Parts.TechnicianStock)
}
