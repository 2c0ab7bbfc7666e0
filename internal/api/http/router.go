package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/hr-service/internal/api/http/handlers"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.ResourceHandler
	Profiles       *handlers.ResourceHandler
	Departments    *handlers.ResourceHandler
	Payrolls       *handlers.ResourceHandler
	Employees      *handlers.EmployeesHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")
	v1.Post("/auth/login", cfg.Auth.Login)

	protected := v1.Group("", cfg.AuthMiddleware.Handle)
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	adminOrHR := auth.RequireRole(domain.RoleAdmin, domain.RoleHR)

	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password", cfg.Auth.ChangePassword)

	users := protected.Group("/users", adminOnly)
	users.Get("/", cfg.Users.List)
	users.Get("/unassigned", cfg.Employees.Unassigned)
	users.Post("/", cfg.Auth.Signup)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	employees := protected.Group("/employees")
	employees.Get("/me", cfg.Employees.MyProfile)
	employees.Get("/", adminOrHR, cfg.Profiles.List)
	employees.Post("/", adminOrHR, cfg.Profiles.Create)
	employees.Get("/:employeeId/payrolls", adminOrHR, cfg.Payrolls.ListScoped("employeeId", domain.FieldEmployeeProfileID))
	employees.Post("/:employeeId/payrolls", adminOrHR, cfg.Payrolls.CreateScoped("employeeId", domain.FieldEmployeeProfileID))
	employees.Get("/:id", adminOrHR, cfg.Profiles.Get)
	employees.Patch("/:id", adminOrHR, cfg.Profiles.Update)
	employees.Delete("/:id", adminOrHR, cfg.Profiles.Delete)

	departments := protected.Group("/departments")
	departments.Get("/my-team", cfg.Employees.MyTeam)
	departments.Get("/", adminOrHR, cfg.Departments.List)
	departments.Post("/", adminOrHR, cfg.Departments.Create)
	departments.Get("/:id", adminOrHR, cfg.Departments.Get)
	departments.Patch("/:id", adminOrHR, cfg.Departments.Update)
	departments.Delete("/:id", adminOrHR, cfg.Departments.Delete)

	payrolls := protected.Group("/payrolls", adminOrHR)
	payrolls.Get("/", cfg.Payrolls.List)
	payrolls.Post("/", cfg.Payrolls.Create)
	payrolls.Get("/:id", cfg.Payrolls.Get)
	payrolls.Patch("/:id", cfg.Payrolls.Update)
	payrolls.Delete("/:id", cfg.Payrolls.Delete)

	auditLog := protected.Group("/audit", adminOnly)
	auditLog.Get("/", cfg.Audit.List)
	auditLog.Get("/:id", cfg.Audit.Get)
	auditLog.Post("/", cfg.Audit.Reject)
	auditLog.Post("/*", cfg.Audit.Reject)
	auditLog.Put("/*", cfg.Audit.Reject)
	auditLog.Patch("/*", cfg.Audit.Reject)
	auditLog.Delete("/*", cfg.Audit.Reject)

	protected.Get("/stats", adminOrHR, cfg.Employees.Stats)
}
