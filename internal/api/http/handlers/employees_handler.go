package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/service"
)

// EmployeesHandler exposes self-service employee views.
type EmployeesHandler struct {
	employees *service.EmployeeService
	users     *service.UserService
	stats     *service.StatsService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService, users *service.UserService, stats *service.StatsService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees, users: users, stats: stats}
}

// MyProfile handles GET /employees/me.
func (h *EmployeesHandler) MyProfile(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.employees.MyProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse{Data: profile})
}

// MyTeam handles GET /departments/my-team.
func (h *EmployeesHandler) MyTeam(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	team, err := h.employees.MyTeam(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse{Data: team, Results: len(team), Total: len(team)})
}

// Unassigned handles GET /users/unassigned.
func (h *EmployeesHandler) Unassigned(c *fiber.Ctx) error {
	users, err := h.users.Unassigned(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse{Data: users, Results: len(users), Total: len(users)})
}

// Stats handles GET /stats.
func (h *EmployeesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse{Data: stats})
}
