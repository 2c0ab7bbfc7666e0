package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/persistence"
)

const readinessTimeout = 2 * time.Second

// dependency is an external backend probed by readiness. Unconfigured dependencies are
// replaced by in-memory implementations and never block readiness.
type dependency interface {
	Configured() bool
	Ping(ctx context.Context) error
}

type namedDependency struct {
	name string
	dep  dependency
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies []namedDependency
}

func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		dependencies: []namedDependency{
			{name: "postgres", dep: postgres},
			{name: "redis", dep: redis},
		},
	}
}

func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every configured dependency.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	statuses, ready := h.probe(ctx)
	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more backends are unreachable",
				"details": statuses,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "service": h.serviceName, "dependencies": statuses})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]string, bool) {
	statuses := make(map[string]string, len(h.dependencies))
	ready := true
	for _, d := range h.dependencies {
		switch {
		case !d.dep.Configured():
			statuses[d.name] = "in-memory"
		case d.dep.Ping(ctx) != nil:
			statuses[d.name] = "unreachable"
			ready = false
		default:
			statuses[d.name] = "ok"
		}
	}
	return statuses, ready
}
