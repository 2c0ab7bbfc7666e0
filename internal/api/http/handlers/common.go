package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/service"
)

func actorFrom(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Actor{}, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return principal.Actor, nil
}

func parseDocument(c *fiber.Ctx) (domain.Document, error) {
	var payload domain.Document
	if err := c.BodyParser(&payload); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if payload == nil {
		payload = domain.Document{}
	}
	return payload, nil
}

func warnings(in []service.Warning) []dto.Warning {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.Warning, 0, len(in))
	for _, w := range in {
		out = append(out, dto.Warning{Code: w.Code, Message: w.Message})
	}
	return out
}

func respondResult(c *fiber.Ctx, status int, result *service.Result) error {
	return c.Status(status).JSON(dto.DataResponse{
		Data:     result.Document,
		Warnings: warnings(result.Warnings),
	})
}
