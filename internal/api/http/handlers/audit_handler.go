package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	"github.com/spec-kit/hr-service/internal/service"
)

// AuditHandler exposes the read-only audit log.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// List handles GET /audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		Kind:    domain.Kind(c.Query("entityKind")),
		ID:      c.Query("entityId"),
		ActorID: c.Query("actor"),
		Action:  domain.AuditAction(c.Query("action")),
		Limit:   c.QueryInt(dto.QueryLimit, 0),
		Offset:  c.QueryInt(dto.QueryOffset, 0),
	}
	records, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse{
		Data:    records,
		Results: len(records),
		Total:   len(records),
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// Get handles GET /audit/:id.
func (h *AuditHandler) Get(c *fiber.Ctx) error {
	entry, err := h.audit.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse{Data: entry})
}

// Reject answers every write to the audit log.
func (h *AuditHandler) Reject(c *fiber.Ctx) error {
	return domain.Forbidden("audit records are immutable")
}
