package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	"github.com/spec-kit/hr-service/internal/service"
)

// ResourceHandler exposes the audited CRUD operations of one entity kind.
type ResourceHandler struct {
	kind      domain.Kind
	resources *service.ResourceService
}

// NewResourceHandler constructs handler.
func NewResourceHandler(kind domain.Kind, resources *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{kind: kind, resources: resources}
}

// List handles GET on the collection.
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	return h.list(c, nil)
}

// ListScoped lists documents whose field equals the route parameter param.
func (h *ResourceHandler) ListScoped(param, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.list(c, repository.Filter{field: c.Params(param)})
	}
}

func (h *ResourceHandler) list(c *fiber.Ctx, scope repository.Filter) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	query, err := dto.ParseListQuery(h.kind, c.Queries())
	if err != nil {
		return err
	}

	filter := repository.Filter(query.Filter)
	for k, v := range scope {
		filter[k] = v
	}
	sort := make([]repository.SortField, 0, len(query.Sort))
	for _, s := range query.Sort {
		sort = append(sort, repository.SortField{Field: s.Field, Desc: s.Desc})
	}

	result, err := h.resources.List(c.UserContext(), actor, h.kind, service.ListOptions{
		Filter:          filter,
		Sort:            sort,
		Limit:           query.Limit,
		Offset:          query.Offset,
		Fields:          query.Fields,
		IncludeInactive: query.IncludeInactive,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse{
		Data:    result.Documents,
		Results: len(result.Documents),
		Total:   result.Total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
}

// Get handles GET /:id.
func (h *ResourceHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	includeInactive := c.QueryBool(dto.QueryIncludeInactive, false)
	doc, err := h.resources.Get(c.UserContext(), actor, h.kind, c.Params("id"), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse{Data: doc})
}

// Create handles POST on the collection.
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	return h.create(c, "", "")
}

// CreateScoped creates a document whose field defaults to the route parameter param.
func (h *ResourceHandler) CreateScoped(param, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.create(c, param, field)
	}
}

func (h *ResourceHandler) create(c *fiber.Ctx, param, field string) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	payload, err := parseDocument(c)
	if err != nil {
		return err
	}
	if field != "" {
		if _, ok := payload[field]; !ok {
			payload[field] = c.Params(param)
		}
	}

	result, err := h.resources.Create(c.UserContext(), actor, h.kind, payload)
	if err != nil {
		return err
	}
	return respondResult(c, http.StatusCreated, result)
}

// Update handles PATCH /:id.
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	payload, err := parseDocument(c)
	if err != nil {
		return err
	}
	result, err := h.resources.Update(c.UserContext(), actor, h.kind, c.Params("id"), payload)
	if err != nil {
		return err
	}
	return respondResult(c, http.StatusOK, result)
}

// Delete handles DELETE /:id.
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	result, err := h.resources.Delete(c.UserContext(), actor, h.kind, c.Params("id"))
	if err != nil {
		return err
	}
	return respondResult(c, http.StatusOK, result)
}
