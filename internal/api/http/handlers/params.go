package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/auth"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// actorFromContext returns the service-layer identity or an unauthorized
// error when the auth middleware did not run.
func actorFromContext(c *fiber.Ctx) (domain.Identity, error) {
	actor, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

// idParam parses a positive int64 path parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id, nil
}

// idListQuery parses a comma-separated id list query parameter. Invalid
// entries fail the whole request rather than being silently dropped.
func idListQuery(c *fiber.Ctx, name string) ([]int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalIDQuery parses an optional positive int64 query parameter.
func optionalIDQuery(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return &id, nil
}

// pagination reads limit/offset with bounds applied.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ticketListFilter assembles the common ticket listing filter from query
// parameters. Role scoping happens in the service.
func ticketListFilter(c *fiber.Ctx) (service.TicketListFilter, error) {
	var filter service.TicketListFilter
	var err error

	if filter.StatusIDs, err = idListQuery(c, "status_id"); err != nil {
		return filter, err
	}
	if filter.PriorityIDs, err = idListQuery(c, "priority_id"); err != nil {
		return filter, err
	}
	if filter.CategoryIDs, err = idListQuery(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.AssignedTo, err = optionalIDQuery(c, "assigned_to"); err != nil {
		return filter, err
	}
	filter.Unassigned = c.QueryBool("unassigned", false)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	filter.Limit, filter.Offset = pagination(c)
	return filter, nil
}
