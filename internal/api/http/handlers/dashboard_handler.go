package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/service"
)

// DashboardHandler serves the per-role dashboard counts.
type DashboardHandler struct {
	service *service.StatsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{service: statsService}
}

// Dashboard GET /dashboard. The projection depends on the caller's role:
// requesters see their own ticket counts, technicians their workload and
// admins the system totals.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		stats, err := h.service.AdminDashboard(c.UserContext(), actor)
		if err != nil {
			return err
		}
		recent := make([]dto.TicketSummary, 0, len(stats.RecentTickets))
		for i := range stats.RecentTickets {
			recent = append(recent, dto.NewTicketSummary(&stats.RecentTickets[i]))
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"total_tickets":  stats.TotalTickets,
			"open_tickets":   stats.OpenTickets,
			"end_users":      stats.EndUsers,
			"technicians":    stats.Technicians,
			"recent_tickets": recent,
		}})
	case domain.RoleTechnician:
		stats, err := h.service.TechnicianDashboard(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"assigned":       stats.Assigned,
			"open":           stats.Open,
			"in_progress":    stats.InProgress,
			"closed_in_week": stats.ClosedInWeek,
		}})
	default:
		stats, err := h.service.UserDashboard(c.UserContext(), actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"total":       stats.Total,
			"open":        stats.Open,
			"in_progress": stats.InProgress,
			"closed":      stats.Closed,
		}})
	}
}
