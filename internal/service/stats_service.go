package service

import (
	"context"
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

// StatsService produces the aggregate counts dashboards render. These are
// read projections over the ticket store; no engine involvement.
type StatsService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, users repository.UserRepository) *StatsService {
	return &StatsService{tickets: tickets, users: users}
}

// UserStats summarizes a requester's own tickets.
type UserStats struct {
	Total      int64
	Open       int64
	InProgress int64
	Closed     int64
}

// TechnicianStats summarizes a technician's assigned workload.
type TechnicianStats struct {
	Assigned     int64
	Open         int64
	InProgress   int64
	ClosedInWeek int64
}

// AdminStats summarizes the whole system.
type AdminStats struct {
	TotalTickets  int64
	OpenTickets   int64
	EndUsers      int64
	Technicians   int64
	RecentTickets []domain.Ticket
}

// recentTicketsLimit caps the activity list on the admin dashboard.
const recentTicketsLimit = 5

// UserDashboard returns counts scoped to the caller's own tickets.
func (s *StatsService) UserDashboard(ctx context.Context, actor domain.Identity) (*UserStats, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	userID := actor.UserID
	base := repository.TicketFilter{UserID: &userID}

	stats := &UserStats{}
	var err error
	if stats.Total, err = s.tickets.CountWithFilter(ctx, base); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.Open, err = s.tickets.CountByStatusType(ctx, base, domain.StatusTypeOpen); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.InProgress, err = s.tickets.CountByStatusType(ctx, base, domain.StatusTypeInProgress); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.Closed, err = s.tickets.CountByStatusType(ctx, base, domain.StatusTypeClosed); err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

// TechnicianDashboard returns counts for the caller's assigned tickets,
// including closures within the last week.
func (s *StatsService) TechnicianDashboard(ctx context.Context, actor domain.Identity) (*TechnicianStats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	techID := actor.UserID
	base := repository.TicketFilter{AssignedTo: &techID}

	stats := &TechnicianStats{}
	var err error
	if stats.Assigned, err = s.tickets.CountWithFilter(ctx, base); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.Open, err = s.tickets.CountByStatusType(ctx, base, domain.StatusTypeOpen); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.InProgress, err = s.tickets.CountByStatusType(ctx, base, domain.StatusTypeInProgress); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.ClosedInWeek, err = s.tickets.CountClosedSince(ctx, techID, time.Now().AddDate(0, 0, -7)); err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

// AdminDashboard returns system-wide counts.
func (s *StatsService) AdminDashboard(ctx context.Context, actor domain.Identity) (*AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	stats := &AdminStats{}
	var err error
	if stats.TotalTickets, err = s.tickets.CountWithFilter(ctx, repository.TicketFilter{}); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.OpenTickets, err = s.tickets.CountByStatusType(ctx, repository.TicketFilter{}, domain.StatusTypeOpen); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.EndUsers, err = s.users.CountByRoles(ctx, domain.RoleUser); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.Technicians, err = s.users.CountByRoles(ctx, domain.RoleTechnician, domain.RoleAdmin); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats.RecentTickets, err = s.tickets.ListWithFilter(ctx, repository.TicketFilter{Limit: recentTicketsLimit}); err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}
