package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

func newStatsFixture() (*fixture, *StatsService) {
	f := newFixture()
	svc := NewStatsService(&fakeTicketRepo{store: f.store}, &fakeUserRepo{store: f.store})
	return f, svc
}

func TestUserDashboard(t *testing.T) {
	f, svc := newStatsFixture()
	other := f.store.addUser(domain.RoleUser, true)

	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.working.ID)
	closedTicket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.closed.ID)
	now := time.Now()
	closedTicket.ClosedAt = &now
	f.store.addTicket(other.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	stats, err := svc.UserDashboard(context.Background(), identity(f.requester))
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total, "only the caller's tickets count")
	assert.EqualValues(t, 1, stats.Open)
	assert.EqualValues(t, 1, stats.InProgress)
	assert.EqualValues(t, 1, stats.Closed)
}

func TestTechnicianDashboard(t *testing.T) {
	f, svc := newStatsFixture()

	assigned := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.working.ID)
	assigned.AssignedTo = &f.technician.ID
	recent := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.closed.ID)
	recent.AssignedTo = &f.technician.ID
	now := time.Now()
	recent.ClosedAt = &now
	old := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.closed.ID)
	old.AssignedTo = &f.technician.ID
	lastMonth := now.AddDate(0, -1, 0)
	old.ClosedAt = &lastMonth
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID) // unassigned

	stats, err := svc.TechnicianDashboard(context.Background(), identity(f.technician))
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Assigned)
	assert.EqualValues(t, 1, stats.InProgress)
	assert.EqualValues(t, 1, stats.ClosedInWeek, "closures older than a week drop out")

	_, err = svc.TechnicianDashboard(context.Background(), identity(f.requester))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAdminDashboard(t *testing.T) {
	f, svc := newStatsFixture()
	f.store.addUser(domain.RoleUser, true)
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.closed.ID)

	stats, err := svc.AdminDashboard(context.Background(), identity(f.admin))
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalTickets)
	assert.EqualValues(t, 1, stats.OpenTickets)
	assert.EqualValues(t, 2, stats.EndUsers)
	assert.EqualValues(t, 2, stats.Technicians, "technicians and admins together staff the desk")
	require.Len(t, stats.RecentTickets, 2)
	assert.True(t, stats.RecentTickets[0].ID > stats.RecentTickets[1].ID, "newest first")

	_, err = svc.AdminDashboard(context.Background(), identity(f.technician))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
