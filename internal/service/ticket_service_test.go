package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

func TestCreateTicket(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ticket, err := f.tickets.CreateTicket(ctx, identity(f.requester), TicketCreateInput{
		Subject:     "VPN drops every hour",
		Description: "connection resets on the corporate VPN",
		CategoryID:  f.category.ID,
		PriorityID:  f.priority.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, ticket.ID)

	assert.Equal(t, f.requester.ID, ticket.UserID)
	assert.Equal(t, f.openStatus.ID, ticket.StatusID, "new tickets start in the default open status")
	assert.Nil(t, ticket.AssignedTo)
	assert.Nil(t, ticket.ClosedAt)

	entries := f.store.historyFor(ticket.ID)
	require.Len(t, entries, 1, "creation writes exactly one history entry")
	assert.Equal(t, domain.ActionCreated, entries[0].Action)
	assert.Equal(t, f.requester.ID, entries[0].UserID)
	assert.Nil(t, entries[0].FieldChanged)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input TicketCreateInput
		code  string
	}{
		{
			name: "subject too short",
			input: TicketCreateInput{
				Subject: "vpn", Description: "connection keeps dropping",
				CategoryID: f.category.ID, PriorityID: f.priority.ID,
			},
			code: "VALIDATION_FAILED",
		},
		{
			name: "description too short",
			input: TicketCreateInput{
				Subject: "VPN drops every hour", Description: "short",
				CategoryID: f.category.ID, PriorityID: f.priority.ID,
			},
			code: "VALIDATION_FAILED",
		},
		{
			name: "unknown category",
			input: TicketCreateInput{
				Subject: "VPN drops every hour", Description: "connection keeps dropping",
				CategoryID: 9999, PriorityID: f.priority.ID,
			},
			code: "INVALID_REFERENCE",
		},
		{
			name: "unknown priority",
			input: TicketCreateInput{
				Subject: "VPN drops every hour", Description: "connection keeps dropping",
				CategoryID: f.category.ID, PriorityID: 9999,
			},
			code: "INVALID_REFERENCE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tickets.CreateTicket(ctx, identity(f.requester), tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tt.code), "expected %s, got %v", tt.code, err)
		})
	}

	assert.Empty(t, f.store.history, "rejected creations leave no history")
}

func TestUpdateStatusManagesClosedAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)
	tech := identity(f.technician)

	updated, err := f.tickets.UpdateStatus(ctx, tech, ticket.ID, f.closed.ID)
	require.NoError(t, err)
	assert.Equal(t, f.closed.ID, updated.StatusID)
	require.NotNil(t, updated.ClosedAt, "entering a closed-type status stamps closed_at")
	firstClosedAt := *updated.ClosedAt

	// Moving between closed-type statuses keeps the original stamp.
	updated, err = f.tickets.UpdateStatus(ctx, tech, ticket.ID, f.closed.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, firstClosedAt, *updated.ClosedAt)

	updated, err = f.tickets.UpdateStatus(ctx, tech, ticket.ID, f.working.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt, "leaving closed-type clears closed_at")

	entries := f.store.historyFor(ticket.ID)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, domain.ActionUpdated, entry.Action)
		require.NotNil(t, entry.FieldChanged)
		assert.Equal(t, "status", *entry.FieldChanged)
	}
	require.NotNil(t, entries[2].OldValue)
	require.NotNil(t, entries[2].NewValue)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	_, err := f.tickets.UpdateStatus(context.Background(), identity(f.technician), ticket.ID, 9999)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_REFERENCE"))
	assert.Empty(t, f.store.historyFor(ticket.ID))
}

func TestUpdateStatusRequiresStaff(t *testing.T) {
	f := newFixture()
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	_, err := f.tickets.UpdateStatus(context.Background(), identity(f.requester), ticket.ID, f.working.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestUpdatePriority(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	low := f.store.addPriority("Low", 4)
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	updated, err := f.tickets.UpdatePriority(ctx, identity(f.admin), ticket.ID, low.ID)
	require.NoError(t, err)
	assert.Equal(t, low.ID, updated.PriorityID)

	entries := f.store.historyFor(ticket.ID)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].FieldChanged)
	assert.Equal(t, "priority", *entries[0].FieldChanged)
}

func TestAddCommentOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stranger := f.store.addUser(domain.RoleUser, true)
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	// A user commenting on someone else's ticket learns nothing about its
	// existence.
	_, err := f.tickets.AddComment(ctx, identity(stranger), ticket.ID, "mine too", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	// The internal flag is ignored for user-role callers.
	comment, err := f.tickets.AddComment(ctx, identity(f.requester), ticket.ID, "any update?", true)
	require.NoError(t, err)
	assert.False(t, comment.IsInternal)

	// Staff may post internal notes on any ticket.
	comment, err = f.tickets.AddComment(ctx, identity(f.technician), ticket.ID, "user called twice", true)
	require.NoError(t, err)
	assert.True(t, comment.IsInternal)

	assert.Empty(t, f.store.historyFor(ticket.ID), "comments never write history")
}

func TestGetTicketDetailVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stranger := f.store.addUser(domain.RoleUser, true)
	ticket := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	_, err := f.tickets.AddComment(ctx, identity(f.requester), ticket.ID, "please help", false)
	require.NoError(t, err)
	_, err = f.tickets.AddComment(ctx, identity(f.technician), ticket.ID, "known issue", true)
	require.NoError(t, err)

	detail, err := f.tickets.GetTicketDetail(ctx, identity(f.requester), ticket.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1, "internal comments are invisible to the requester")
	assert.False(t, detail.Comments[0].IsInternal)

	detail, err = f.tickets.GetTicketDetail(ctx, identity(f.technician), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 2)

	_, err = f.tickets.GetTicketDetail(ctx, identity(stranger), ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"), "foreign tickets look like missing tickets")
}

func TestListTicketsScoping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	other := f.store.addUser(domain.RoleUser, true)
	mine := f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)
	f.store.addTicket(other.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	tickets, err := f.tickets.ListTickets(ctx, identity(f.requester), TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 1, "user-role callers only see their own tickets")
	assert.Equal(t, mine.ID, tickets[0].ID)

	tickets, err = f.tickets.ListTickets(ctx, identity(f.technician), TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, tickets, 2, "staff see everything")

	tickets, err = f.tickets.ListTickets(ctx, identity(f.technician), TicketListFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestListHistoryOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ticket, err := f.tickets.CreateTicket(ctx, identity(f.requester), TicketCreateInput{
		Subject:     "monitor flickers constantly",
		Description: "external monitor flickers on the dock",
		CategoryID:  f.category.ID,
		PriorityID:  f.priority.ID,
	})
	require.NoError(t, err)

	_, err = f.tickets.UpdateStatus(ctx, identity(f.technician), ticket.ID, f.working.ID)
	require.NoError(t, err)
	_, err = f.assignments.Claim(ctx, identity(f.technician), ticket.ID)
	require.NoError(t, err)

	history, err := f.tickets.ListHistory(ctx, identity(f.requester), ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.ActionCreated, history[0].Action, "the created entry is always earliest")
	assert.Equal(t, domain.ActionUpdated, history[1].Action)
	assert.Equal(t, domain.ActionAssigned, history[2].Action)
}
