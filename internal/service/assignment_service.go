package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

// AssignmentService handles ticket assignment: direct assignment,
// reassignment, unassignment and technician self-claim. Each mutation
// appends exactly one history entry in the same transaction.
type AssignmentService struct {
	db         TxBeginner
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	DB          TxBeginner
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.HistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		db:         deps.DB,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign sets the ticket assignee. A nil target unassigns. A non-nil
// target must be an active technician or admin; that is validated at write
// time even though the caller picked from the roster. Assigning the
// current assignee again still logs a history entry.
func (s *AssignmentService) Assign(ctx context.Context, actor domain.Identity, ticketID int64, target *int64) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	if target != nil {
		assignee, err := s.users.GetByID(ctx, *target)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidReference("user", *target)
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active || !assignee.Role.IsStaff() {
			return nil, apperrors.NewValidationError("assignee must be an active technician or admin",
				map[string]any{"user_id": *target})
		}
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldAssignee := ticket.AssignedTo
	action := domain.ActionAssigned
	if target == nil {
		action = domain.ActionUnassigned
	}

	err = withinTx(ctx, s.db, func(tx pgx.Tx) error {
		tickets, history := s.txRepos(tx)
		if err := tickets.UpdateAssignee(ctx, ticket.ID, target); err != nil {
			return err
		}
		return history.Create(ctx, &domain.HistoryEntry{
			TicketID: ticket.ID,
			UserID:   actor.UserID,
			Action:   action,
			OldValue: assigneeValue(oldAssignee),
			NewValue: assigneeValue(target),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.AssignedTo = target

	eventType := events.EventTicketAssigned
	if target == nil {
		eventType = events.EventTicketUnassigned
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketAssignedPayload{
			AssignedTo: target,
			Previous:   oldAssignee,
		},
	})
	return ticket, nil
}

// Reassign is Assign under another name; the distinction exists only for
// the caller's framing of the action.
func (s *AssignmentService) Reassign(ctx context.Context, actor domain.Identity, ticketID int64, target *int64) (*domain.Ticket, error) {
	return s.Assign(ctx, actor, ticketID, target)
}

// Unassign clears the assignee.
func (s *AssignmentService) Unassign(ctx context.Context, actor domain.Identity, ticketID int64) (*domain.Ticket, error) {
	return s.Assign(ctx, actor, ticketID, nil)
}

// Claim self-assigns an unassigned ticket. The check and the write are one
// conditional update; zero rows affected means another technician got there
// first and surfaces as a conflict with no state change.
func (s *AssignmentService) Claim(ctx context.Context, actor domain.Identity, ticketID int64) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	err := withinTx(ctx, s.db, func(tx pgx.Tx) error {
		tickets, history := s.txRepos(tx)
		claimed, err := tickets.ClaimUnassigned(ctx, ticketID, actor.UserID)
		if err != nil {
			return err
		}
		if !claimed {
			if _, err := tickets.GetByID(ctx, ticketID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
				}
				return err
			}
			return apperrors.NewConflict("ticket is already assigned", map[string]any{"ticket_id": ticketID})
		}
		return history.Create(ctx, &domain.HistoryEntry{
			TicketID: ticketID,
			UserID:   actor.UserID,
			Action:   domain.ActionAssigned,
			NewValue: idValue(actor.UserID),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	assignee := actor.UserID
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    actor,
		Payload: events.TicketAssignedPayload{
			AssignedTo: &assignee,
		},
	})
	return ticket, nil
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) txRepos(tx pgx.Tx) (repository.TicketRepository, repository.HistoryRepository) {
	if tx == nil {
		return s.tickets, s.history
	}
	return s.tickets.WithTx(tx), s.history.WithTx(tx)
}
