package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

const (
	subjectMinLen     = 5
	subjectMaxLen     = 200
	descriptionMinLen = 10
	historyViewLimit  = 20
)

// TicketService coordinates ticket lifecycle operations: creation, triage
// updates, comments and role-scoped reads. Every mutation appends exactly
// one history entry in the same transaction.
type TicketService struct {
	db         TxBeginner
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	statuses   repository.StatusRepository
	comments   repository.CommentRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	DB           TxBeginner
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	StatusRepo   repository.StatusRepository
	CommentRepo  repository.CommentRepository
	HistoryRepo  repository.HistoryRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	CategoryID  int64
	PriorityID  int64
}

// TicketListFilter describes listing parameters before role scoping.
type TicketListFilter struct {
	StatusIDs   []int64
	PriorityIDs []int64
	CategoryIDs []int64
	AssignedTo  *int64
	Unassigned  bool
	SearchTerm  *string
	Limit       int
	Offset      int
}

// TicketDetail is the role-scoped read projection for a detail view.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
	History  []domain.HistoryEntry
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		db:         deps.DB,
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		statuses:   deps.StatusRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket validates the payload, picks the default open status and
// inserts the ticket together with its single `created` history entry.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if len(subject) < subjectMinLen || len(subject) > subjectMaxLen {
		return nil, apperrors.NewValidationError("subject must be between 5 and 200 characters", map[string]any{"field": "subject"})
	}
	if len(description) < descriptionMinLen {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", map[string]any{"field": "description"})
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidReference("category", input.CategoryID)
		}
		return nil, apperrors.MapError(err)
	}
	if _, err := s.priorities.GetByID(ctx, input.PriorityID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidReference("priority", input.PriorityID)
		}
		return nil, apperrors.MapError(err)
	}

	openStatus, err := s.statuses.DefaultOpen(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(errors.New("no open-type status configured"))
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		UserID:      actor.UserID,
		CategoryID:  input.CategoryID,
		PriorityID:  input.PriorityID,
		StatusID:    openStatus.ID,
	}

	err = withinTx(ctx, s.db, func(tx pgx.Tx) error {
		tickets, history := s.txRepos(tx)
		if err := tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return history.Create(ctx, &domain.HistoryEntry{
			TicketID: ticket.ID,
			UserID:   actor.UserID,
			Action:   domain.ActionCreated,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			Subject:    ticket.Subject,
			CategoryID: ticket.CategoryID,
			PriorityID: ticket.PriorityID,
			StatusID:   ticket.StatusID,
		},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket to any status; the graph is flat and no
// transition is restricted. closed_at tracks closed-type membership.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Identity, ticketID, newStatusID int64) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	status, err := s.statuses.GetByID(ctx, newStatusID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidReference("status", newStatusID)
		}
		return nil, apperrors.MapError(err)
	}

	closedAt := ticket.ClosedAt
	if status.Type == domain.StatusTypeClosed {
		if closedAt == nil {
			now := time.Now()
			closedAt = &now
		}
	} else {
		closedAt = nil
	}

	oldStatusID := ticket.StatusID
	err = withinTx(ctx, s.db, func(tx pgx.Tx) error {
		tickets, history := s.txRepos(tx)
		if err := tickets.UpdateStatus(ctx, ticket.ID, status.ID, closedAt); err != nil {
			return err
		}
		return history.Create(ctx, &domain.HistoryEntry{
			TicketID:     ticket.ID,
			UserID:       actor.UserID,
			Action:       domain.ActionUpdated,
			FieldChanged: fieldName("status"),
			OldValue:     idValue(oldStatusID),
			NewValue:     idValue(status.ID),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.StatusID = status.ID
	ticket.ClosedAt = closedAt

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatusID: oldStatusID,
			NewStatusID: status.ID,
			NewType:     status.Type,
		},
	})
	return ticket, nil
}

// UpdatePriority changes the ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, actor domain.Identity, ticketID, newPriorityID int64) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	priority, err := s.priorities.GetByID(ctx, newPriorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidReference("priority", newPriorityID)
		}
		return nil, apperrors.MapError(err)
	}

	oldPriorityID := ticket.PriorityID
	err = withinTx(ctx, s.db, func(tx pgx.Tx) error {
		tickets, history := s.txRepos(tx)
		if err := tickets.UpdatePriority(ctx, ticket.ID, priority.ID); err != nil {
			return err
		}
		return history.Create(ctx, &domain.HistoryEntry{
			TicketID:     ticket.ID,
			UserID:       actor.UserID,
			Action:       domain.ActionUpdated,
			FieldChanged: fieldName("priority"),
			OldValue:     idValue(oldPriorityID),
			NewValue:     idValue(priority.ID),
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.PriorityID = priority.ID

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketPriorityChangedPayload{
			OldPriorityID: oldPriorityID,
			NewPriorityID: priority.ID,
		},
	})
	return ticket, nil
}

// AddComment appends a message to the ticket thread. User-role callers may
// only comment on their own tickets and their comments are always external,
// whatever the request asked for. Comments never produce history entries.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Identity, ticketID int64, content string, isInternal bool) (*domain.Comment, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() {
		if ticket.UserID != actor.UserID {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		isInternal = false
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     actor.UserID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// GetTicketDetail returns the ticket with its visible comments and the most
// recent history entries. User-role callers only see their own tickets and
// never internal comments.
func (s *TicketService) GetTicketDetail(ctx context.Context, actor domain.Identity, ticketID int64) (*TicketDetail, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && ticket.UserID != actor.UserID {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID, actor.Role.IsStaff())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListRecent(ctx, ticket.ID, historyViewLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, Comments: comments, History: history}, nil
}

// ListTickets returns a role-scoped, filtered, paginated listing. The
// ownership filter for user-role callers is applied here, never left to
// the transport layer.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Identity, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}

	repoFilter := repository.TicketFilter{
		StatusIDs:   filter.StatusIDs,
		PriorityIDs: filter.PriorityIDs,
		CategoryIDs: filter.CategoryIDs,
		SearchTerm:  filter.SearchTerm,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.Role.IsStaff() {
		repoFilter.AssignedTo = filter.AssignedTo
		repoFilter.Unassigned = filter.Unassigned
	} else {
		userID := actor.UserID
		repoFilter.UserID = &userID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns the full audit trail in creation order.
func (s *TicketService) ListHistory(ctx context.Context, actor domain.Identity, ticketID int64) ([]domain.HistoryEntry, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && ticket.UserID != actor.UserID {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) txRepos(tx pgx.Tx) (repository.TicketRepository, repository.HistoryRepository) {
	if tx == nil {
		return s.tickets, s.history
	}
	return s.tickets.WithTx(tx), s.history.WithTx(tx)
}
