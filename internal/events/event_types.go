package events

import (
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketUnassigned      EventType = "ticket_unassigned"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventCommentAdded          EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	TicketID  int64           `json:"ticket_id"`
	Actor     domain.Identity `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject    string `json:"subject"`
	CategoryID int64  `json:"category_id"`
	PriorityID int64  `json:"priority_id"`
	StatusID   int64  `json:"status_id"`
}

// TicketAssignedPayload payload. AssignedTo is nil on unassignment.
type TicketAssignedPayload struct {
	AssignedTo *int64 `json:"assigned_to,omitempty"`
	Previous   *int64 `json:"previous,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatusID int64             `json:"old_status_id"`
	NewStatusID int64             `json:"new_status_id"`
	NewType     domain.StatusType `json:"new_type"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriorityID int64 `json:"old_priority_id"`
	NewPriorityID int64 `json:"new_priority_id"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  int64 `json:"comment_id"`
	IsInternal bool  `json:"is_internal"`
}
