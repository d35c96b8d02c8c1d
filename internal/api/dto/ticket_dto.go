package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload for filing a ticket.
type CreateTicketRequest struct {
	Subject     string `json:"subject" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"required,min=10"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	PriorityID  int64  `json:"priority_id" validate:"required,gt=0"`
}

// CreateCommentRequest payload for a thread message. IsInternal is only
// honored for technician/admin callers.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// AssignRequest payload; a null assigned_to unassigns.
type AssignRequest struct {
	AssignedTo *int64 `json:"assigned_to"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	StatusID int64 `json:"status_id" validate:"required,gt=0"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	PriorityID int64 `json:"priority_id" validate:"required,gt=0"`
}

// TicketSummary is the listing projection.
type TicketSummary struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	UserID     int64      `json:"user_id"`
	CategoryID int64      `json:"category_id"`
	PriorityID int64      `json:"priority_id"`
	StatusID   int64      `json:"status_id"`
	AssignedTo *int64     `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// CommentResponse is one thread message.
type CommentResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryEntryResponse is one audit record.
type HistoryEntryResponse struct {
	ID           int64                `json:"id"`
	UserID       int64                `json:"user_id"`
	Action       domain.HistoryAction `json:"action"`
	FieldChanged *string              `json:"field_changed,omitempty"`
	OldValue     *string              `json:"old_value,omitempty"`
	NewValue     *string              `json:"new_value,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// TicketDetailResponse is the detail projection with thread and recent
// history.
type TicketDetailResponse struct {
	TicketSummary
	Description string                 `json:"description"`
	Comments    []CommentResponse      `json:"comments"`
	History     []HistoryEntryResponse `json:"history"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:         ticket.ID,
		Subject:    ticket.Subject,
		UserID:     ticket.UserID,
		CategoryID: ticket.CategoryID,
		PriorityID: ticket.PriorityID,
		StatusID:   ticket.StatusID,
		AssignedTo: ticket.AssignedTo,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
		ClosedAt:   ticket.ClosedAt,
	}
}

// NewTicketDetail maps a detail projection.
func NewTicketDetail(ticket *domain.Ticket, comments []domain.Comment, history []domain.HistoryEntry) TicketDetailResponse {
	commentItems := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		commentItems = append(commentItems, CommentResponse{
			ID:         comment.ID,
			UserID:     comment.UserID,
			Content:    comment.Content,
			IsInternal: comment.IsInternal,
			CreatedAt:  comment.CreatedAt,
		})
	}
	historyItems := make([]HistoryEntryResponse, 0, len(history))
	for _, entry := range history {
		historyItems = append(historyItems, NewHistoryEntry(entry))
	}
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		Description:   ticket.Description,
		Comments:      commentItems,
		History:       historyItems,
	}
}

// NewHistoryEntry maps one audit record.
func NewHistoryEntry(entry domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Action:       entry.Action,
		FieldChanged: entry.FieldChanged,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		CreatedAt:    entry.CreatedAt,
	}
}
