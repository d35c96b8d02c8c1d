package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=50"`
}

// CategoryResponse is a category with its ticket count.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	TicketCount int64     `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// PriorityResponse is one priority row.
type PriorityResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Color string `json:"color"`
}

// StatusResponse is one status row.
type StatusResponse struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Type  domain.StatusType `json:"type"`
	Color string            `json:"color"`
}

// NewCategoryResponse maps a category with count.
func NewCategoryResponse(item repository.CategoryWithCount) CategoryResponse {
	return CategoryResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Icon:        item.Icon,
		TicketCount: item.TicketCount,
		CreatedAt:   item.CreatedAt,
	}
}

// NewPriorityResponse maps a priority.
func NewPriorityResponse(priority domain.Priority) PriorityResponse {
	return PriorityResponse{
		ID:    priority.ID,
		Name:  priority.Name,
		Level: priority.Level,
		Color: priority.Color,
	}
}

// NewStatusResponse maps a status.
func NewStatusResponse(status domain.Status) StatusResponse {
	return StatusResponse{
		ID:    status.ID,
		Name:  status.Name,
		Type:  status.Type,
		Color: status.Color,
	}
}
