package domain

import "time"

// Ticket is the aggregate for reported work. UserID is the creator and is
// immutable after creation; AssignedTo, when set, references an active
// technician or admin.
type Ticket struct {
	ID          int64
	Subject     string
	Description string
	UserID      int64
	CategoryID  int64
	PriorityID  int64
	StatusID    int64
	AssignedTo  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// Comment is a message on a ticket thread. Internal comments are visible
// only to technicians and admins.
type Comment struct {
	ID         int64
	TicketID   int64
	UserID     int64
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
