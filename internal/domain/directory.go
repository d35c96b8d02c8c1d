package domain

import "time"

// Category groups tickets by subject area.
type Category struct {
	ID          int64
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
}

// Priority orders tickets by urgency; lower level sorts first.
type Priority struct {
	ID    int64
	Name  string
	Level int
	Color string
}

// StatusType is the coarse bucket logic branches on; the status name is a
// display label only.
type StatusType string

const (
	StatusTypeOpen       StatusType = "open"
	StatusTypeInProgress StatusType = "in_progress"
	StatusTypeClosed     StatusType = "closed"
)

// Valid reports whether the type is one of the known buckets.
func (t StatusType) Valid() bool {
	return t == StatusTypeOpen || t == StatusTypeInProgress || t == StatusTypeClosed
}

// Status is a workflow state. Multiple statuses may share a type.
type Status struct {
	ID    int64
	Name  string
	Type  StatusType
	Color string
}
