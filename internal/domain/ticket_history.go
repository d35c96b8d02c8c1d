package domain

import "time"

// HistoryAction captures what kind of mutation a history entry records.
type HistoryAction string

const (
	ActionCreated    HistoryAction = "created"
	ActionAssigned   HistoryAction = "assigned"
	ActionUnassigned HistoryAction = "unassigned"
	ActionReassigned HistoryAction = "reassigned"
	ActionUpdated    HistoryAction = "updated"
)

// HistoryEntry is an immutable audit record of one ticket mutation.
// Entries are only ever inserted, one per mutation.
type HistoryEntry struct {
	ID           int64
	TicketID     int64
	UserID       int64
	Action       HistoryAction
	FieldChanged *string
	OldValue     *string
	NewValue     *string
	CreatedAt    time.Time
}
