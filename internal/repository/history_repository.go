package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// HistoryRepository stores the append-only audit trail. Entries are only
// ever inserted; there is no update or delete path.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	// ListByTicket returns entries in creation order with the id as a
	// stable tie-break.
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
	// ListRecent returns the newest entries first, capped at limit, for
	// the activity feed on detail views.
	ListRecent(ctx context.Context, ticketID int64, limit int) ([]domain.HistoryEntry, error)
	WithTx(tx pgx.Tx) HistoryRepository
}

type historyRepository struct {
	db DBTX
}

// NewHistoryRepository builds the repository.
func NewHistoryRepository(db DBTX) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx pgx.Tx) HistoryRepository {
	return &historyRepository{db: tx}
}

const historyColumns = `id, ticket_id, user_id, action, field_changed, old_value, new_value, created_at`

func (r *historyRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, user_id, action, field_changed, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.UserID,
		entry.Action,
		entry.FieldChanged,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT ` + historyColumns + `
        FROM ticket_history WHERE ticket_id=$1
        ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *historyRepository) ListRecent(ctx context.Context, ticketID int64, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT ` + historyColumns + `
        FROM ticket_history WHERE ticket_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Action,
			&entry.FieldChanged,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
