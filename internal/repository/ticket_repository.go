package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters. A nil field means "no
// constraint"; Unassigned selects tickets with no assignee regardless of
// AssignedTo.
type TicketFilter struct {
	UserID      *int64
	AssignedTo  *int64
	Unassigned  bool
	StatusIDs   []int64
	PriorityIDs []int64
	CategoryIDs []int64
	SearchTerm  *string
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateAssignee(ctx context.Context, id int64, assignedTo *int64) error
	// ClaimUnassigned performs the conditional self-assignment update.
	// It reports false when the ticket was already assigned (or missing);
	// zero rows affected is the conflict signal.
	ClaimUnassigned(ctx context.Context, id, technicianID int64) (bool, error)
	UpdateStatus(ctx context.Context, id, statusID int64, closedAt *time.Time) error
	UpdatePriority(ctx context.Context, id, priorityID int64) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error)
	CountByStatusType(ctx context.Context, filter TicketFilter, statusType domain.StatusType) (int64, error)
	CountClosedSince(ctx context.Context, technicianID int64, since time.Time) (int64, error)
	WithTx(tx pgx.Tx) TicketRepository
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) WithTx(tx pgx.Tx) TicketRepository {
	return &ticketRepository{db: tx}
}

const ticketColumns = `id, subject, description, user_id, category_id, priority_id, status_id, assigned_to, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, user_id, category_id, priority_id, status_id, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.UserID,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.UserID,
		&ticket.CategoryID,
		&ticket.PriorityID,
		&ticket.StatusID,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id int64, assignedTo *int64) error {
	const query = `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, assignedTo, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ClaimUnassigned(ctx context.Context, id, technicianID int64) (bool, error) {
	const query = `
        UPDATE tickets SET assigned_to=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_to IS NULL`
	cmd, err := r.db.Exec(ctx, query, technicianID, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id, statusID int64, closedAt *time.Time) error {
	const query = `UPDATE tickets SET status_id=$1, closed_at=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, statusID, closedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id, priorityID int64) error {
	const query = `UPDATE tickets SET priority_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, priorityID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := buildTicketClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatusType joins the statuses table so dashboards can bucket by
// the coarse status type rather than individual statuses.
func (r *ticketRepository) CountByStatusType(ctx context.Context, filter TicketFilter, statusType domain.StatusType) (int64, error) {
	clauses, args := buildTicketClauses(filter)
	for i := range clauses {
		clauses[i] = qualifyTicketClause(clauses[i])
	}
	args = append(args, statusType)
	clauses = append(clauses, fmt.Sprintf("s.type=$%d", len(args)))

	query := fmt.Sprintf(`
        SELECT COUNT(*) FROM tickets t
        JOIN statuses s ON t.status_id = s.id
        WHERE %s`, strings.Join(clauses, " AND "))
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) CountClosedSince(ctx context.Context, technicianID int64, since time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets t
        JOIN statuses s ON t.status_id = s.id
        WHERE t.assigned_to=$1 AND s.type='closed' AND t.closed_at >= $2`
	var count int64
	if err := r.db.QueryRow(ctx, query, technicianID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	} else if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.StatusIDs) > 0 {
		clauses = append(clauses, inClause("status_id", filter.StatusIDs, &args))
	}
	if len(filter.PriorityIDs) > 0 {
		clauses = append(clauses, inClause("priority_id", filter.PriorityIDs, &args))
	}
	if len(filter.CategoryIDs) > 0 {
		clauses = append(clauses, inClause("category_id", filter.CategoryIDs, &args))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	return clauses, args
}

func inClause(column string, ids []int64, args *[]any) string {
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		*args = append(*args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

// qualifyTicketClause prefixes bare ticket columns with the alias used in
// joined count queries.
func qualifyTicketClause(clause string) string {
	for _, column := range []string{"user_id", "assigned_to", "status_id", "priority_id", "category_id", "subject", "description"} {
		clause = strings.ReplaceAll(clause, column, "t."+column)
	}
	return clause
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Description,
			&ticket.UserID,
			&ticket.CategoryID,
			&ticket.PriorityID,
			&ticket.StatusID,
			&ticket.AssignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
