package repository

import (
	"context"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

// PriorityRepository reads the priority lookup table.
type PriorityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
}

// StatusRepository reads the status lookup table.
type StatusRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
	// DefaultOpen returns the status new tickets start in: the lowest-id
	// row of type open.
	DefaultOpen(ctx context.Context) (*domain.Status, error)
}

type priorityRepository struct {
	db DBTX
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(db DBTX) PriorityRepository {
	return &priorityRepository{db: db}
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	const query = `SELECT id, name, level, color FROM priorities WHERE id=$1`
	var priority domain.Priority
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&priority.ID,
		&priority.Name,
		&priority.Level,
		&priority.Color,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `SELECT id, name, level, color FROM priorities ORDER BY level`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name, &priority.Level, &priority.Color); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

type statusRepository struct {
	db DBTX
}

// NewStatusRepository builds the repository.
func NewStatusRepository(db DBTX) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	const query = `SELECT id, name, type, color FROM statuses WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *statusRepository) DefaultOpen(ctx context.Context) (*domain.Status, error) {
	const query = `SELECT id, name, type, color FROM statuses WHERE type='open' ORDER BY id LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *statusRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Status, error) {
	var status domain.Status
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&status.ID,
		&status.Name,
		&status.Type,
		&status.Color,
	); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	const query = `SELECT id, name, type, color FROM statuses ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(&status.ID, &status.Name, &status.Type, &status.Color); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}
