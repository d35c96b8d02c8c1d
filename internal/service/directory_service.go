package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

// DirectoryService manages the reference data tickets point at:
// categories (admin-managed) plus the read-mostly priority and status
// lookup tables.
type DirectoryService struct {
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	statuses   repository.StatusRepository
	users      repository.UserRepository
}

// DirectoryDependencies bundles repositories.
type DirectoryDependencies struct {
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	StatusRepo   repository.StatusRepository
	UserRepo     repository.UserRepository
}

// CategoryInput describes a category create/update payload.
type CategoryInput struct {
	Name        string
	Description string
	Icon        string
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		statuses:   deps.StatusRepo,
		users:      deps.UserRepo,
	}
}

// CreateCategory adds a category; admin only.
func (s *DirectoryService) CreateCategory(ctx context.Context, actor domain.Identity, input CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        strings.TrimSpace(input.Icon),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory edits a category; admin only.
func (s *DirectoryService) UpdateCategory(ctx context.Context, actor domain.Identity, id int64, input CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	category.Icon = strings.TrimSpace(input.Icon)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// DeleteCategory removes a category, refusing while any ticket still
// references it. The error carries the blocking count so the caller can
// render a friendly message.
func (s *DirectoryService) DeleteCategory(ctx context.Context, actor domain.Identity, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	count, err := s.categories.CountTickets(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot delete category: it is used by %d ticket(s)", count),
			map[string]any{"category_id": id, "ticket_count": count})
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListCategories returns all categories with their ticket counts.
func (s *DirectoryService) ListCategories(ctx context.Context, actor domain.Identity) ([]repository.CategoryWithCount, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListWithCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// ListPriorities returns priorities ordered by level.
func (s *DirectoryService) ListPriorities(ctx context.Context, actor domain.Identity) ([]domain.Priority, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	priorities, err := s.priorities.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return priorities, nil
}

// ListStatuses returns all statuses.
func (s *DirectoryService) ListStatuses(ctx context.Context, actor domain.Identity) ([]domain.Status, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return statuses, nil
}

// ListTechnicians returns the live assignment roster: active accounts with
// technician or admin role.
func (s *DirectoryService) ListTechnicians(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	technicians, err := s.users.ListTechnicians(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return technicians, nil
}
