package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/auth"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// TokenRevoker invalidates outstanding tokens for an account. Implemented
// by the redis-backed revocation store in the auth package.
type TokenRevoker interface {
	RevokeUser(ctx context.Context, userID int64) error
}

// UserService covers admin-side account lifecycle: create, update,
// deactivate and delete, with the self-delete guard.
type UserService struct {
	users      repository.UserRepository
	revoker    TokenRevoker
	bcryptCost int
}

// UserDependencies bundles collaborators.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Revoker    TokenRevoker
	BcryptCost int
}

// UserCreateInput describes an account creation payload.
type UserCreateInput struct {
	Username  string
	Email     string
	Password  string
	Role      domain.Role
	FirstName string
	LastName  string
}

// UserUpdateInput describes an account update payload.
type UserUpdateInput struct {
	Username  string
	Email     string
	Role      domain.Role
	FirstName string
	LastName  string
	Active    bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		revoker:    deps.Revoker,
		bcryptCost: deps.BcryptCost,
	}
}

// CreateUser adds an account; admin only.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Identity, input UserCreateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateAccountFields(input.Username, input.Email, input.Role); err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", map[string]any{"field": "password"})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser edits an account; admin only. Deactivation revokes the
// account's outstanding tokens.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Identity, id int64, input UserUpdateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateAccountFields(input.Username, input.Email, input.Role); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	wasActive := user.Active
	user.Username = strings.TrimSpace(input.Username)
	user.Email = strings.TrimSpace(input.Email)
	user.Role = input.Role
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Active = input.Active

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	if wasActive && !user.Active && s.revoker != nil {
		_ = s.revoker.RevokeUser(ctx, user.ID)
	}
	return user, nil
}

// DeleteUser removes an account; admin only. An admin cannot delete their
// own account.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Identity, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperrors.NewConflict("cannot delete your own account", map[string]any{"user_id": id})
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	if s.revoker != nil {
		_ = s.revoker.RevokeUser(ctx, id)
	}
	return nil
}

// GetUser fetches one account; admin only.
func (s *UserService) GetUser(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.getUser(ctx, id)
}

// ListUsers returns accounts filtered by role and search text; admin only.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Identity, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func (s *UserService) getUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func validateAccountFields(username, email string, role domain.Role) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return apperrors.NewValidationError(
			"username must be 3-50 characters of letters, digits, underscore or hyphen",
			map[string]any{"field": "username"})
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError("valid email required", map[string]any{"field": "email"})
	}
	if !role.Valid() {
		return apperrors.NewValidationError("role must be user, technician or admin", map[string]any{"field": "role"})
	}
	return nil
}
