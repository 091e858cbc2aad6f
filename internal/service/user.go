package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/enerdesk/backoffice/internal/data"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users  CredentialStore
	Logger *slog.Logger
}

// UserService manages user accounts. Unlike the schema-described resources,
// accounts carry password hashes and the last-active-admin invariant, so
// they get a dedicated service instead of the generic path.
type UserService struct {
	users  CredentialStore
	logger *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: opts.Users, logger: logger}
}

// Create validates and stores a new account.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     req.NormalizedUsername(),
		PasswordHash: string(hash),
		Role:         domainauth.Role(req.Role),
		Status:       model.UserActive,
		Department:   req.Department,
	}
	if createErr := s.users.Create(ctx, user); createErr != nil {
		return nil, createErr
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID, "username", user.Username, "role", string(user.Role))
	return user, nil
}

// Get fetches one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns accounts matching the options plus the unpaginated total.
func (s *UserService) List(ctx context.Context, opts data.UserListOptions) ([]*model.User, int, error) {
	return s.users.List(ctx, opts)
}

// Update applies a partial update. Demoting or deactivating the last active
// admin is refused, so the system can never lock itself out of
// administration.
func (s *UserService) Update(ctx context.Context, req *model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.users.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if losesAdminAccess(current, req) {
		others, countErr := s.users.CountActiveAdmins(ctx, current.ID)
		if countErr != nil {
			return nil, countErr
		}
		if others == 0 {
			return nil, apperrors.BusinessState("Cannot remove the last active admin.")
		}
	}

	if updateErr := s.users.Update(ctx, req); updateErr != nil {
		return nil, updateErr
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", req.ID)
	return s.users.GetByID(ctx, req.ID)
}

// losesAdminAccess reports whether the update would leave the account
// without an active admin role.
func losesAdminAccess(current *model.User, req *model.UpdateUserRequest) bool {
	if current.Role != domainauth.RoleAdmin || current.Status != model.UserActive {
		return false
	}
	if req.Role != nil && domainauth.Role(*req.Role) != domainauth.RoleAdmin {
		return true
	}
	if req.Status != nil && model.UserStatus(*req.Status) != model.UserActive {
		return true
	}
	return false
}

// ResetPassword validates and stores a new password hash for the account.
func (s *UserService) ResetPassword(ctx context.Context, id, password string) error {
	if err := model.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if updateErr := s.users.UpdatePassword(ctx, id, string(hash)); updateErr != nil {
		return updateErr
	}

	s.logger.InfoContext(ctx, "user password reset", "user_id", id)
	return nil
}
