package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "gamehub/internal/errors"
	"gamehub/internal/model"
	"gamehub/internal/repository"
)

// UserService exposes admin user management.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateStatus(ctx context.Context, id uint, status model.AccountStatus) (*model.User, error)
	UpdateRole(ctx context.Context, id uint, role model.Role) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService. Reads are not cached: a status change
// must be visible to the next session check.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

// UpdateStatus moves an account to another lifecycle state. Suspending or
// deactivating an account ends its open sessions at their next request.
func (s *userService) UpdateStatus(ctx context.Context, id uint, status model.AccountStatus) (*model.User, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapNotFound(err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id uint, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, mapNotFound(err)
	}
	return s.GetUser(ctx, id)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	return err
}
