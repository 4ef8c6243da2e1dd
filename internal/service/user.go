package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/boulevard/bicycles/internal/domain"
)

// UserService handles account administration.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Block deactivates a user. Admins cannot block themselves.
func (s *UserService) Block(ctx context.Context, admin domain.Principal, id string) (*domain.User, error) {
	return s.setActive(ctx, admin, id, false)
}

// Unblock reactivates a user.
func (s *UserService) Unblock(ctx context.Context, admin domain.Principal, id string) (*domain.User, error) {
	return s.setActive(ctx, admin, id, true)
}

func (s *UserService) setActive(ctx context.Context, admin domain.Principal, id string, active bool) (*domain.User, error) {
	path := "deactivate_user"
	if active {
		path = "activate_user"
	}

	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	if admin.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("You do not have permission to change this user!", path)
	}

	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("No user found with ID %s!", id), id, "user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.Email == admin.Email {
		return nil, domain.Conflict("CannotDeactivate", "You cannot change your own status!", "self_update", id, path)
	}

	if user.IsActive == active {
		state := "deactivated"
		if active {
			state = "active"
		}
		return nil, domain.Conflict("AlreadyUpdated", fmt.Sprintf("%s is already %s!", user.Name, state), "already_"+state, id, "user")
	}

	changed, err := s.users.SetActive(ctx, oid, active)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound(fmt.Sprintf("No user found with ID %s!", id), id, "user")
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domain.BadRequest("BadRequest", fmt.Sprintf("User with ID %s cannot be updated!", id), "not_modified", id, "user")
	}

	user.IsActive = active
	return user, nil
}
