package service

import (
	"context"
	"strings"

	"github.com/rosterhq/shift-roster/internal/auth"
	"github.com/rosterhq/shift-roster/internal/domain"
	"github.com/rosterhq/shift-roster/internal/repository"
	apperrors "github.com/rosterhq/shift-roster/pkg/util"
)

// UserService manages profiles and admin-only account controls.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileInput holds optional profile changes.
type ProfileInput struct {
	FirstName     *string
	LastName      *string
	PreferredDays *int
}

// StatusInput holds admin-only account changes.
type StatusInput struct {
	Active *bool
	Role   *domain.Role
}

// Profile returns the caller's fresh user record.
func (s *UserService) Profile(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := auth.Authorize(actor, auth.CapManageOwnProfile).Err(); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": actor.ID})
	}
	return user, nil
}

// UpdateProfile edits the caller's name and preferred days.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, input ProfileInput) (*domain.User, error) {
	if err := auth.Authorize(actor, auth.CapManageOwnProfile).Err(); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": actor.ID})
	}
	if input.FirstName != nil {
		if v := strings.TrimSpace(*input.FirstName); v != "" {
			user.FirstName = v
		}
	}
	if input.LastName != nil {
		if v := strings.TrimSpace(*input.LastName); v != "" {
			user.LastName = v
		}
	}
	if input.PreferredDays != nil {
		if *input.PreferredDays < 0 || *input.PreferredDays > 7 {
			return nil, apperrors.NewValidationError("preferred days must be between 0 and 7", map[string]any{
				"preferredDays": *input.PreferredDays,
			})
		}
		days := *input.PreferredDays
		user.PreferredDays = &days
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": actor.ID})
	}
	return user, nil
}

// ListDoctors returns doctors for the admin roster view.
func (s *UserService) ListDoctors(ctx context.Context, actor *domain.User, includeInactive bool, page domain.Page) ([]domain.User, error) {
	if err := auth.Authorize(actor, auth.CapListDoctors).Err(); err != nil {
		return nil, err
	}
	role := domain.RoleDoctor
	filter := repository.UserFilter{Role: &role, Page: page}
	if !includeInactive {
		filter.Active = ptrBool(true)
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateStatus changes another user's active flag or role.
func (s *UserService) UpdateStatus(ctx context.Context, actor *domain.User, userID string, input StatusInput) (*domain.User, error) {
	if err := auth.Authorize(actor, auth.CapManageUsers).Err(); err != nil {
		return nil, err
	}
	if input.Active == nil && input.Role == nil {
		return nil, apperrors.NewValidationError("isActive or role is required", nil)
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
	}
	if userID == actor.ID {
		demoted := input.Role != nil && *input.Role != domain.RoleAdmin
		deactivated := input.Active != nil && !*input.Active
		if demoted || deactivated {
			return nil, apperrors.NewForbidden("admins cannot demote or deactivate themselves")
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if err := s.users.UpdateStatus(ctx, user); err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}
