package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) GetByID(ctx context.Context, requesterID, id string) (*UserResponse, error) {
	requester, err := getUser(ctx, s.repo, requesterID)
	if err != nil {
		return nil, err
	}

	if requester.Role != models.RoleAdmin && requesterID != id {
		return nil, NewPermissionError(requesterID, "view", "user profile")
	}

	user, err := getUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(requester, user), nil
}

func (s *userService) List(ctx context.Context, requesterID string, filter repositories.UserFilter) (*UserListResponse, error) {
	requester, err := getUser(ctx, s.repo, requesterID)
	if err != nil {
		return nil, err
	}

	if requester.Role != models.RoleAdmin {
		return nil, NewPermissionError(requesterID, "list", "users")
	}

	users, total, err := s.repo.Users().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, s.buildResponse(requester, user))
	}

	size := filter.Limit
	if size <= 0 {
		size = 20
	}
	page := filter.Offset/size + 1

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// Update changes a profile. Users edit their own display name and photo;
// role and department changes are admin-only.
func (s *userService) Update(ctx context.Context, requesterID, id string, req *UpdateUserRequest) (*UserResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	requester, err := getUser(ctx, s.repo, requesterID)
	if err != nil {
		return nil, err
	}

	isAdmin := requester.Role == models.RoleAdmin
	isSelf := requesterID == id

	if !isAdmin && !isSelf {
		return nil, NewPermissionError(requesterID, "update", "user profile")
	}
	if !isAdmin && (req.Role != nil || req.Department != nil) {
		return nil, NewPermissionError(requesterID, "change role or department of", "user")
	}

	target, err := getUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if len(updates) == 0 {
		return s.buildResponse(requester, target), nil
	}
	updates["updated_at"] = time.Now()

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Users().Update(ctx, id, updates); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		// Keep the directory display name aligned; non-fatal if the
		// directory rejects it.
		if req.DisplayName != nil {
			if err := txRepo.Identity().UpdateDisplayName(ctx, id, *req.DisplayName); err != nil {
				s.logger.Warn("failed to sync display name to directory", "user_id", id, "error", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := getUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User updated", "user_id", id, "updated_by", requesterID)
	return s.buildResponse(requester, updated), nil
}

func (s *userService) Delete(ctx context.Context, requesterID, id string) error {
	requester, err := getUser(ctx, s.repo, requesterID)
	if err != nil {
		return err
	}

	if requester.Role != models.RoleAdmin {
		return NewPermissionError(requesterID, "delete", "user")
	}
	if requesterID == id {
		return NewBusinessRuleError("self_delete", "admins cannot delete their own account")
	}

	if err := s.repo.Users().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.repo.Identity().DeleteUser(ctx, id); err != nil {
		s.logger.Error("failed to delete directory account", "user_id", id, "error", err)
	}

	s.logger.Info("User deleted", "user_id", id, "deleted_by", requesterID)
	return nil
}

// ListEventHeads returns assignable event heads: all of them for admins,
// the coordinator's own department for coordinators.
func (s *userService) ListEventHeads(ctx context.Context, requesterID string) ([]*models.User, error) {
	requester, err := getUser(ctx, s.repo, requesterID)
	if err != nil {
		return nil, err
	}

	role := models.RoleEventHead
	filter := repositories.UserFilter{
		Role:  &role,
		Limit: 100,
	}

	switch requester.Role {
	case models.RoleAdmin:
	case models.RoleCoordinator:
		filter.Department = requester.Department
	default:
		return nil, NewPermissionError(requesterID, "list", "event heads")
	}

	heads, _, err := s.repo.Users().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list event heads: %w", err)
	}

	return heads, nil
}

func (s *userService) buildResponse(requester, user *models.User) *UserResponse {
	isAdmin := requester.Role == models.RoleAdmin
	return &UserResponse{
		User:      user,
		CanEdit:   isAdmin || requester.ID == user.ID,
		CanDelete: isAdmin && requester.ID != user.ID,
	}
}
