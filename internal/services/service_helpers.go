package services

import (
	"context"
	"fmt"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

// getUser loads the acting user's profile; role checks always go through
// the local mirror, never the identity provider.
func getUser(ctx context.Context, repo repositories.Repository, userID string) (*models.User, error) {
	user, err := repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// departmentScope returns the departments a coordinator may touch: their
// own plus General. Coordinators without a department only see General.
func departmentScope(user *models.User) []string {
	if user.Department == nil {
		return []string{models.DepartmentGeneral}
	}
	return []string{*user.Department, models.DepartmentGeneral}
}

func inDepartmentScope(user *models.User, department string) bool {
	for _, d := range departmentScope(user) {
		if d == department {
			return true
		}
	}
	return false
}

// canManageEvent reports whether user may mutate the event: admins always,
// coordinators within department scope, event heads never (they only mark
// attendance).
func canManageEvent(user *models.User, event *models.Event) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoordinator:
		return inDepartmentScope(user, event.Department)
	default:
		return false
	}
}

// canEditEvent additionally admits the assigned event head, who may change
// the event's content and live state but not create, delete, or reassign it.
func canEditEvent(user *models.User, event *models.Event) bool {
	if canManageEvent(user, event) {
		return true
	}
	return user.Role == models.RoleEventHead &&
		event.EventHeadID != nil && *event.EventHeadID == user.ID
}

// canViewRegistrations covers the read side, which matches the edit scope.
func canViewRegistrations(user *models.User, event *models.Event) bool {
	return canEditEvent(user, event)
}

// registrationPageSize matches the repository's pagination cap.
const registrationPageSize = 100

// listAllRegistrations pages through the repository until the filter is
// exhausted, oldest first.
func listAllRegistrations(ctx context.Context, repo repositories.Repository, filter repositories.RegistrationFilter) ([]*models.Registration, error) {
	filter.Limit = registrationPageSize
	filter.SortBy = "registered_at"
	filter.SortOrder = "asc"

	var all []*models.Registration
	for offset := 0; ; offset += registrationPageSize {
		filter.Offset = offset
		page, total, err := repo.Registrations().List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list registrations: %w", err)
		}
		all = append(all, page...)
		if len(page) < registrationPageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func normalizePage(page, size int) (limit, offset int) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}
