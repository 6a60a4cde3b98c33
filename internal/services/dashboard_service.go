package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

// GetStats dispatches on the caller's role; each role sees only its own
// slice of the festival.
func (s *dashboardService) GetStats(ctx context.Context, userID string) (*DashboardResponse, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	var stats interface{}

	switch user.Role {
	case models.RoleAdmin:
		stats, err = s.repo.Dashboard().GetAdminStats(ctx)
	case models.RoleCoordinator:
		department := models.DepartmentGeneral
		if user.Department != nil {
			department = *user.Department
		}
		stats, err = s.repo.Dashboard().GetCoordinatorStats(ctx, department)
	case models.RoleEventHead:
		stats, err = s.repo.Dashboard().GetEventHeadStats(ctx, userID)
	case models.RoleParticipant:
		stats, err = s.repo.Dashboard().GetParticipantStats(ctx, userID)
	default:
		return nil, NewBusinessRuleError("unknown_role", fmt.Sprintf("unknown role %q", user.Role))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	return &DashboardResponse{
		Role:  user.Role,
		Stats: stats,
	}, nil
}
