package services

import (
	"context"
	"errors"
	"testing"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

func TestDashboardService_GetStats(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := NewDashboardService(repo, testLogger())

	admin := seedAdmin(repo)
	coordinator := seedCoordinator(repo, "coord-1")
	participant := seedParticipant(repo, "user-1", "Asha Nair")
	seedEvent(repo, "Hackathon", 100)

	t.Run("admins get festival-wide counters", func(t *testing.T) {
		resp, err := service.GetStats(ctx, admin.ID)
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if resp.Role != models.RoleAdmin {
			t.Errorf("unexpected role %s", resp.Role)
		}
		stats, ok := resp.Stats.(*repositories.AdminStats)
		if !ok {
			t.Fatalf("expected admin stats, got %T", resp.Stats)
		}
		if stats.TotalEvents != 1 || stats.TotalUsers != 3 {
			t.Errorf("unexpected counters: %+v", stats)
		}
	})

	t.Run("coordinators are scoped to their department", func(t *testing.T) {
		resp, err := service.GetStats(ctx, coordinator.ID)
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		stats, ok := resp.Stats.(*repositories.CoordinatorStats)
		if !ok {
			t.Fatalf("expected coordinator stats, got %T", resp.Stats)
		}
		if stats.Department != models.DepartmentIT {
			t.Errorf("expected IT department scope, got %q", stats.Department)
		}
	})

	t.Run("participants get their own slice", func(t *testing.T) {
		resp, err := service.GetStats(ctx, participant.ID)
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if resp.Role != models.RoleParticipant {
			t.Errorf("unexpected role %s", resp.Role)
		}
		if _, ok := resp.Stats.(*repositories.ParticipantStats); !ok {
			t.Fatalf("expected participant stats, got %T", resp.Stats)
		}
	})

	t.Run("unknown users are rejected", func(t *testing.T) {
		if _, err := service.GetStats(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown roles are refused", func(t *testing.T) {
		repo.addUser(&models.User{
			ID:          "weird-1",
			DisplayName: "Weird",
			Email:       "weird@spk.edu",
			Role:        models.UserRole("superuser"),
		})
		if _, err := service.GetStats(ctx, "weird-1"); !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})
}
