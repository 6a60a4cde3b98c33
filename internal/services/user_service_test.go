package services

import (
	"context"
	"errors"
	"testing"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

func newUserService(repo *fakeRepository) UserService {
	return NewUserService(repo, testLogger(), validator.New())
}

func seedEventHead(repo *fakeRepository, id string, department string) *models.User {
	return repo.addUser(&models.User{
		ID:          id,
		DisplayName: "Head " + id,
		Email:       id + "@spk.edu",
		Role:        models.RoleEventHead,
		Department:  &department,
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newUserService(repo)

	admin := seedAdmin(repo)
	user := seedParticipant(repo, "user-1", "Asha Nair")
	other := seedParticipant(repo, "user-2", "Rahul Menon")

	t.Run("users see their own profile", func(t *testing.T) {
		resp, err := service.GetByID(ctx, user.ID, user.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !resp.CanEdit {
			t.Error("users should be able to edit themselves")
		}
		if resp.CanDelete {
			t.Error("users should not be able to delete themselves")
		}
	})

	t.Run("users may not read other profiles", func(t *testing.T) {
		if _, err := service.GetByID(ctx, user.ID, other.ID); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("admins read anyone", func(t *testing.T) {
		resp, err := service.GetByID(ctx, admin.ID, other.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !resp.CanEdit || !resp.CanDelete {
			t.Errorf("admin rights missing: %+v", resp)
		}
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newUserService(repo)

	admin := seedAdmin(repo)
	seedParticipant(repo, "user-1", "Asha Nair")
	seedParticipant(repo, "user-2", "Rahul Menon")

	t.Run("admin only", func(t *testing.T) {
		if _, err := service.List(ctx, "user-1", repositories.UserFilter{}); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("admin sees everyone", func(t *testing.T) {
		resp, err := service.List(ctx, admin.ID, repositories.UserFilter{Limit: 20})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 3 {
			t.Errorf("expected 3 users, got %d", resp.Total)
		}
		if resp.Page != 1 || resp.Size != 20 {
			t.Errorf("unexpected pagination: page=%d size=%d", resp.Page, resp.Size)
		}
	})

	t.Run("role filter narrows results", func(t *testing.T) {
		role := models.RoleParticipant
		resp, err := service.List(ctx, admin.ID, repositories.UserFilter{Role: &role, Limit: 20})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("expected 2 participants, got %d", resp.Total)
		}
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("users rename themselves", func(t *testing.T) {
		repo := newFakeRepository()
		service := newUserService(repo)
		user := seedParticipant(repo, "user-1", "Asha Nair")

		name := "Asha N."
		resp, err := service.Update(ctx, user.ID, user.ID, &UpdateUserRequest{DisplayName: &name})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.DisplayName != name {
			t.Errorf("display name not updated, got %q", resp.DisplayName)
		}
	})

	t.Run("users may not promote themselves", func(t *testing.T) {
		repo := newFakeRepository()
		service := newUserService(repo)
		user := seedParticipant(repo, "user-1", "Asha Nair")

		role := models.RoleAdmin
		if _, err := service.Update(ctx, user.ID, user.ID, &UpdateUserRequest{Role: &role}); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("users may not edit others", func(t *testing.T) {
		repo := newFakeRepository()
		service := newUserService(repo)
		seedParticipant(repo, "user-1", "Asha Nair")
		other := seedParticipant(repo, "user-2", "Rahul Menon")

		name := "Hacked"
		if _, err := service.Update(ctx, "user-1", other.ID, &UpdateUserRequest{DisplayName: &name}); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("admins change roles and departments", func(t *testing.T) {
		repo := newFakeRepository()
		service := newUserService(repo)
		admin := seedAdmin(repo)
		user := seedParticipant(repo, "user-1", "Asha Nair")

		role := models.RoleCoordinator
		dept := models.DepartmentIT
		resp, err := service.Update(ctx, admin.ID, user.ID, &UpdateUserRequest{Role: &role, Department: &dept})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Role != models.RoleCoordinator {
			t.Errorf("role not updated, got %s", resp.Role)
		}
		if resp.Department == nil || *resp.Department != models.DepartmentIT {
			t.Errorf("department not updated, got %v", resp.Department)
		}
	})

	t.Run("invalid role is rejected before any write", func(t *testing.T) {
		repo := newFakeRepository()
		service := newUserService(repo)
		admin := seedAdmin(repo)
		user := seedParticipant(repo, "user-1", "Asha Nair")

		bad := models.UserRole("superuser")
		_, err := service.Update(ctx, admin.ID, user.ID, &UpdateUserRequest{Role: &bad})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newUserService(repo)

	admin := seedAdmin(repo)
	user := seedParticipant(repo, "user-1", "Asha Nair")

	t.Run("non-admins may not delete", func(t *testing.T) {
		if err := service.Delete(ctx, user.ID, admin.ID); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("admins may not delete themselves", func(t *testing.T) {
		if err := service.Delete(ctx, admin.ID, admin.ID); !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("admins delete other accounts", func(t *testing.T) {
		if err := service.Delete(ctx, admin.ID, user.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := service.GetByID(ctx, admin.ID, user.ID); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
		}
	})
}

func TestUserService_ListEventHeads(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newUserService(repo)

	admin := seedAdmin(repo)
	coordinator := seedCoordinator(repo, "coord-1") // IT department
	participant := seedParticipant(repo, "user-1", "Asha Nair")

	seedEventHead(repo, "head-1", models.DepartmentIT)
	seedEventHead(repo, "head-2", models.DepartmentCS)

	t.Run("admins see every department", func(t *testing.T) {
		heads, err := service.ListEventHeads(ctx, admin.ID)
		if err != nil {
			t.Fatalf("ListEventHeads failed: %v", err)
		}
		if len(heads) != 2 {
			t.Errorf("expected 2 heads, got %d", len(heads))
		}
	})

	t.Run("coordinators see only their department", func(t *testing.T) {
		heads, err := service.ListEventHeads(ctx, coordinator.ID)
		if err != nil {
			t.Fatalf("ListEventHeads failed: %v", err)
		}
		if len(heads) != 1 || heads[0].ID != "head-1" {
			t.Errorf("expected only head-1, got %+v", heads)
		}
	})

	t.Run("participants may not list heads", func(t *testing.T) {
		if _, err := service.ListEventHeads(ctx, participant.ID); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})
}
