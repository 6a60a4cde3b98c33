package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

func seedAdmin(repo *fakeRepository) *models.User {
	return repo.addUser(&models.User{
		ID:          "admin-1",
		DisplayName: "Admin",
		Email:       "admin@spk.edu",
		Role:        models.RoleAdmin,
	})
}

// seedPodium registers three attendees on event and returns their ids.
func seedPodium(t *testing.T, repo *fakeRepository, event *models.Event) []string {
	t.Helper()
	ids := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("user-%d", i)
		user := seedParticipant(repo, id, fmt.Sprintf("Participant %d", i))
		repo.addRegistration(&models.Registration{
			EventID:      event.ID,
			EventTitle:   event.Title,
			UserID:       user.ID,
			UserName:     user.DisplayName,
			UserEmail:    user.Email,
			RegisteredAt: time.Now(),
			Attended:     true,
		})
		ids = append(ids, id)
	}
	return ids
}

func podiumRequest(ids []string) *DeclareWinnersRequest {
	return &DeclareWinnersRequest{
		Winners: []WinnerEntry{
			{UserID: ids[0], Position: 1},
			{UserID: ids[1], Position: 2},
			{UserID: ids[2], Position: 3},
		},
	}
}

func TestWinnerService_Declare(t *testing.T) {
	ctx := context.Background()

	t.Run("declares the full podium with announcement", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := NewWinnerService(repo, publisher, testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		winners, err := service.Declare(ctx, admin.ID, event.ID, podiumRequest(ids))
		if err != nil {
			t.Fatalf("Declare failed: %v", err)
		}
		if len(winners) != 3 {
			t.Fatalf("expected 3 winners, got %d", len(winners))
		}
		for i, w := range winners {
			if w.Position != i+1 {
				t.Errorf("winner %d has position %d", i, w.Position)
			}
			if w.ApprovedBy != admin.ID {
				t.Errorf("expected approver %s, got %s", admin.ID, w.ApprovedBy)
			}
		}

		announcements, _, err := repo.Announcements().List(ctx, repositories.AnnouncementFilter{})
		if err != nil {
			t.Fatalf("listing announcements failed: %v", err)
		}
		if len(announcements) != 1 {
			t.Fatalf("expected 1 announcement, got %d", len(announcements))
		}
		if announcements[0].Title != "Winners announced for Hackathon!" {
			t.Errorf("unexpected announcement title %q", announcements[0].Title)
		}
		if announcements[0].Priority != models.PriorityHigh {
			t.Errorf("expected high priority, got %s", announcements[0].Priority)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 2 {
			t.Fatalf("expected winners + announcement events, got %d", len(published))
		}
		if published[0].Type != events.TypeWinnersDeclared {
			t.Errorf("expected %s, got %s", events.TypeWinnersDeclared, published[0].Type)
		}
	})

	t.Run("second declaration is rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		if _, err := service.Declare(ctx, admin.ID, event.ID, podiumRequest(ids)); err != nil {
			t.Fatalf("first declaration failed: %v", err)
		}
		if _, err := service.Declare(ctx, admin.ID, event.ID, podiumRequest(ids)); !errors.Is(err, ErrWinnersAlreadyDeclared) {
			t.Fatalf("expected ErrWinnersAlreadyDeclared, got %v", err)
		}
	})

	t.Run("duplicate users are rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		req := podiumRequest(ids)
		req.Winners[1].UserID = req.Winners[0].UserID

		var errs validator.ValidationErrors
		_, err := service.Declare(ctx, admin.ID, event.ID, req)
		if !errors.As(err, &errs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})

	t.Run("duplicate positions are rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		req := podiumRequest(ids)
		req.Winners[2].Position = 1

		var errs validator.ValidationErrors
		_, err := service.Declare(ctx, admin.ID, event.ID, req)
		if !errors.As(err, &errs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})

	t.Run("non-attendee cannot win", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		absent := seedParticipant(repo, "user-4", "Absent")
		repo.addRegistration(&models.Registration{
			EventID:      event.ID,
			EventTitle:   event.Title,
			UserID:       absent.ID,
			UserName:     absent.DisplayName,
			UserEmail:    absent.Email,
			RegisteredAt: time.Now(),
			Attended:     false,
		})

		req := podiumRequest(ids)
		req.Winners[2].UserID = absent.ID

		if _, err := service.Declare(ctx, admin.ID, event.ID, req); !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("unregistered user cannot win", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)
		seedParticipant(repo, "stranger", "Stranger")

		req := podiumRequest(ids)
		req.Winners[0].UserID = "stranger"

		if _, err := service.Declare(ctx, admin.ID, event.ID, req); !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("the assigned event head declares", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		head := seedEventHead(repo, "head-1", models.DepartmentGeneral)
		event := seedEvent(repo, "Hackathon", 50)
		event.EventHeadID = &head.ID
		ids := seedPodium(t, repo, event)

		winners, err := service.Declare(ctx, head.ID, event.ID, podiumRequest(ids))
		if err != nil {
			t.Fatalf("Declare failed: %v", err)
		}
		if len(winners) != 3 {
			t.Fatalf("expected 3 winners, got %d", len(winners))
		}
	})

	t.Run("an unassigned event head cannot declare", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		seedEventHead(repo, "head-2", models.DepartmentGeneral)
		event := seedEvent(repo, "Hackathon", 50)
		ids := seedPodium(t, repo, event)

		if _, err := service.Declare(ctx, "head-2", event.ID, podiumRequest(ids)); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("coordinator outside department cannot declare", func(t *testing.T) {
		repo := newFakeRepository()
		service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

		dept := models.DepartmentIT
		repo.addUser(&models.User{
			ID:          "coord-1",
			DisplayName: "Coordinator",
			Email:       "coord@spk.edu",
			Role:        models.RoleCoordinator,
			Department:  &dept,
		})

		event := seedEvent(repo, "Hackathon", 50)
		event.Department = models.DepartmentCS
		ids := seedPodium(t, repo, event)

		if _, err := service.Declare(ctx, "coord-1", event.ID, podiumRequest(ids)); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})
}

func TestWinnerService_ListByEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := NewWinnerService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())

	admin := seedAdmin(repo)
	event := seedEvent(repo, "Hackathon", 50)
	ids := seedPodium(t, repo, event)

	// Declare out of podium order; listing must come back sorted.
	req := &DeclareWinnersRequest{
		Winners: []WinnerEntry{
			{UserID: ids[2], Position: 3},
			{UserID: ids[0], Position: 1},
			{UserID: ids[1], Position: 2},
		},
	}
	if _, err := service.Declare(ctx, admin.ID, event.ID, req); err != nil {
		t.Fatalf("Declare failed: %v", err)
	}

	winners, err := service.ListByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListByEvent failed: %v", err)
	}
	for i, w := range winners {
		if w.Position != i+1 {
			t.Errorf("expected position %d at index %d, got %d", i+1, i, w.Position)
		}
	}
}
