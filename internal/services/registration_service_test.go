package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedParticipant(repo *fakeRepository, id, name string) *models.User {
	return repo.addUser(&models.User{
		ID:          id,
		DisplayName: name,
		Email:       id + "@spk.edu",
		Role:        models.RoleParticipant,
	})
}

func seedEvent(repo *fakeRepository, title string, capacity int) *models.Event {
	return repo.addEvent(&models.Event{
		Title:           title,
		Description:     "test event",
		MaxParticipants: capacity,
		EventDate:       time.Now().Add(48 * time.Hour),
		EventTime:       "10:00 AM",
		Location:        "Main Auditorium",
		Department:      models.DepartmentGeneral,
		CreatedBy:       "admin-1",
	})
}

func newRegistrationService(repo *fakeRepository, publisher events.EventPublisher) RegistrationService {
	return NewRegistrationService(repo, publisher, testLogger(), validator.New())
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration claims a slot", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := newRegistrationService(repo, publisher)

		user := seedParticipant(repo, "user-1", "Asha Nair")
		event := seedEvent(repo, "Hackathon", 50)

		resp, err := service.Register(ctx, user.ID, event.ID)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Registration.EventTitle != "Hackathon" {
			t.Errorf("expected denormalised title, got %q", resp.Registration.EventTitle)
		}
		if event.CurrentParticipants != 1 {
			t.Errorf("expected 1 claimed slot, got %d", event.CurrentParticipants)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(published))
		}
		if published[0].Type != events.TypeRegistrationCreated {
			t.Errorf("expected %s, got %s", events.TypeRegistrationCreated, published[0].Type)
		}
	})

	t.Run("full event is rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

		event := seedEvent(repo, "Robotics", 1)
		first := seedParticipant(repo, "user-1", "First")
		second := seedParticipant(repo, "user-2", "Second")

		if _, err := service.Register(ctx, first.ID, event.ID); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}
		if _, err := service.Register(ctx, second.ID, event.ID); !errors.Is(err, ErrEventFull) {
			t.Fatalf("expected ErrEventFull, got %v", err)
		}
		if event.CurrentParticipants != 1 {
			t.Errorf("slot count should stay at 1, got %d", event.CurrentParticipants)
		}
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		repo := newFakeRepository()
		service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

		event := seedEvent(repo, "Quiz", 10)
		user := seedParticipant(repo, "user-1", "Asha Nair")

		if _, err := service.Register(ctx, user.ID, event.ID); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}
		if _, err := service.Register(ctx, user.ID, event.ID); !errors.Is(err, ErrAlreadyRegistered) {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
	})

	t.Run("past events are closed", func(t *testing.T) {
		repo := newFakeRepository()
		service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

		user := seedParticipant(repo, "user-1", "Asha Nair")
		event := seedEvent(repo, "Old Event", 10)
		event.EventDate = time.Now().Add(-24 * time.Hour)

		_, err := service.Register(ctx, user.ID, event.ID)
		if !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		repo := newFakeRepository()
		service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

		user := seedParticipant(repo, "user-1", "Asha Nair")

		if _, err := service.Register(ctx, user.ID, 999); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestRegistrationService_MarkAttendance(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

	participant := seedParticipant(repo, "user-1", "Asha Nair")
	event := seedEvent(repo, "Hackathon", 5)

	headID := "head-1"
	repo.addUser(&models.User{
		ID:          headID,
		DisplayName: "Event Head",
		Email:       "head@spk.edu",
		Role:        models.RoleEventHead,
	})
	event.EventHeadID = &headID

	resp, err := service.Register(ctx, participant.ID, event.ID)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("assigned event head may mark attendance", func(t *testing.T) {
		if err := service.MarkAttendance(ctx, headID, resp.Registration.ID, true); err != nil {
			t.Fatalf("MarkAttendance failed: %v", err)
		}
		if !resp.Registration.Attended {
			t.Error("registration should be marked attended")
		}
	})

	t.Run("participants may not mark attendance", func(t *testing.T) {
		err := service.MarkAttendance(ctx, participant.ID, resp.Registration.ID, false)
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})
}

func TestRegistrationService_ListMine(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newRegistrationService(repo, events.NewMockEventPublisher(testLogger()))

	user := seedParticipant(repo, "user-1", "Asha Nair")
	first := seedEvent(repo, "Hackathon", 5)
	second := seedEvent(repo, "Quiz", 5)

	for _, event := range []*models.Event{first, second} {
		if _, err := service.Register(ctx, user.ID, event.ID); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	mine, err := service.ListMine(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(mine))
	}
	for _, entry := range mine {
		if entry.Event == nil {
			t.Error("expected the event to be joined onto the registration")
		}
	}
}
