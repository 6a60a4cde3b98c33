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

func newEventService(repo *fakeRepository, publisher events.EventPublisher) EventService {
	return NewEventService(repo, publisher, testLogger(), validator.New())
}

func createRequest(title, department string) *CreateEventRequest {
	return &CreateEventRequest{
		Title:           title,
		Description:     "A test event",
		MaxParticipants: 100,
		EventDate:       time.Now().Add(72 * time.Hour),
		EventTime:       "10:00 AM",
		Location:        "Main Auditorium",
		Category:        "Technical",
		Department:      department,
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates in any department", func(t *testing.T) {
		repo := newFakeRepository()
		service := newEventService(repo, events.NewMockEventPublisher(testLogger()))
		admin := seedAdmin(repo)

		resp, err := service.Create(ctx, admin.ID, createRequest("Hackathon", models.DepartmentCS))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Event.CreatedBy != admin.ID {
			t.Errorf("expected creator %s, got %s", admin.ID, resp.Event.CreatedBy)
		}
	})

	t.Run("coordinator limited to own department and General", func(t *testing.T) {
		repo := newFakeRepository()
		service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

		dept := models.DepartmentIT
		repo.addUser(&models.User{
			ID:          "coord-1",
			DisplayName: "Coordinator",
			Email:       "coord@spk.edu",
			Role:        models.RoleCoordinator,
			Department:  &dept,
		})

		if _, err := service.Create(ctx, "coord-1", createRequest("IT Expo", models.DepartmentIT)); err != nil {
			t.Errorf("own department should be allowed: %v", err)
		}
		if _, err := service.Create(ctx, "coord-1", createRequest("Tech Fair", models.DepartmentGeneral)); err != nil {
			t.Errorf("General should be allowed: %v", err)
		}
		if _, err := service.Create(ctx, "coord-1", createRequest("CS Meet", models.DepartmentCS)); !IsPermissionError(err) {
			t.Errorf("expected permission error for foreign department, got %v", err)
		}
	})

	t.Run("participants cannot create", func(t *testing.T) {
		repo := newFakeRepository()
		service := newEventService(repo, events.NewMockEventPublisher(testLogger()))
		user := seedParticipant(repo, "user-1", "Asha Nair")

		if _, err := service.Create(ctx, user.ID, createRequest("Rogue Event", models.DepartmentGeneral)); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("past event date is invalid", func(t *testing.T) {
		repo := newFakeRepository()
		service := newEventService(repo, events.NewMockEventPublisher(testLogger()))
		admin := seedAdmin(repo)

		req := createRequest("Yesterday", models.DepartmentGeneral)
		req.EventDate = time.Now().Add(-24 * time.Hour)

		var errs validator.ValidationErrors
		if _, err := service.Create(ctx, admin.ID, req); !errors.As(err, &errs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})
}

func TestEventService_SetLive(t *testing.T) {
	ctx := context.Background()

	t.Run("going live posts the high priority announcement", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := newEventService(repo, publisher)

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)

		if err := service.SetLive(ctx, admin.ID, event.ID, true); err != nil {
			t.Fatalf("SetLive failed: %v", err)
		}
		if !event.IsLive {
			t.Error("event should be live")
		}

		announcements, _, _ := repo.Announcements().List(ctx, repositories.AnnouncementFilter{})
		if len(announcements) != 1 {
			t.Fatalf("expected 1 announcement, got %d", len(announcements))
		}
		if announcements[0].Title != "Hackathon is now LIVE!" {
			t.Errorf("unexpected title %q", announcements[0].Title)
		}
		if announcements[0].Priority != models.PriorityHigh {
			t.Errorf("expected high priority, got %s", announcements[0].Priority)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 2 {
			t.Fatalf("expected status + announcement events, got %d", len(published))
		}
		if published[0].Type != events.TypeEventLive {
			t.Errorf("expected %s, got %s", events.TypeEventLive, published[0].Type)
		}
	})

	t.Run("ending posts the medium priority announcement", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := newEventService(repo, publisher)

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)
		event.IsLive = true

		if err := service.SetLive(ctx, admin.ID, event.ID, false); err != nil {
			t.Fatalf("SetLive failed: %v", err)
		}

		announcements, _, _ := repo.Announcements().List(ctx, repositories.AnnouncementFilter{})
		if len(announcements) != 1 {
			t.Fatalf("expected 1 announcement, got %d", len(announcements))
		}
		if announcements[0].Title != "Hackathon has ended" {
			t.Errorf("unexpected title %q", announcements[0].Title)
		}
		if announcements[0].Priority != models.PriorityMedium {
			t.Errorf("expected medium priority, got %s", announcements[0].Priority)
		}

		published := publisher.GetPublishedEvents()
		if len(published) == 0 || published[0].Type != events.TypeEventEnded {
			t.Errorf("expected %s as first published event", events.TypeEventEnded)
		}
	})

	t.Run("setting the same state is a no-op", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := newEventService(repo, publisher)

		admin := seedAdmin(repo)
		event := seedEvent(repo, "Hackathon", 50)

		if err := service.SetLive(ctx, admin.ID, event.ID, false); err != nil {
			t.Fatalf("SetLive failed: %v", err)
		}
		if announcements, _, _ := repo.Announcements().List(ctx, repositories.AnnouncementFilter{}); len(announcements) != 0 {
			t.Errorf("no announcement expected, got %d", len(announcements))
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("no events expected for a no-op toggle")
		}
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

	admin := seedAdmin(repo)
	event := seedEvent(repo, "Hackathon", 50)

	t.Run("refused while participants are registered", func(t *testing.T) {
		event.CurrentParticipants = 3
		if err := service.Delete(ctx, admin.ID, event.ID); !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})

	t.Run("allowed once empty", func(t *testing.T) {
		event.CurrentParticipants = 0
		if err := service.Delete(ctx, admin.ID, event.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := service.GetByID(ctx, admin.ID, event.ID); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestEventService_AssignEventHead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

	admin := seedAdmin(repo)
	event := seedEvent(repo, "Hackathon", 50)

	repo.addUser(&models.User{
		ID:          "head-1",
		DisplayName: "Event Head",
		Email:       "head@spk.edu",
		Role:        models.RoleEventHead,
	})

	t.Run("assigns a user with the event head role", func(t *testing.T) {
		err := service.AssignEventHead(ctx, admin.ID, event.ID, &AssignEventHeadRequest{EventHeadID: "head-1"})
		if err != nil {
			t.Fatalf("AssignEventHead failed: %v", err)
		}
		if event.EventHeadID == nil || *event.EventHeadID != "head-1" {
			t.Error("event head was not stored")
		}
		if event.EventHeadName == nil || *event.EventHeadName != "Event Head" {
			t.Error("event head name was not denormalised")
		}
	})

	t.Run("rejects users without the role", func(t *testing.T) {
		seedParticipant(repo, "user-1", "Asha Nair")
		err := service.AssignEventHead(ctx, admin.ID, event.ID, &AssignEventHeadRequest{EventHeadID: "user-1"})
		if !IsBusinessRuleError(err) {
			t.Fatalf("expected business rule error, got %v", err)
		}
	})
}

func TestEventService_List(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

	itEvent := seedEvent(repo, "IT Expo", 50)
	itEvent.Department = models.DepartmentIT
	csEvent := seedEvent(repo, "CS Meet", 50)
	csEvent.Department = models.DepartmentCS
	seedEvent(repo, "Tech Fair", 50)

	dept := models.DepartmentIT
	repo.addUser(&models.User{
		ID:          "coord-1",
		DisplayName: "Coordinator",
		Email:       "coord@spk.edu",
		Role:        models.RoleCoordinator,
		Department:  &dept,
	})

	t.Run("anonymous callers see everything", func(t *testing.T) {
		resp, err := service.List(ctx, "", &ListEventsRequest{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 3 {
			t.Errorf("expected 3 events, got %d", resp.Total)
		}
	})

	t.Run("coordinators default to department scope", func(t *testing.T) {
		resp, err := service.List(ctx, "coord-1", &ListEventsRequest{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("expected IT + General events, got %d", resp.Total)
		}
		for _, e := range resp.Events {
			if e.Department == models.DepartmentCS {
				t.Error("CS event should be out of scope")
			}
		}
	})
}

func TestEventService_EventHeadEdits(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

	assigned := seedEventHead(repo, "head-1", models.DepartmentIT)
	seedEventHead(repo, "head-2", models.DepartmentIT)

	event := seedEvent(repo, "Hackathon", 100)
	event.EventHeadID = &assigned.ID
	event.EventHeadName = &assigned.DisplayName

	t.Run("the assigned head edits the description", func(t *testing.T) {
		desc := "Updated briefing for all teams"
		resp, err := service.Update(ctx, assigned.ID, event.ID, &UpdateEventRequest{Description: &desc})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if resp.Description != desc {
			t.Errorf("description not updated, got %q", resp.Description)
		}
	})

	t.Run("the assigned head may only touch description and banner", func(t *testing.T) {
		title := "Renamed Hackathon"
		capacity := 10
		dept := models.DepartmentCS
		_, err := service.Update(ctx, assigned.ID, event.ID, &UpdateEventRequest{
			Title:           &title,
			MaxParticipants: &capacity,
			Department:      &dept,
		})
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
		if event.Title != "Hackathon" {
			t.Errorf("title should be untouched, got %q", event.Title)
		}
	})

	t.Run("the assigned head toggles live", func(t *testing.T) {
		if err := service.SetLive(ctx, assigned.ID, event.ID, true); err != nil {
			t.Fatalf("SetLive failed: %v", err)
		}
	})

	t.Run("an unassigned head is refused", func(t *testing.T) {
		desc := "Hijacked"
		if _, err := service.Update(ctx, "head-2", event.ID, &UpdateEventRequest{Description: &desc}); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("heads may not delete events", func(t *testing.T) {
		if err := service.Delete(ctx, assigned.ID, event.ID); !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})
}

func TestEventService_RenameSyncsAllRegistrations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newEventService(repo, events.NewMockEventPublisher(testLogger()))

	admin := seedAdmin(repo)
	event := seedEvent(repo, "Hackathon", 500)

	// More registrations than one repository page holds.
	const regCount = 120
	for i := 0; i < regCount; i++ {
		user := seedParticipant(repo, fmt.Sprintf("user-%d", i), fmt.Sprintf("Participant %d", i))
		repo.addRegistration(&models.Registration{
			EventID:      event.ID,
			EventTitle:   event.Title,
			UserID:       user.ID,
			UserName:     user.DisplayName,
			UserEmail:    user.Email,
			RegisteredAt: time.Now(),
		})
	}

	title := "Mega Hackathon"
	if _, err := service.Update(ctx, admin.ID, event.ID, &UpdateEventRequest{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	regs, total, err := repo.Registrations().List(ctx, repositories.RegistrationFilter{EventID: &event.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != regCount {
		t.Fatalf("expected %d registrations, got %d", regCount, total)
	}
	for _, reg := range regs {
		if reg.EventTitle != title {
			t.Fatalf("registration %d kept the stale title %q", reg.ID, reg.EventTitle)
		}
	}
}
