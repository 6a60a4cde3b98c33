package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

type registrationService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewRegistrationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) RegistrationService {
	return &registrationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Register claims a capacity slot and inserts the registration in one
// transaction. The conditional increment is the single source of truth for
// capacity; the unique index on (event_id, user_id) rejects duplicates even
// under concurrent requests.
func (s *registrationService) Register(ctx context.Context, userID string, eventID uint) (*RegistrationResponse, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Events().GetByID(ctx, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if event.EventDate.Before(time.Now()) {
		return nil, NewBusinessRuleError("event_over", "cannot register for a past event")
	}

	var registration *models.Registration

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Events().ClaimSlot(ctx, eventID); err != nil {
			if errors.Is(err, repositories.ErrCapacityExhausted) {
				return ErrEventFull
			}
			if repositories.IsNotFoundError(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to claim slot: %w", err)
		}

		registration = &models.Registration{
			EventID:      eventID,
			EventTitle:   event.Title,
			UserID:       user.ID,
			UserName:     user.DisplayName,
			UserEmail:    user.Email,
			UserPhoto:    user.PhotoURL,
			RegisteredAt: time.Now().UTC(),
		}

		if err := txRepo.Registrations().Create(ctx, registration); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("failed to create registration: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	regEvent := events.NewEvent(events.TypeRegistrationCreated, &events.RegistrationCreatedEvent{
		RegistrationID: registration.ID,
		EventID:        eventID,
		EventTitle:     event.Title,
		UserID:         user.ID,
	})
	if err := s.publisher.Publish(ctx, events.TopicRegistrations, regEvent); err != nil {
		s.logger.Error("failed to publish registration event", "registration_id", registration.ID, "error", err)
	}

	s.logger.Info("Registration created", "event_id", eventID, "user_id", userID)
	return &RegistrationResponse{Registration: registration}, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, userID string, eventID uint, page, size int) (*RegistrationListResponse, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Events().GetByID(ctx, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !canViewRegistrations(user, event) {
		return nil, NewPermissionError(userID, "view registrations of", "event")
	}

	limit, offset := normalizePage(page, size)

	regs, total, err := s.repo.Registrations().List(ctx, repositories.RegistrationFilter{
		EventID: &eventID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	responses := make([]*RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		responses = append(responses, &RegistrationResponse{Registration: reg})
	}

	if page <= 0 {
		page = 1
	}

	return &RegistrationListResponse{
		Registrations: responses,
		Total:         total,
		Page:          page,
		Size:          limit,
	}, nil
}

// ListMine returns the participant's registrations with their events loaded
// in a single batch instead of one query per row.
func (s *registrationService) ListMine(ctx context.Context, userID string) ([]*MyRegistrationResponse, error) {
	regs, _, err := s.repo.Registrations().List(ctx, repositories.RegistrationFilter{
		UserID: &userID,
		Limit:  100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	eventIDs := make([]uint, 0, len(regs))
	for _, reg := range regs {
		eventIDs = append(eventIDs, reg.EventID)
	}

	eventList, err := s.repo.Events().GetByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch load events: %w", err)
	}

	eventsByID := make(map[uint]*models.Event, len(eventList))
	for _, event := range eventList {
		eventsByID[event.ID] = event
	}

	responses := make([]*MyRegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		responses = append(responses, &MyRegistrationResponse{
			Registration: reg,
			Event:        eventsByID[reg.EventID],
		})
	}

	return responses, nil
}

// MarkAttendance is the event head's operation; managers may also correct
// attendance.
func (s *registrationService) MarkAttendance(ctx context.Context, userID string, registrationID uint, attended bool) error {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	registration, err := s.repo.Registrations().GetByID(ctx, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to get registration: %w", err)
	}

	event, err := s.repo.Events().GetByID(ctx, registration.EventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if !canViewRegistrations(user, event) {
		return NewPermissionError(userID, "mark attendance for", "event")
	}

	err = s.repo.Registrations().Update(ctx, registrationID, map[string]interface{}{
		"attended": attended,
	})
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	s.logger.Info("Attendance updated",
		"registration_id", registrationID,
		"attended", attended,
		"marked_by", userID)
	return nil
}
