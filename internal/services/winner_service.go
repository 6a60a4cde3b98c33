package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

type winnerService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewWinnerService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) WinnerService {
	return &winnerService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Declare records the full podium for an event. All three winner rows and
// the announcement commit in one transaction; the unique (event_id,
// position) index turns a concurrent second declaration into a rollback.
func (s *winnerService) Declare(ctx context.Context, userID string, eventID uint, req *DeclareWinnersRequest) ([]*models.Winner, error) {
	if errs := s.validator.GetBusinessValidator().ValidateWinnerDeclaration(req); len(errs) > 0 {
		return nil, errs
	}

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

	if !canEditEvent(user, event) {
		return nil, NewPermissionError(userID, "declare winners for", "event")
	}

	declared, err := s.repo.Winners().ExistsForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing winners: %w", err)
	}
	if declared {
		return nil, ErrWinnersAlreadyDeclared
	}

	// Every declared winner must be a registered participant whose
	// attendance was confirmed.
	winners := make([]*models.Winner, 0, len(req.Winners))
	now := time.Now().UTC()
	for _, entry := range req.Winners {
		registration, err := s.repo.Registrations().GetByEventAndUser(ctx, eventID, entry.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewBusinessRuleError("winner_not_registered",
					fmt.Sprintf("user %s is not registered for this event", entry.UserID))
			}
			return nil, fmt.Errorf("failed to check registration: %w", err)
		}

		if !registration.Attended {
			return nil, NewBusinessRuleError("winner_not_attended",
				fmt.Sprintf("user %s did not attend this event", entry.UserID))
		}

		winners = append(winners, &models.Winner{
			EventID:    eventID,
			EventTitle: event.Title,
			Position:   entry.Position,
			UserID:     registration.UserID,
			UserName:   registration.UserName,
			UserPhoto:  registration.UserPhoto,
			ApprovedBy: userID,
			ApprovedAt: now,
		})
	}

	announcement := s.buildWinnerAnnouncement(event, user, winners)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Winners().CreateBatch(ctx, winners); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrWinnersAlreadyDeclared
			}
			return fmt.Errorf("failed to create winners: %w", err)
		}
		if err := txRepo.Announcements().Create(ctx, announcement); err != nil {
			return fmt.Errorf("failed to create winner announcement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishWinnerEvents(ctx, event, announcement, winners)

	s.logger.Info("Winners declared", "event_id", eventID, "approved_by", userID)
	return winners, nil
}

func (s *winnerService) ListByEvent(ctx context.Context, eventID uint) ([]*models.Winner, error) {
	winners, err := s.repo.Winners().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

func (s *winnerService) ListRecent(ctx context.Context, limit, offset int) (*WinnerListResponse, error) {
	winners, total, err := s.repo.Winners().List(ctx, repositories.WinnerFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}

	return &WinnerListResponse{
		Winners: winners,
		Total:   total,
	}, nil
}

func (s *winnerService) buildWinnerAnnouncement(event *models.Event, actor *models.User, winners []*models.Winner) *models.Announcement {
	names := make([]string, 0, len(winners))
	for _, w := range winners {
		names = append(names, fmt.Sprintf("%d. %s", w.Position, w.UserName))
	}

	return &models.Announcement{
		Title:    fmt.Sprintf("Winners announced for %s!", event.Title),
		Content:  fmt.Sprintf("Congratulations to the winners of %s: %s", event.Title, strings.Join(names, ", ")),
		Author:   actor.DisplayName,
		AuthorID: actor.ID,
		Priority: models.PriorityHigh,
	}
}

func (s *winnerService) publishWinnerEvents(ctx context.Context, event *models.Event, announcement *models.Announcement, winners []*models.Winner) {
	userIDs := make([]string, 0, len(winners))
	for _, w := range winners {
		userIDs = append(userIDs, w.UserID)
	}

	declaredEvent := events.NewEvent(events.TypeWinnersDeclared, &events.WinnersDeclaredEvent{
		EventID:    event.ID,
		EventTitle: event.Title,
		UserIDs:    userIDs,
	})
	if err := s.publisher.Publish(ctx, events.TopicWinners, declaredEvent); err != nil {
		s.logger.Error("failed to publish winners event", "event_id", event.ID, "error", err)
	}

	announcementEvent := events.NewEvent(events.TypeAnnouncementCreated, &events.AnnouncementCreatedEvent{
		AnnouncementID: announcement.ID,
		Title:          announcement.Title,
		Content:        announcement.Content,
		Priority:       string(announcement.Priority),
		Author:         announcement.Author,
	})
	if err := s.publisher.Publish(ctx, events.TopicAnnouncements, announcementEvent); err != nil {
		s.logger.Error("failed to publish winner announcement", "announcement_id", announcement.ID, "error", err)
	}
}
