package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

type announcementService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	bus       *events.ChannelBus
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnnouncementService(repo repositories.Repository, publisher events.EventPublisher, bus *events.ChannelBus, logger *slog.Logger, validator *validator.Validator) AnnouncementService {
	return &announcementService{
		repo:      repo,
		publisher: publisher,
		bus:       bus,
		logger:    logger,
		validator: validator,
	}
}

func (s *announcementService) Create(ctx context.Context, userID string, req *CreateAnnouncementRequest) (*AnnouncementResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleCoordinator {
		return nil, NewPermissionError(userID, "create", "announcement")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityLow
	}

	announcement := &models.Announcement{
		Title:    req.Title,
		Content:  req.Content,
		Author:   user.DisplayName,
		AuthorID: user.ID,
		Priority: priority,
	}

	if err := s.repo.Announcements().Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.publish(ctx, announcement)

	s.logger.Info("Announcement created", "announcement_id", announcement.ID, "author_id", userID)
	return s.buildResponse(announcement, user), nil
}

func (s *announcementService) List(ctx context.Context, page, size int) (*AnnouncementListResponse, error) {
	limit, offset := normalizePage(page, size)

	items, total, err := s.repo.Announcements().List(ctx, repositories.AnnouncementFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	responses := make([]*AnnouncementResponse, 0, len(items))
	for _, a := range items {
		responses = append(responses, &AnnouncementResponse{Announcement: a})
	}

	if page <= 0 {
		page = 1
	}

	return &AnnouncementListResponse{
		Announcements: responses,
		Total:         total,
		Page:          page,
		Size:          limit,
	}, nil
}

func (s *announcementService) Update(ctx context.Context, userID string, id uint, req *UpdateAnnouncementRequest) (*AnnouncementResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	announcement, err := s.repo.Announcements().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}

	if !s.canEdit(user, announcement) {
		return nil, NewPermissionError(userID, "update", "announcement")
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if len(updates) == 0 {
		return s.buildResponse(announcement, user), nil
	}
	updates["updated_at"] = time.Now()

	if err := s.repo.Announcements().Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}

	updated, err := s.repo.Announcements().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload announcement: %w", err)
	}

	return s.buildResponse(updated, user), nil
}

func (s *announcementService) Delete(ctx context.Context, userID string, id uint) error {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	announcement, err := s.repo.Announcements().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnnouncementNotFound
		}
		return fmt.Errorf("failed to get announcement: %w", err)
	}

	if !s.canEdit(user, announcement) {
		return NewPermissionError(userID, "delete", "announcement")
	}

	if err := s.repo.Announcements().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	s.logger.Info("Announcement deleted", "announcement_id", id, "user_id", userID)
	return nil
}

// Subscribe attaches a live stream of announcement events; the channel
// closes when ctx is cancelled.
func (s *announcementService) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return s.bus.Subscribe(ctx, events.TopicAnnouncements)
}

// Admins edit anything; coordinators edit their own.
func (s *announcementService) canEdit(user *models.User, announcement *models.Announcement) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.Role == models.RoleCoordinator && announcement.AuthorID == user.ID
}

func (s *announcementService) publish(ctx context.Context, announcement *models.Announcement) {
	event := events.NewEvent(events.TypeAnnouncementCreated, &events.AnnouncementCreatedEvent{
		AnnouncementID: announcement.ID,
		Title:          announcement.Title,
		Content:        announcement.Content,
		Priority:       string(announcement.Priority),
		Author:         announcement.Author,
	})
	if err := s.publisher.Publish(ctx, events.TopicAnnouncements, event); err != nil {
		s.logger.Error("failed to publish announcement", "announcement_id", announcement.ID, "error", err)
	}
}

func (s *announcementService) buildResponse(announcement *models.Announcement, user *models.User) *AnnouncementResponse {
	resp := &AnnouncementResponse{Announcement: announcement}
	if user != nil {
		resp.CanEdit = s.canEdit(user, announcement)
		resp.CanDelete = resp.CanEdit
	}
	return resp
}
