package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

type eventService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEventService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) EventService {
	return &eventService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *eventService) Create(ctx context.Context, userID string, req *CreateEventRequest) (*EventResponse, error) {
	s.logger.Info("Creating event", "user_id", userID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateEventCreate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleAdmin:
	case models.RoleCoordinator:
		if !inDepartmentScope(user, req.Department) {
			return nil, NewPermissionError(userID, "create", "event outside department")
		}
	default:
		return nil, NewPermissionError(userID, "create", "event")
	}

	event := &models.Event{
		Title:           req.Title,
		Description:     req.Description,
		Banner:          req.Banner,
		Rules:           models.RulesValue(req.Rules),
		Eligibility:     req.Eligibility,
		MaxParticipants: req.MaxParticipants,
		EventDate:       req.EventDate,
		EventTime:       req.EventTime,
		Location:        req.Location,
		Category:        req.Category,
		Department:      req.Department,
		CreatedBy:       userID,
	}

	if err := s.repo.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Event created", "event_id", event.ID)
	return s.buildEventResponse(ctx, event, user), nil
}

func (s *eventService) GetByID(ctx context.Context, userID string, id uint) (*EventResponse, error) {
	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	var user *models.User
	if userID != "" {
		// Ignore profile load failures on the public read path.
		user, _ = getUser(ctx, s.repo, userID)
	}

	return s.buildEventResponse(ctx, event, user), nil
}

func (s *eventService) List(ctx context.Context, userID string, req *ListEventsRequest) (*EventListResponse, error) {
	limit, offset := normalizePage(req.Page, req.Size)

	filter := repositories.EventFilter{
		Department: req.Department,
		Category:   req.Category,
		IsLive:     req.IsLive,
		Search:     req.Search,
		Limit:      limit,
		Offset:     offset,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}

	var user *models.User
	if userID != "" {
		user, _ = getUser(ctx, s.repo, userID)
	}

	// Coordinators browsing without an explicit department filter are scoped
	// to their own department plus General.
	if user != nil && user.Role == models.RoleCoordinator && req.Department == nil {
		filter.Departments = departmentScope(user)
	}

	eventList, total, err := s.repo.Events().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]*EventResponse, 0, len(eventList))
	for _, event := range eventList {
		responses = append(responses, s.buildEventResponse(ctx, event, user))
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	return &EventListResponse{
		Events: responses,
		Total:  total,
		Page:   page,
		Size:   limit,
	}, nil
}

func (s *eventService) Update(ctx context.Context, userID string, id uint, req *UpdateEventRequest) (*EventResponse, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !canEditEvent(user, event) {
		return nil, NewPermissionError(userID, "update", "event")
	}

	// Event heads may only touch the event's content, never its identity,
	// capacity, schedule, or department.
	if !canManageEvent(user, event) && touchesManagedFields(req) {
		return nil, NewPermissionError(userID, "change managed fields of", "event")
	}

	if errs := s.validator.GetBusinessValidator().ValidateEventUpdate(req, event); len(errs) > 0 {
		return nil, errs
	}

	if req.Department != nil && user.Role == models.RoleCoordinator && !inDepartmentScope(user, *req.Department) {
		return nil, NewPermissionError(userID, "move", "event to another department")
	}

	updates := s.applyEventUpdates(req)
	if len(updates) == 0 {
		return s.buildEventResponse(ctx, event, user), nil
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Events().Update(ctx, id, updates); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		// Keep the denormalised title on registrations in step.
		if req.Title != nil && *req.Title != event.Title {
			regs, err := listAllRegistrations(ctx, txRepo, repositories.RegistrationFilter{EventID: &id})
			if err != nil {
				return err
			}
			for _, reg := range regs {
				if err := txRepo.Registrations().Update(ctx, reg.ID, map[string]interface{}{
					"event_title": *req.Title,
				}); err != nil {
					return fmt.Errorf("failed to sync registration title: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload event: %w", err)
	}

	s.logger.Info("Event updated", "event_id", id, "user_id", userID)
	return s.buildEventResponse(ctx, updated, user), nil
}

func (s *eventService) Delete(ctx context.Context, userID string, id uint) error {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if !canManageEvent(user, event) {
		return NewPermissionError(userID, "delete", "event")
	}

	if event.CurrentParticipants > 0 {
		return NewBusinessRuleError("event_has_registrations",
			"cannot delete an event with registered participants")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Winners().DeleteByEvent(ctx, id); err != nil {
			return fmt.Errorf("failed to delete event winners: %w", err)
		}
		if err := txRepo.Events().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Event deleted", "event_id", id, "user_id", userID)
	return nil
}

// ===== EVENT HEAD ASSIGNMENT =====

func (s *eventService) AssignEventHead(ctx context.Context, userID string, id uint, req *AssignEventHeadRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if !canManageEvent(user, event) {
		return NewPermissionError(userID, "assign event head for", "event")
	}

	head, err := getUser(ctx, s.repo, req.EventHeadID)
	if err != nil {
		return err
	}

	if head.Role != models.RoleEventHead {
		return NewBusinessRuleError("not_event_head",
			fmt.Sprintf("user %s does not have the event head role", head.ID))
	}

	// Coordinators may only assign heads from their own department.
	if user.Role == models.RoleCoordinator && head.Department != nil && !inDepartmentScope(user, *head.Department) {
		return NewPermissionError(userID, "assign", "event head from another department")
	}

	err = s.repo.Events().Update(ctx, id, map[string]interface{}{
		"event_head_id":   head.ID,
		"event_head_name": head.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("failed to assign event head: %w", err)
	}

	s.logger.Info("Event head assigned", "event_id", id, "event_head_id", head.ID)
	return nil
}

// ===== LIVE STATUS =====

// SetLive toggles the live flag. The status change, its system announcement
// and the bus publish happen together so subscribers never see a live event
// without its announcement.
func (s *eventService) SetLive(ctx context.Context, userID string, id uint, isLive bool) error {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if !canEditEvent(user, event) {
		return NewPermissionError(userID, "change live status of", "event")
	}

	if event.IsLive == isLive {
		return nil
	}

	announcement := s.buildStatusAnnouncement(event, user, isLive)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Events().Update(ctx, id, map[string]interface{}{"is_live": isLive}); err != nil {
			return fmt.Errorf("failed to update live status: %w", err)
		}
		if err := txRepo.Announcements().Create(ctx, announcement); err != nil {
			return fmt.Errorf("failed to create status announcement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	eventType := events.TypeEventEnded
	if isLive {
		eventType = events.TypeEventLive
	}
	s.publishStatusEvents(ctx, event, announcement, eventType, isLive)

	s.logger.Info("Event live status changed", "event_id", id, "is_live", isLive)
	return nil
}

func (s *eventService) UpdateBanner(ctx context.Context, userID string, id uint, bannerURL string) error {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	event, err := s.repo.Events().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	if !canEditEvent(user, event) {
		return NewPermissionError(userID, "update banner of", "event")
	}

	return s.repo.Events().Update(ctx, id, map[string]interface{}{"banner": bannerURL})
}

// ===== HELPERS =====

func (s *eventService) buildStatusAnnouncement(event *models.Event, actor *models.User, isLive bool) *models.Announcement {
	if isLive {
		return &models.Announcement{
			Title:    fmt.Sprintf("%s is now LIVE!", event.Title),
			Content:  fmt.Sprintf("%s is now live at %s. Head over and take part!", event.Title, event.Location),
			Author:   actor.DisplayName,
			AuthorID: actor.ID,
			Priority: models.PriorityHigh,
		}
	}
	return &models.Announcement{
		Title:    fmt.Sprintf("%s has ended", event.Title),
		Content:  fmt.Sprintf("%s has ended. Thanks to everyone who participated!", event.Title),
		Author:   actor.DisplayName,
		AuthorID: actor.ID,
		Priority: models.PriorityMedium,
	}
}

func (s *eventService) publishStatusEvents(ctx context.Context, event *models.Event, announcement *models.Announcement, eventType string, isLive bool) {
	statusEvent := events.NewEvent(eventType, &events.EventStatusEvent{
		EventID: event.ID,
		Title:   event.Title,
		IsLive:  isLive,
	})
	if err := s.publisher.Publish(ctx, events.TopicEvents, statusEvent); err != nil {
		s.logger.Error("failed to publish event status", "event_id", event.ID, "error", err)
	}

	announcementEvent := events.NewEvent(events.TypeAnnouncementCreated, &events.AnnouncementCreatedEvent{
		AnnouncementID: announcement.ID,
		Title:          announcement.Title,
		Content:        announcement.Content,
		Priority:       string(announcement.Priority),
		Author:         announcement.Author,
	})
	if err := s.publisher.Publish(ctx, events.TopicAnnouncements, announcementEvent); err != nil {
		s.logger.Error("failed to publish announcement", "announcement_id", announcement.ID, "error", err)
	}
}

// touchesManagedFields reports whether req goes beyond the description and
// banner an event head is allowed to edit.
func touchesManagedFields(req *UpdateEventRequest) bool {
	return req.Title != nil || req.Rules != nil || req.Eligibility != nil ||
		req.MaxParticipants != nil || req.EventDate != nil || req.EventTime != nil ||
		req.Location != nil || req.Category != nil || req.Department != nil
}

func (s *eventService) applyEventUpdates(req *UpdateEventRequest) map[string]interface{} {
	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Banner != nil {
		updates["banner"] = *req.Banner
	}
	if req.Rules != nil {
		updates["rules"] = models.RulesValue(req.Rules)
	}
	if req.Eligibility != nil {
		updates["eligibility"] = *req.Eligibility
	}
	if req.MaxParticipants != nil {
		updates["max_participants"] = *req.MaxParticipants
	}
	if req.EventDate != nil {
		updates["event_date"] = *req.EventDate
	}
	if req.EventTime != nil {
		updates["event_time"] = *req.EventTime
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
	}

	return updates
}

func (s *eventService) buildEventResponse(ctx context.Context, event *models.Event, user *models.User) *EventResponse {
	resp := &EventResponse{
		Event:  event,
		IsFull: event.CurrentParticipants >= event.MaxParticipants,
	}

	if user != nil {
		resp.CanEdit = canEditEvent(user, event)
		resp.CanDelete = canManageEvent(user, event)

		if _, err := s.repo.Registrations().GetByEventAndUser(ctx, event.ID, user.ID); err == nil {
			resp.IsRegistered = true
		}
	}

	return resp
}
