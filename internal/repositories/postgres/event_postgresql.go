package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/spk-college/techfest-service/internal/cache"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

var eventSortColumns = map[string]bool{
	"created_at": true,
	"event_date": true,
	"title":      true,
	"department": true,
}

type EventPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEventPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EventRepository {
	return &EventPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *EventPostgreSQL) Create(ctx context.Context, event *models.Event) error {
	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		return translateError(err, "event", event.Title)
	}

	_ = e.cacheManager.Event.InvalidatePattern(ctx, "list:*")
	return nil
}

// GetByID retrieves an event by ID with caching
func (e *EventPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var event models.Event

	err := e.cacheManager.Event.CacheOrExecute(ctx, cacheKey, &event, cache.EventTTL, func() (interface{}, error) {
		var dbEvent models.Event
		if err := e.db.WithContext(ctx).First(&dbEvent, id).Error; err != nil {
			return nil, translateError(err, "event", id)
		}
		return &dbEvent, nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// GetByIDs loads a batch of events in one query; missing ids are skipped.
func (e *EventPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Event, error) {
	if len(ids) == 0 {
		return []*models.Event{}, nil
	}

	var events []*models.Event
	if err := e.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get events by ids: %w", err)
	}

	return events, nil
}

func (e *EventPostgreSQL) List(ctx context.Context, filter repositories.EventFilter) ([]*models.Event, int64, error) {
	query := e.db.WithContext(ctx).Model(&models.Event{})
	query = e.applyFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query = applyPaginationAndSort(query, filter.Limit, filter.Offset, filter.SortBy, filter.SortOrder, eventSortColumns)

	var events []*models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

func (e *EventPostgreSQL) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := e.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, "event", id)
	}
	if result.RowsAffected == 0 {
		return repositories.NotFoundError("event", id)
	}

	_ = e.cacheManager.InvalidateEvent(ctx, id)
	return nil
}

func (e *EventPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Delete(&models.Event{}, id)
	if result.Error != nil {
		return translateError(result.Error, "event", id)
	}
	if result.RowsAffected == 0 {
		return repositories.NotFoundError("event", id)
	}

	_ = e.cacheManager.InvalidateEvent(ctx, id)
	return nil
}

// ClaimSlot increments current_participants only while capacity remains.
// The WHERE clause makes concurrent claims for the last slot serialize at
// the row lock: exactly one UPDATE matches, the rest see zero rows.
func (e *EventPostgreSQL) ClaimSlot(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND current_participants < max_participants", id).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to claim slot: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish a full event from a missing one.
		var count int64
		if err := e.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check event existence: %w", err)
		}
		if count == 0 {
			return repositories.NotFoundError("event", id)
		}
		return repositories.ErrCapacityExhausted
	}

	_ = e.cacheManager.InvalidateEvent(ctx, id)
	return nil
}

func (e *EventPostgreSQL) applyFilters(query *gorm.DB, filter repositories.EventFilter) *gorm.DB {
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	if len(filter.Departments) > 0 {
		query = query.Where("department IN ?", filter.Departments)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsLive != nil {
		query = query.Where("is_live = ?", *filter.IsLive)
	}
	if filter.EventHeadID != nil {
		query = query.Where("event_head_id = ?", *filter.EventHeadID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}
