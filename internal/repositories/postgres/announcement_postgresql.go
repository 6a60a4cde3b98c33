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

var announcementSortColumns = map[string]bool{
	"created_at": true,
	"priority":   true,
}

type AnnouncementPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAnnouncementPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnnouncementRepository {
	return &AnnouncementPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AnnouncementPostgreSQL) Create(ctx context.Context, announcement *models.Announcement) error {
	if err := a.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return translateError(err, "announcement", announcement.Title)
	}

	_ = a.cacheManager.InvalidateAnnouncements(ctx)
	return nil
}

func (a *AnnouncementPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := a.db.WithContext(ctx).First(&announcement, id).Error; err != nil {
		return nil, translateError(err, "announcement", id)
	}
	return &announcement, nil
}

// List caches the default first page, which every dashboard fetches.
func (a *AnnouncementPostgreSQL) List(ctx context.Context, filter repositories.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	if a.isDefaultListing(filter) {
		type listPage struct {
			Items []*models.Announcement `json:"items"`
			Total int64                  `json:"total"`
		}

		var page listPage
		err := a.cacheManager.Announcement.CacheOrExecute(ctx, "list:recent", &page, cache.AnnouncementTTL, func() (interface{}, error) {
			items, total, err := a.listFromDB(ctx, filter)
			if err != nil {
				return nil, err
			}
			return &listPage{Items: items, Total: total}, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Items, page.Total, nil
	}

	return a.listFromDB(ctx, filter)
}

func (a *AnnouncementPostgreSQL) isDefaultListing(filter repositories.AnnouncementFilter) bool {
	return filter.Priority == nil && filter.AuthorID == nil &&
		filter.Offset == 0 && (filter.SortBy == "" || filter.SortBy == "created_at")
}

func (a *AnnouncementPostgreSQL) listFromDB(ctx context.Context, filter repositories.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Announcement{})

	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count announcements: %w", err)
	}

	query = applyPaginationAndSort(query, filter.Limit, filter.Offset, filter.SortBy, filter.SortOrder, announcementSortColumns)

	var announcements []*models.Announcement
	if err := query.Find(&announcements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list announcements: %w", err)
	}

	return announcements, total, nil
}

func (a *AnnouncementPostgreSQL) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := a.db.WithContext(ctx).Model(&models.Announcement{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, "announcement", id)
	}
	if result.RowsAffected == 0 {
		return repositories.NotFoundError("announcement", id)
	}

	_ = a.cacheManager.InvalidateAnnouncements(ctx)
	return nil
}

func (a *AnnouncementPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := a.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if result.Error != nil {
		return translateError(result.Error, "announcement", id)
	}
	if result.RowsAffected == 0 {
		return repositories.NotFoundError("announcement", id)
	}

	_ = a.cacheManager.InvalidateAnnouncements(ctx)
	return nil
}
