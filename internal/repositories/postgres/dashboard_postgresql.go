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

// DashboardPostgreSQL aggregates the counters each role's landing page
// shows. Counts are cached briefly since every page load hits them.
type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (d *DashboardPostgreSQL) GetAdminStats(ctx context.Context) (*repositories.AdminStats, error) {
	var stats repositories.AdminStats

	err := d.cacheManager.Stats.CacheOrExecute(ctx, "admin", &stats, cache.StatsTTL, func() (interface{}, error) {
		var s repositories.AdminStats

		if err := d.db.WithContext(ctx).Model(&models.Event{}).Count(&s.TotalEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count events: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.Event{}).Where("is_live = true").Count(&s.LiveEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count live events: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.Registration{}).Count(&s.TotalRegistrations).Error; err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.Announcement{}).Count(&s.TotalAnnouncements).Error; err != nil {
			return nil, fmt.Errorf("failed to count announcements: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.Winner{}).Distinct("event_id").Count(&s.EventsWithWinners).Error; err != nil {
			return nil, fmt.Errorf("failed to count events with winners: %w", err)
		}

		return &s, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (d *DashboardPostgreSQL) GetCoordinatorStats(ctx context.Context, department string) (*repositories.CoordinatorStats, error) {
	var stats repositories.CoordinatorStats

	cacheKey := fmt.Sprintf("coordinator:%s", department)
	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsTTL, func() (interface{}, error) {
		s := repositories.CoordinatorStats{Department: department}

		// Coordinators see their own department plus General events.
		deptScope := d.db.WithContext(ctx).Model(&models.Event{}).
			Where("department IN ?", []string{department, models.DepartmentGeneral})

		if err := deptScope.Session(&gorm.Session{}).Count(&s.DepartmentEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count department events: %w", err)
		}
		if err := deptScope.Session(&gorm.Session{}).Where("is_live = true").Count(&s.LiveEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count live events: %w", err)
		}

		err := d.db.WithContext(ctx).Model(&models.Registration{}).
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("events.department IN ?", []string{department, models.DepartmentGeneral}).
			Count(&s.TotalRegistrations).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}

		err = d.db.WithContext(ctx).Model(&models.Event{}).
			Where("department IN ? AND event_head_id IS NOT NULL", []string{department, models.DepartmentGeneral}).
			Distinct("event_head_id").
			Count(&s.AssignedEventHeads).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count event heads: %w", err)
		}

		return &s, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (d *DashboardPostgreSQL) GetEventHeadStats(ctx context.Context, userID string) (*repositories.EventHeadStats, error) {
	var stats repositories.EventHeadStats

	cacheKey := fmt.Sprintf("event_head:%s", userID)
	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsTTL, func() (interface{}, error) {
		var s repositories.EventHeadStats

		if err := d.db.WithContext(ctx).Model(&models.Event{}).Where("event_head_id = ?", userID).Count(&s.AssignedEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count assigned events: %w", err)
		}

		regScope := d.db.WithContext(ctx).Model(&models.Registration{}).
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("events.event_head_id = ?", userID)

		if err := regScope.Session(&gorm.Session{}).Count(&s.TotalRegistrations).Error; err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if err := regScope.Session(&gorm.Session{}).Where("registrations.attended = true").Count(&s.AttendedCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count attendance: %w", err)
		}

		return &s, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (d *DashboardPostgreSQL) GetParticipantStats(ctx context.Context, userID string) (*repositories.ParticipantStats, error) {
	var stats repositories.ParticipantStats

	cacheKey := fmt.Sprintf("participant:%s", userID)
	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsTTL, func() (interface{}, error) {
		var s repositories.ParticipantStats

		base := d.db.WithContext(ctx).Model(&models.Registration{}).Where("user_id = ?", userID)

		if err := base.Session(&gorm.Session{}).Count(&s.RegisteredEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if err := base.Session(&gorm.Session{}).Where("attended = true").Count(&s.AttendedEvents).Error; err != nil {
			return nil, fmt.Errorf("failed to count attended: %w", err)
		}
		if err := base.Session(&gorm.Session{}).Where("certificate_id IS NOT NULL").Count(&s.CertificatesIssued).Error; err != nil {
			return nil, fmt.Errorf("failed to count certificates: %w", err)
		}
		if err := d.db.WithContext(ctx).Model(&models.Winner{}).Where("user_id = ?", userID).Count(&s.Podiums).Error; err != nil {
			return nil, fmt.Errorf("failed to count podiums: %w", err)
		}

		return &s, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
