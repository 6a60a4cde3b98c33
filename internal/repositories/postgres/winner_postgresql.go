package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

type WinnerPostgreSQL struct {
	db *gorm.DB
}

func NewWinnerPostgreSQL(db *gorm.DB) repositories.WinnerRepository {
	return &WinnerPostgreSQL{db: db}
}

// CreateBatch inserts the full podium in one statement so the unique index
// on (event_id, position) rejects the whole batch if any position exists.
func (w *WinnerPostgreSQL) CreateBatch(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	if err := w.db.WithContext(ctx).Create(winners).Error; err != nil {
		return translateError(err, "winners", winners[0].EventID)
	}
	return nil
}

func (w *WinnerPostgreSQL) ListByEvent(ctx context.Context, eventID uint) ([]*models.Winner, error) {
	var winners []*models.Winner
	err := w.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position ASC").
		Find(&winners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

func (w *WinnerPostgreSQL) List(ctx context.Context, filter repositories.WinnerFilter) ([]*models.Winner, int64, error) {
	query := w.db.WithContext(ctx).Model(&models.Winner{})

	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count winners: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var winners []*models.Winner
	err := query.
		Order("approved_at DESC, position ASC").
		Limit(limit).
		Offset(offset).
		Find(&winners).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list winners: %w", err)
	}

	return winners, total, nil
}

func (w *WinnerPostgreSQL) ExistsForEvent(ctx context.Context, eventID uint) (bool, error) {
	var count int64
	err := w.db.WithContext(ctx).Model(&models.Winner{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check winners: %w", err)
	}
	return count > 0, nil
}

func (w *WinnerPostgreSQL) DeleteByEvent(ctx context.Context, eventID uint) error {
	if err := w.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Winner{}).Error; err != nil {
		return fmt.Errorf("failed to delete winners: %w", err)
	}
	return nil
}
