package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

var registrationSortColumns = map[string]bool{
	"registered_at": true,
	"user_name":     true,
	"event_title":   true,
}

// RegistrationPostgreSQL is deliberately uncached: registrations are the
// hottest write path during the festival and stale reads here would show
// wrong attendance.
type RegistrationPostgreSQL struct {
	db *gorm.DB
}

func NewRegistrationPostgreSQL(db *gorm.DB) repositories.RegistrationRepository {
	return &RegistrationPostgreSQL{db: db}
}

func (r *RegistrationPostgreSQL) Create(ctx context.Context, registration *models.Registration) error {
	if err := r.db.WithContext(ctx).Create(registration).Error; err != nil {
		return translateError(err, "registration", registration.EventID)
	}
	return nil
}

func (r *RegistrationPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Registration, error) {
	var registration models.Registration
	if err := r.db.WithContext(ctx).First(&registration, id).Error; err != nil {
		return nil, translateError(err, "registration", id)
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) GetByEventAndUser(ctx context.Context, eventID uint, userID string) (*models.Registration, error) {
	var registration models.Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&registration).Error
	if err != nil {
		return nil, translateError(err, "registration", fmt.Sprintf("%d/%s", eventID, userID))
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) List(ctx context.Context, filter repositories.RegistrationFilter) ([]*models.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{})

	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Attended != nil {
		query = query.Where("attended = ?", *filter.Attended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "registered_at"
	}
	query = applyPaginationAndSort(query, filter.Limit, filter.Offset, sortBy, filter.SortOrder, registrationSortColumns)

	var registrations []*models.Registration
	if err := query.Find(&registrations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list registrations: %w", err)
	}

	return registrations, total, nil
}

func (r *RegistrationPostgreSQL) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, "registration", id)
	}
	if result.RowsAffected == 0 {
		return repositories.NotFoundError("registration", id)
	}
	return nil
}

func (r *RegistrationPostgreSQL) CountAttended(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ? AND attended = true", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}
