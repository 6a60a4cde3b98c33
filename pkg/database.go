package pkg

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spk-college/techfest-service/internal/config"
	"github.com/spk-college/techfest-service/internal/models"
)

// InitDatabase opens the Postgres connection, tunes the pool and migrates
// the schema.
func InitDatabase(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Warn

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Registration{},
		&models.Announcement{},
		&models.Winner{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("database connected", "host", cfg.Host, "db", cfg.Name)
	return db, nil
}
