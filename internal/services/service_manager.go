package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/repositories/casdoor"
	"github.com/spk-college/techfest-service/internal/validator"
)

// ServiceManagerConfig holds the dependencies shared by all services.
type ServiceManagerConfig struct {
	CasdoorConfig casdoor.CasdoorConfig

	// Publisher fans events out to Kafka (when enabled) and the in-process
	// bus used for SSE.
	Publisher events.EventPublisher
	Bus       *events.ChannelBus
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	authService         AuthService
	userService         UserService
	eventService        EventService
	registrationService RegistrationService
	announcementService AnnouncementService
	winnerService       WinnerService
	dashboardService    DashboardService
	exportService       ExportService
	certificateService  CertificateService

	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.config.Publisher == nil {
		return fmt.Errorf("event publisher is required")
	}
	if sm.config.Bus == nil {
		return fmt.Errorf("channel bus is required")
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.config.CasdoorConfig, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.eventService = NewEventService(sm.repo, sm.config.Publisher, sm.logger, sm.validator)
	sm.registrationService = NewRegistrationService(sm.repo, sm.config.Publisher, sm.logger, sm.validator)
	sm.announcementService = NewAnnouncementService(sm.repo, sm.config.Publisher, sm.config.Bus, sm.logger, sm.validator)
	sm.winnerService = NewWinnerService(sm.repo, sm.config.Publisher, sm.logger, sm.validator)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger)
	sm.exportService = NewExportService(sm.repo, sm.logger)
	sm.certificateService = NewCertificateService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Event() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.eventService
}

func (sm *serviceManager) Registration() RegistrationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.registrationService
}

func (sm *serviceManager) Announcement() AnnouncementService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.announcementService
}

func (sm *serviceManager) Winner() WinnerService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.winnerService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.certificateService
}

// Shutdown closes the event publisher; repository shutdown is owned by the
// repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.config.Publisher.Close(); err != nil {
		return fmt.Errorf("failed to close event publisher: %w", err)
	}

	sm.initialized = false
	return nil
}
