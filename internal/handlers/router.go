package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/config"
	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/storage"
	"github.com/spk-college/techfest-service/internal/validator"
)

type HandlerManager struct {
	authHandler         *AuthHandler
	userHandler         *UserHandler
	eventHandler        *EventHandler
	registrationHandler *RegistrationHandler
	announcementHandler *AnnouncementHandler
	winnerHandler       *WinnerHandler
	dashboardHandler    *DashboardHandler
	exportHandler       *ExportHandler
	authMiddleware      *CasdoorAuthMiddleware
	repo                repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger *slog.Logger,
	casdoorConfig config.CasdoorConfig,
	repo repositories.Repository,
	uploader storage.Uploader,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, repo.Users())

	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), validator, logger),
		userHandler:         NewUserHandler(serviceManager.User(), uploader, validator, logger),
		eventHandler:        NewEventHandler(serviceManager.Event(), uploader, validator, logger),
		registrationHandler: NewRegistrationHandler(serviceManager.Registration(), validator, logger),
		announcementHandler: NewAnnouncementHandler(serviceManager.Announcement(), validator, logger),
		winnerHandler:       NewWinnerHandler(serviceManager.Winner(), validator, logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		exportHandler:       NewExportHandler(serviceManager.Export(), serviceManager.Certificate(), logger),
		authMiddleware:      authMiddleware,
		repo:                repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public routes; a valid token enriches responses with viewer state
	// but is never required here.
	public := v1.Group("")
	public.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		public.GET("/events", hm.eventHandler.ListEvents)
		public.GET("/events/:id", hm.eventHandler.GetEvent)
		public.GET("/events/:id/winners", hm.winnerHandler.ListEventWinners)
		public.GET("/announcements", hm.announcementHandler.ListAnnouncements)
		public.GET("/announcements/stream", hm.announcementHandler.StreamAnnouncements)
		public.GET("/winners", hm.winnerHandler.ListRecentWinners)

		public.POST("/auth/signup", hm.authHandler.SignUp)
		public.POST("/auth/signin", hm.authHandler.SignIn)
	}

	// Authenticated routes
	auth := v1.Group("")
	auth.Use(hm.authMiddleware.AuthMiddleware())
	{
		auth.GET("/auth/me", hm.authHandler.GetProfile)
		auth.POST("/auth/logout", hm.authHandler.Logout)

		// Participation
		auth.POST("/events/:id/register", hm.registrationHandler.Register)
		auth.GET("/registrations/me", hm.registrationHandler.ListMine)
		auth.GET("/registrations/:id/certificate", hm.exportHandler.DownloadCertificate)

		// Profile
		auth.POST("/users/me/photo", hm.userHandler.UploadPhoto)

		// Dashboard serves every role; the stats payload adapts
		auth.GET("/dashboard/stats", hm.dashboardHandler.GetStats)

		// Event management - Coordinators and Admins only
		manage := auth.Group("")
		manage.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator))
		{
			manage.POST("/events", hm.eventHandler.CreateEvent)
			manage.DELETE("/events/:id", hm.eventHandler.DeleteEvent)
			manage.PUT("/events/:id/event-head", hm.eventHandler.AssignEventHead)

			manage.POST("/announcements", hm.announcementHandler.CreateAnnouncement)
			manage.PUT("/announcements/:id", hm.announcementHandler.UpdateAnnouncement)
			manage.DELETE("/announcements/:id", hm.announcementHandler.DeleteAnnouncement)

			manage.GET("/users/event-heads", hm.userHandler.ListEventHeads)
		}

		// Event operations - the assigned event head also qualifies, which
		// the service layer checks per event.
		oversight := auth.Group("")
		oversight.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator, models.RoleEventHead))
		{
			oversight.PUT("/events/:id", hm.eventHandler.UpdateEvent)
			oversight.PATCH("/events/:id/live", hm.eventHandler.SetLive)
			oversight.POST("/events/:id/banner", hm.eventHandler.UploadBanner)
			oversight.POST("/events/:id/winners", hm.winnerHandler.DeclareWinners)

			oversight.GET("/events/:id/registrations", hm.registrationHandler.ListByEvent)
			oversight.PATCH("/registrations/:id/attendance", hm.registrationHandler.MarkAttendance)
			oversight.GET("/events/:id/export", hm.exportHandler.ExportParticipants)
		}

		// Admin-only surface: user administration and the festival-wide
		// registration export.
		admin := auth.Group("")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/users", hm.userHandler.ListUsers)
			admin.GET("/users/:id", hm.userHandler.GetUser)
			admin.PUT("/users/:id", hm.userHandler.UpdateUser)
			admin.DELETE("/users/:id", hm.userHandler.DeleteUser)

			admin.GET("/registrations/export", hm.exportHandler.ExportAllParticipants)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "techfest-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "techfest-service",
		})
	})
}
