package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/config"
	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/handlers"
	"github.com/spk-college/techfest-service/internal/repositories/casdoor"
	"github.com/spk-college/techfest-service/internal/repositories/postgres"
	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/storage"
	"github.com/spk-college/techfest-service/internal/utils"
	"github.com/spk-college/techfest-service/internal/validator"
	"github.com/spk-college/techfest-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewSlogLogger(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := pkg.InitDatabase(cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis; nil means running without cache
	redisClient := pkg.NewRedisClient(cfg.Redis, logger)

	// Initialize repositories
	casdoorConfig := casdoor.CasdoorConfig{
		Endpoint:         cfg.Casdoor.Endpoint,
		ClientID:         cfg.Casdoor.ClientID,
		ClientSecret:     cfg.Casdoor.ClientSecret,
		Certificate:      cfg.Casdoor.Certificate,
		OrganizationName: cfg.Casdoor.OrganizationName,
		ApplicationName:  cfg.Casdoor.ApplicationName,
	}
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:            db,
		RedisClient:   redisClient,
		CasdoorConfig: casdoorConfig,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize validator
	validator := validator.New()

	// Event pipeline: the channel bus always runs (it backs the SSE
	// stream); Kafka joins the fan-out when enabled.
	bus := events.NewChannelBus(logger)
	sinks := []events.EventPublisher{bus}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.Kafka.Brokers, logger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka publisher: %v", err)
		}
		sinks = append(sinks, kafkaPublisher)
	}
	publisher := events.NewFanOutPublisher(logger, sinks...)

	// Initialize services
	serviceManager := services.NewServiceManager(repoManager.GetRepository(), logger, validator, services.ServiceManagerConfig{
		CasdoorConfig: casdoorConfig,
		Publisher:     publisher,
		Bus:           bus,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Image storage is optional; uploads return 503 when unconfigured
	var uploader storage.Uploader
	if s3Uploader, err := storage.NewS3Uploader(cfg.Storage, logger); err != nil {
		logger.Warn("image storage disabled", "error", err)
	} else {
		uploader = s3Uploader
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, cfg.Casdoor, repoManager.GetRepository(), uploader)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services (closes the event publisher and bus)
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Close database and cache connections
	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	logger.Info("Server exited")
}
