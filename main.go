package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/auth"
	"github.com/confhub/proposal-service/internal/config"
	"github.com/confhub/proposal-service/internal/events"
	"github.com/confhub/proposal-service/internal/handlers"
	"github.com/confhub/proposal-service/internal/repositories/postgres"
	"github.com/confhub/proposal-service/internal/search"
	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/storage"
	"github.com/confhub/proposal-service/internal/utils"
	"github.com/confhub/proposal-service/internal/validator"
	"github.com/confhub/proposal-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis backs sessions, caching and rate limiting
	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL is required")
	}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize validator
	v := validator.New()

	// Initialize search index
	var index search.ProposalIndex = search.NewNoopIndex()
	if cfg.SearchEnabled() {
		index = search.NewAlgoliaIndex(cfg.Algolia.AppID, cfg.Algolia.APIKey, cfg.Algolia.IndexName)
	}

	// Initialize event transport: Kafka in production, in-process otherwise
	wmLogger := watermill.NewSlogLogger(slogLogger)

	var eventPublisher message.Publisher
	var eventSubscriber message.Subscriber
	if len(cfg.Kafka.Brokers) > 0 {
		eventPublisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, wmLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
		eventSubscriber, err = events.NewKafkaSubscriber(cfg.Kafka.Brokers, "proposal-service-notifications", wmLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka subscriber: %v", err)
		}
	} else {
		pubSub := events.NewGoChannelPubSub(wmLogger)
		eventPublisher = pubSub
		eventSubscriber = pubSub
	}

	publisher := events.NewPublisher(eventPublisher)

	// Notification router consumes domain events and queues notification jobs
	notificationRouter, err := events.NewNotificationRouter(eventSubscriber, eventPublisher, wmLogger)
	if err != nil {
		log.Fatalf("Failed to initialize notification router: %v", err)
	}
	routerCtx, routerCancel := context.WithCancel(context.Background())
	defer routerCancel()
	go func() {
		if err := notificationRouter.Run(routerCtx); err != nil {
			logger.Error("Notification router stopped", "error", err)
		}
	}()

	// Session store and file storage
	sessions := auth.NewSessionStore(redisClient, cfg.SessionTTL)
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(services.ServiceManagerDeps{
		Repo:      repoManager.GetRepository(),
		Logger:    slogLogger,
		Validator: v,
		Index:     index,
		Publisher: publisher,
		Files:     files,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	rateLimiter := handlers.NewRateLimiter(redisClient, logger)
	handlerManager := handlers.NewHandlerManager(
		serviceManager,
		sessions,
		repoManager.GetRepository().User(),
		files,
		rateLimiter,
		cfg,
		logger,
	)

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

	// Stop the notification router
	routerCancel()
	if err := notificationRouter.Close(); err != nil {
		log.Printf("Failed to close notification router: %v", err)
	}

	// Shutdown services (closes the event publisher)
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Close database and Redis connections
	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	logger.Info("Server exited")
}
