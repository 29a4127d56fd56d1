package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culturemap/internal/auth"
	"culturemap/internal/catalog"
	"culturemap/internal/config"
	"culturemap/internal/database"
	"culturemap/internal/handlers"
	"culturemap/internal/jobs"
	"culturemap/internal/lcsd"
	"culturemap/internal/repository"
	"culturemap/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Resolve the venue allow-list: env override first, chosen-venue file
	// otherwise
	allowed := catalog.NewAllowList(cfg.Feed.ChosenVenues)
	if len(allowed) == 0 {
		allowed, err = catalog.LoadAllowList(filepath.Join(cfg.Feed.DataDir, "chosen_venue.json"))
		if err != nil {
			logger.Fatal("failed to load venue allow-list", zap.Error(err))
		}
	}
	logger.Info("venue allow-list loaded", zap.Int("venues", len(allowed)))

	// Initialize the sync engine
	repo := repository.NewCatalogRepository(database.GetDB())
	feedClient := lcsd.NewClient(logger, cfg.Feed.VenueURL, cfg.Feed.EventURL)
	syncService := services.NewSyncService(repo, feedClient, allowed, cfg.Feed.DataDir, logger)

	// First pass is awaited; the process is not ready until it completes.
	// A failed feed is logged, never fatal.
	logger.Info("running initial catalog sync")
	if err := syncService.Run(context.Background(), services.SyncOptions{
		ResetData:    cfg.Feed.ResetOnBoot,
		UseLocalData: cfg.Feed.UseLocalData,
	}); err != nil {
		logger.Error("initial sync finished with errors", zap.Error(err))
	}

	// Background sync job: periodic passes plus login-triggered passes
	syncJob := jobs.NewSyncJob(syncService, logger)
	syncJob.Start(cfg.Feed.SyncInterval)
	defer syncJob.Stop()

	// Session store owns the live login tokens for the process lifetime
	sessions := auth.NewMemorySessionStore()
	defer sessions.Clear()

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	userService := services.NewUserService(database.GetDB())
	venueService := services.NewVenueService(database.GetDB())
	eventService := services.NewEventService(database.GetDB())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessions, syncJob, logger)
	userHandler := handlers.NewUserHandler(authService, userService, logger)
	venueHandler := handlers.NewVenueHandler(venueService, logger)
	eventHandler := handlers.NewEventHandler(eventService, logger)

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5000",
			"http://localhost:8082",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)
	router.POST("/user/register", authHandler.Register)

	// Authenticated user routes
	user := router.Group("/")
	user.Use(auth.UserMiddleware(sessions))
	{
		user.GET("/user/current", authHandler.GetCurrentUser)

		user.GET("/locations", venueHandler.ListVenues)
		user.GET("/location/getall", venueHandler.ListVenues)
		user.GET("/location/:location_id", venueHandler.GetVenue)
		user.POST("/location/addcomment", venueHandler.AddComment)
		user.POST("/location/toggle_fav", venueHandler.ToggleFavorite)

		user.GET("/event/getall", eventHandler.ListEvents)
		user.POST("/event/toggle_fav", eventHandler.ToggleFavorite)
	}

	// Admin routes
	admin := router.Group("/")
	admin.Use(auth.AdminMiddleware(sessions))
	{
		admin.POST("/user/create", userHandler.CreateUser)
		admin.GET("/user/getall", userHandler.ListUsers)
		admin.PUT("/user/:username", userHandler.UpdateUser)
		admin.DELETE("/user/:username", userHandler.DeleteUser)

		admin.POST("/event/create", eventHandler.CreateEvent)
		admin.PUT("/event/:event_id", eventHandler.UpdateEvent)
		admin.DELETE("/event/:event_id", eventHandler.DeleteEvent)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
