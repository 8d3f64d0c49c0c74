package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MaturityMaxing/sportns/config"
	"github.com/MaturityMaxing/sportns/db"
	"github.com/MaturityMaxing/sportns/handlers"
	"github.com/MaturityMaxing/sportns/push"
	"github.com/MaturityMaxing/sportns/realtime"
	"github.com/MaturityMaxing/sportns/repositories"
	api "github.com/MaturityMaxing/sportns/routes"
	"github.com/MaturityMaxing/sportns/services"
	"github.com/MaturityMaxing/sportns/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const (
	sweepInterval  = 5 * time.Minute  // How often stale games are completed
	workerInterval = 30 * time.Second // How often the notification queue is drained
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Media storage (Cloudflare R2). Optional: without it the API runs, only
	// avatar and sport icon uploads are rejected.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Warn("R2 not configured, media uploads disabled")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("realtime hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	chatRepo := repositories.NewPostgresChatRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	policy := config.DefaultPolicy()

	notificationService := services.NewNotificationService(notificationRepo, logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	userService := services.NewUserService(userRepo, uploader, policy)
	sportService := services.NewSportService(sportRepo, uploader)
	gameService := services.NewGameService(
		txManager,
		gameRepo,
		rosterRepo,
		sportRepo,
		userRepo,
		hub,
		notificationService,
		policy,
		logger,
	)
	chatService := services.NewChatService(
		chatRepo,
		gameRepo,
		rosterRepo,
		userRepo,
		hub,
		notificationService,
		logger,
	)

	pushClient := push.NewClient(cfg.PushAPIURL, cfg.PushAPIKey)
	worker := services.NewNotificationWorker(
		notificationRepo,
		userRepo,
		pushClient,
		policy.WorkerBatchLimit,
		logger,
	)
	logger.Info("services initialized")

	// Stale game sweeper. Run once immediately at startup, then on ticker.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		logger.Info("stale game sweeper started", slog.Duration("interval", sweepInterval))

		if _, err := gameService.SweepStale(context.Background()); err != nil {
			logger.Error("sweeper: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if swept, err := gameService.SweepStale(context.Background()); err != nil {
				logger.Error("sweeper: periodic run failed", slog.Any("error", err))
			} else if swept > 0 {
				logger.Info("sweeper: completed stale games", slog.Int("count", swept))
			}
		}
	}()

	// Notification queue worker.
	go func() {
		ticker := time.NewTicker(workerInterval)
		defer ticker.Stop()
		logger.Info("notification worker started", slog.Duration("interval", workerInterval))

		for range ticker.C {
			if _, err := worker.Run(context.Background()); err != nil {
				logger.Error("notification worker run failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	gameHandler := handlers.NewGameHandler(gameService, chatService)
	chatHandler := handlers.NewChatHandler(chatService)
	sportHandler := handlers.NewSportHandler(sportService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	opsHandler := handlers.NewOpsHandler(gameService, worker)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		gameHandler,
		chatHandler,
		sportHandler,
		webSocketHandler,
		opsHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
