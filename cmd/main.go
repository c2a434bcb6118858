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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Nihilantropy/ft-transcendence-sub006/brackets"
	"github.com/Nihilantropy/ft-transcendence-sub006/config"
	"github.com/Nihilantropy/ft-transcendence-sub006/db"
	"github.com/Nihilantropy/ft-transcendence-sub006/engine"
	"github.com/Nihilantropy/ft-transcendence-sub006/handlers"
	"github.com/Nihilantropy/ft-transcendence-sub006/middleware"
	"github.com/Nihilantropy/ft-transcendence-sub006/realtime"
	"github.com/Nihilantropy/ft-transcendence-sub006/repositories"
	api "github.com/Nihilantropy/ft-transcendence-sub006/routes"
	"github.com/Nihilantropy/ft-transcendence-sub006/services"
	"github.com/Nihilantropy/ft-transcendence-sub006/storage"
)

const janitorInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Persistence is optional. Without a database the server keeps
	// completed games in memory only.
	var gameRepo repositories.GameRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			}
		}()
		gameRepo = repositories.NewPostgresGameRepository(dbConn)
		logger.Info("database connection established")
	} else {
		gameRepo = repositories.NewInMemoryGameRepository()
		logger.Warn("DATABASE_URL not set, using in-memory game storage")
	}

	var archiver services.Archiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewArchiveService(uploader, logger)
		logger.Info("tournament archiving enabled")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()

	registry := engine.NewRegistry(hub, gameRepo, logger)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go registry.RunJanitor(janitorCtx, janitorInterval)

	gameService := services.NewGameService(registry, gameRepo, logger)
	tournamentService := services.NewTournamentService(
		brackets.NewSingleEliminationGenerator(),
		registry,
		hub,
		archiver,
		logger,
	)

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	gameHandler := handlers.NewGameHandler(gameService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, registry, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, auth, gameHandler, tournamentHandler, webSocketHandler)

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
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}

		stopJanitor()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to stop running matches", slog.Any("error", err))
		}
	}
	logger.Info("application exited")
}
