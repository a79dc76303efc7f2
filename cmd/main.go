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

	"github.com/Dosada05/practice-system/config"
	"github.com/Dosada05/practice-system/db"
	"github.com/Dosada05/practice-system/game"
	"github.com/Dosada05/practice-system/handlers"
	"github.com/Dosada05/practice-system/live"
	"github.com/Dosada05/practice-system/middleware"
	"github.com/Dosada05/practice-system/repositories"
	api "github.com/Dosada05/practice-system/routes"
	"github.com/Dosada05/practice-system/scheduler"
	"github.com/Dosada05/practice-system/services"
	"github.com/Dosada05/practice-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
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
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewR2Uploader(storage.R2Config{
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

	hub := live.NewHub(logger)
	go hub.Run()
	notifier := live.NewNotifier(hub)
	world := game.NewLogWorld(logger)
	logger.Info("websocket hub started")

	sched, err := scheduler.NewGocron()
	if err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	arenaRepo := repositories.NewPostgresArenaRepository(dbConn)
	kitRepo := repositories.NewPostgresKitRepository(dbConn)

	arenaService := services.NewArenaService(arenaRepo)
	kitService := services.NewKitService(kitRepo, uploader)
	authService := services.NewAuthService(cfg.AdminName, cfg.AdminPasswordHash, cfg.JWTSecretKey)
	partyService := services.NewPartyService(hub, notifier, sched, logger)
	matchService := services.NewMatchService(arenaService, kitService, partyService, world, notifier, sched, logger)
	duelService := services.NewDuelService(arenaService, kitService, matchService, hub, world, notifier, sched, logger)
	matchService.BindDuelLookup(duelService)
	queueService := services.NewQueueService(kitService, partyService, matchService, duelService, hub, notifier, logger)

	hydrateCtx, cancelHydrate := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHydrate()
	if err := arenaService.Hydrate(hydrateCtx); err != nil {
		logger.Error("failed to hydrate arenas", slog.Any("error", err))
		os.Exit(1)
	}
	if err := kitService.Hydrate(hydrateCtx); err != nil {
		logger.Error("failed to hydrate kits", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("registries hydrated",
		slog.Int("arenas", len(arenaService.List())),
		slog.Int("kits", len(kitService.List())))

	auth := middleware.NewAuth(cfg.JWTSecretKey)
	router := chi.NewRouter()
	api.SetupRoutes(router, auth, api.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Arena:     handlers.NewArenaHandler(arenaService),
		Kit:       handlers.NewKitHandler(kitService),
		Party:     handlers.NewPartyHandler(partyService),
		Match:     handlers.NewMatchHandler(matchService),
		Duel:      handlers.NewDuelHandler(duelService),
		Queue:     handlers.NewQueueHandler(queueService),
		Events:    handlers.NewEventsHandler(matchService, duelService, queueService, partyService),
		WebSocket: handlers.NewWebSocketHandler(hub, logger),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
	}

	// Stop timers and release reservations before the process exits.
	matchService.Shutdown()
	duelService.Shutdown()
	partyService.Shutdown()
	arenaService.ReleaseAll()
	if err := sched.Shutdown(); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	logger.Info("application exited")
}
