package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api"
	"github.com/flockhq/flock/internal/auth"
	"github.com/flockhq/flock/internal/cell"
	"github.com/flockhq/flock/internal/config"
	"github.com/flockhq/flock/internal/database"
	"github.com/flockhq/flock/internal/fellowship"
	"github.com/flockhq/flock/internal/goal"
	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/performance"
	"github.com/flockhq/flock/internal/sweeper"
	"github.com/flockhq/flock/internal/team"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to resolve time location", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := auth.NewUserRepository(db.Pool())
	fellowshipRepo := fellowship.NewRepository(db.Pool())
	cellRepo := cell.NewRepository(db.Pool())
	teamRepo := team.NewRepository(db.Pool())
	inviteeRepo := invitee.NewRepository(db.Pool())
	goalRepo := goal.NewRepository(db.Pool())
	definitionRepo := achievement.NewDefinitionRepository(db.Pool())
	userAwardRepo := achievement.NewUserAwardRepository(db.Pool())
	teamAwardRepo := achievement.NewTeamAwardRepository(db.Pool())

	if err := achievement.SeedCatalog(ctx, definitionRepo); err != nil {
		slog.Error("failed to seed achievement catalog", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(userRepo, cfg.BcryptCost)
	if _, err := authService.BootstrapAdmin(ctx); err != nil {
		slog.Error("failed to bootstrap admin user", "error", err)
		os.Exit(1)
	}

	engine := achievement.NewEngine(definitionRepo, userAwardRepo, teamAwardRepo, inviteeRepo, loc)
	performanceService := performance.NewService(teamRepo, inviteeRepo, loc)

	sw := sweeper.New(engine, teamRepo, inviteeRepo, loc, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)
	go sw.Start(ctx)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:    db,
		Version:     cfg.Version,
		AuthService: authService,
		Users:       userRepo,
		Fellowships: fellowshipRepo,
		Cells:       cellRepo,
		Teams:       teamRepo,
		Invitees:    inviteeRepo,
		Goals:       goalRepo,
		Definitions: definitionRepo,
		UserAwards:  userAwardRepo,
		TeamAwards:  teamAwardRepo,
		Engine:      engine,
		Performance: performanceService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting flock server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
