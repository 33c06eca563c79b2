package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnanything/practice-backend/internal/adapter/postgres"
	cardrepo "github.com/learnanything/practice-backend/internal/adapter/postgres/card"
	eventrepo "github.com/learnanything/practice-backend/internal/adapter/postgres/reviewevent"
	sessionrepo "github.com/learnanything/practice-backend/internal/adapter/postgres/session"
	"github.com/learnanything/practice-backend/internal/config"
	"github.com/learnanything/practice-backend/internal/domain"
	"github.com/learnanything/practice-backend/internal/service/dashboard"
	"github.com/learnanything/practice-backend/internal/service/ingest"
	"github.com/learnanything/practice-backend/internal/service/practice"
	"github.com/learnanything/practice-backend/internal/transport/middleware"
	"github.com/learnanything/practice-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and HTTP handlers, starts the idle-session
// sweeper, and serves until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	cards := cardrepo.New(pool)
	events := eventrepo.New(pool)
	sessions := sessionrepo.New(pool)
	txm := postgres.NewTxManager(pool)

	practiceSvc := practice.NewService(logger, cards, events, sessions, txm,
		srsConfig(cfg.SRS),
		practice.Config{
			DefaultQueueSize: cfg.Session.DefaultQueueSize,
			MaxQueueSize:     cfg.Session.MaxQueueSize,
			IdleTimeout:      cfg.Session.IdleTimeout,
		},
	)
	ingestSvc := ingest.NewService(logger, cards, txm, cfg.SRS.DefaultEaseFactor)
	dashboardSvc := dashboard.NewService(logger, cards, events, sessions,
		dashboard.Config{
			AccuracyWindow:     cfg.Session.AccuracyWindow,
			RecentSessions:     cfg.Session.RecentSessions,
			StreakLookbackDays: cfg.Session.StreakLookbackDays,
		},
	)

	sweeper, err := practice.NewSweeper(logger, practiceSvc, cfg.Session.SweepInterval)
	if err != nil {
		return fmt.Errorf("create sweeper: %w", err)
	}
	sweeper.Start()
	defer func() {
		if err := sweeper.Shutdown(); err != nil {
			logger.Error("sweeper shutdown", slog.Any("error", err))
		}
	}()

	router := rest.NewRouter(rest.Handlers{
		Sessions:  rest.NewSessionHandler(practiceSvc, logger),
		Decks:     rest.NewDeckHandler(practiceSvc, ingestSvc, logger),
		Dashboard: rest.NewDashboardHandler(dashboardSvc, logger),
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
	})

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		limiter.Limit(cfg.Server.RateLimitPerMin),
	)(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func srsConfig(cfg config.SRSConfig) domain.SRSConfig {
	return domain.SRSConfig{
		DefaultEaseFactor:  cfg.DefaultEaseFactor,
		MinEaseFactor:      cfg.MinEaseFactor,
		MaxIntervalDays:    cfg.MaxIntervalDays,
		EasyInterval:       cfg.EasyInterval,
		FirstIntervalEasy:  cfg.FirstIntervalEasy,
		FirstIntervalMed:   cfg.FirstIntervalMed,
		FirstIntervalHard:  cfg.FirstIntervalHard,
		RelearnDelay:       cfg.RelearnDelay,
		AgainEasePenalty:   cfg.AgainEasePenalty,
		HardEasePenalty:    cfg.HardEasePenalty,
		EasyEaseBonus:      cfg.EasyEaseBonus,
		HardIntervalFactor: cfg.HardIntervalFactor,
		EasyIntervalFactor: cfg.EasyIntervalFactor,
	}
}
