// Package app configures and runs the planme backend.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/pratik-71/planme-backend/internal/alarm"
	"github.com/pratik-71/planme-backend/internal/config"
	deliveryhttp "github.com/pratik-71/planme-backend/internal/delivery/http"
	"github.com/pratik-71/planme-backend/internal/planner"
	"github.com/pratik-71/planme-backend/internal/planner/db"
	"github.com/pratik-71/planme-backend/internal/planner/remote"
	"github.com/pratik-71/planme-backend/internal/usecase"
	"github.com/pratik-71/planme-backend/pkg/httpserver"
	"github.com/pratik-71/planme-backend/pkg/logger"
	"github.com/pratik-71/planme-backend/pkg/postgres"
)

func Run(cfg *config.Config) {
	l := logger.New(cfg.Log.Level, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repository
	var repo planner.Repository
	switch cfg.Store.Mode {
	case "remote":
		repo = remote.NewClient(cfg.Store.RemoteURL, l)
	default:
		if cfg.PG.URL == "" {
			l.Fatal(fmt.Errorf("app - Run - PG_URL is required in postgres mode"))
		}
		pg, err := postgres.New(ctx, l, cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
		}
		defer pg.Close()
		repo = db.NewRepository(pg, l)
	}

	// Alarms
	notifier := alarm.NewLogNotifier(l)
	coord := alarm.NewCoordinator(l, repo, notifier, alarm.Config{
		RescheduleDelay: cfg.Alarm.RescheduleDelay,
		MinLead:         cfg.Alarm.MinLead,
		RingTimeout:     cfg.Alarm.RingTimeout,
	})
	coord.Init()
	defer coord.Dispose()

	go func() {
		if err := coord.Reschedule(ctx); err != nil {
			l.Error("app - Run - coord.Reschedule", logger.Err(err))
		}
	}()

	svc := usecase.NewScheduleService(repo, coord, l)

	// HTTP Server
	s := chi.NewRouter()
	s.Use(corsMiddleware(cfg))
	deliveryhttp.NewHandler(l, repo, svc, coord).Routes(s)

	httpServer := httpserver.New(s,
		httpserver.Port(cfg.HTTP.IP, cfg.HTTP.Port),
		httpserver.ReadTimeout(cfg.HTTP.Timeout),
		httpserver.WriteTimeout(cfg.HTTP.Timeout),
	)

	l.Info("app - Run - listening", "addr", cfg.HTTP.IP+":"+cfg.HTTP.Port, "store", cfg.Store.Mode)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err := <-httpServer.Notify():
		l.Error("app - Run - httpServer.Notify", logger.Err(err))
	}

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error("app - Run - httpServer.Shutdown", logger.Err(err))
	}
}
