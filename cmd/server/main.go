package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/internal/api"
	"github.com/rachitshah07/drone-survey-management-system/internal/config"
	"github.com/rachitshah07/drone-survey-management-system/internal/db"
	"github.com/rachitshah07/drone-survey-management-system/internal/metrics"
	"github.com/rachitshah07/drone-survey-management-system/internal/mission"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded", "config", cfg.String())

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close db", "error", err)
		}
	}()

	users := repository.NewUserRepository(d)
	drones := repository.NewDroneRepository(d)
	missions := repository.NewMissionRepository(d)

	m := metrics.New()
	coord := mission.NewCoordinator(d, missions, drones, m, logger)
	tracker := mission.NewProgressTracker(coord)

	router := api.NewServer(&api.Handlers{
		DB:          d,
		Users:       users,
		Drones:      drones,
		Missions:    missions,
		Coordinator: coord,
		Tracker:     tracker,
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenTTL:    cfg.Auth.TokenTTL,
		Logger:      logger,
	}, m)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
