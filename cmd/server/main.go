package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquagrid/internal/config"
	"aquagrid/internal/logger"
	"aquagrid/internal/metrics"
	"aquagrid/internal/routes"
	"aquagrid/internal/services"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	cooling, err := services.NewCoolingTable(cfg.CoolingProfile)
	if err != nil {
		logr.Fatal("invalid cooling profile", zap.Error(err))
	}

	ds, err := services.LoadDataset(services.DatasetOptionsFromConfig(cfg), clockwork.NewRealClock(), logr.Logger)
	if err != nil {
		logr.Fatal("failed to load dataset", zap.Error(err))
	}

	m := metrics.NewMetrics()
	m.RecordDataset(len(ds.Counties), len(ds.Utilities), len(ds.Baselines), ds.Ledger.Accepted, ds.Ledger.Discarded)

	svc := services.NewSimulationService(ds, cooling, m, logr.Logger)
	r := routes.NewRouter(ds, svc, cfg, logr, m)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("cooling_profile", cfg.CoolingProfile),
			zap.Bool("utility_layer", len(ds.Utilities) > 0),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
