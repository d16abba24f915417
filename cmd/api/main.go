package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"demand-forecast-api/config"
	"demand-forecast-api/handlers"
	"demand-forecast-api/history"
	"demand-forecast-api/regressor"
	"demand-forecast-api/services"

	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		klog.ErrorS(err, "Failed to load config")
		os.Exit(1)
	}

	// Model and history are optional: the form stays up and reports what is
	// missing.
	model, modelErr := regressor.Load(ctx, regressor.Options{
		Path:         cfg.Model.Path,
		URL:          cfg.Model.URL,
		FeatureNames: cfg.Model.FeatureNames,
		Timeout:      cfg.Model.Timeout,
		ReadyTimeout: cfg.Model.ReadyTimeout,
	})
	if modelErr != nil {
		klog.ErrorS(modelErr, "Model not loaded, predictions disabled", "path", cfg.Model.Path, "url", cfg.Model.URL)
	} else {
		klog.InfoS("Model loaded", "version", model.Version(), "features", len(model.FeatureNames()))
	}

	dataset, historyErr := loadHistory(cfg.History)
	if historyErr != nil {
		klog.ErrorS(historyErr, "Historical dataset not loaded, comparisons disabled")
	} else {
		klog.InfoS("Historical dataset loaded", "source", dataset.Source(), "rows", dataset.Len(), "years", dataset.Years())
	}

	var cache *services.CacheService
	if cfg.Redis.Enabled {
		cache, err = services.NewCacheService(ctx, cfg.Redis)
		if err != nil {
			klog.ErrorS(err, "Redis unavailable, caching and live stream disabled", "addr", cfg.Redis.Addr())
		}
		defer cache.Close()
	}

	svc := services.NewPredictionService(services.PredictionDeps{
		Model:          model,
		ModelErr:       modelErr,
		History:        dataset,
		HistoryErr:     historyErr,
		Cache:          cache,
		Defaults:       cfg.Inputs,
		ReferenceYears: cfg.History.ReferenceYears,
		CacheTTL:       cfg.Redis.CacheTTL,
		Channel:        cfg.Redis.Channel,
	})

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Service: svc,
		Cache:   cache,
		CORS:    cfg.CORS,
		Channel: cfg.Redis.Channel,
	})
	if err != nil {
		klog.ErrorS(err, "Failed to build router")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		klog.InfoS("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	klog.InfoS("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		klog.ErrorS(err, "Graceful shutdown failed")
	}
}

// loadHistory prefers the database table when a DSN is configured.
func loadHistory(cfg config.HistoryConfig) (*history.Dataset, error) {
	if cfg.DSN != "" {
		db, err := history.OpenDB(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		return history.LoadDB(db, cfg.Table)
	}
	return history.LoadCSV(cfg.CSVPath)
}
