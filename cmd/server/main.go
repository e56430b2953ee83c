package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/config"
	"github.com/mamadbah2/factoryboard/internal/domain/models"
	"github.com/mamadbah2/factoryboard/internal/ingest"
	"github.com/mamadbah2/factoryboard/internal/metrics"
	"github.com/mamadbah2/factoryboard/internal/repository/mongodb"
	"github.com/mamadbah2/factoryboard/internal/repository/sheets"
	"github.com/mamadbah2/factoryboard/internal/scheduler"
	"github.com/mamadbah2/factoryboard/internal/server/handlers"
	"github.com/mamadbah2/factoryboard/internal/server/router"
	dashboardsvc "github.com/mamadbah2/factoryboard/internal/service/dashboard"
	reportingsvc "github.com/mamadbah2/factoryboard/internal/service/reporting"
	digestsvc "github.com/mamadbah2/factoryboard/internal/service/whatsapp"
	"github.com/mamadbah2/factoryboard/internal/store"
	whatsappclient "github.com/mamadbah2/factoryboard/pkg/clients/whatsapp"
	"github.com/mamadbah2/factoryboard/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var archive mongodb.Repository
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, metric history kept in memory")
		archive = mongodb.NewMemoryRepository(500)
	}

	initial, source := models.SampleDataset(), store.SourceSample
	if !cfg.Data.SampleEnabled {
		initial, source = nil, store.SourceEmpty
	}
	dataStore := store.New(initial, source, baseLogger.Named("store"))
	recorder := metrics.NewRecorder()
	recorder.SetVersion(dataStore.Snapshot().Version)

	reportingSvc := reportingsvc.NewService(dataStore, archive, baseLogger.Named("svc.reporting"))

	deps := dashboardsvc.Deps{
		Store:      dataStore,
		Parser:     ingest.NewParser(baseLogger.Named("ingest"), ingest.WithMaxBytes(cfg.Server.MaxUploadBytes)),
		Reporting:  reportingSvc,
		Archive:    archive,
		SheetRange: cfg.Sheets.Range,
		Recorder:   recorder,
		Logger:     baseLogger.Named("svc.dashboard"),
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		deps.Sheets = sheetsRepo
		baseLogger.Info("google sheet import enabled", zap.String("range", cfg.Sheets.Range))
	}
	dashboardSvc := dashboardsvc.NewService(deps)

	jobs := scheduler.Jobs{Snapshots: reportingSvc}
	if cfg.Sheets.Enabled() {
		jobs.Sheets = dashboardSvc
	}

	var digestSender handlers.DigestSender
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		digest := digestsvc.NewDigestService(whatsClient, reportingSvc, cfg.WhatsApp.DigestTo, baseLogger.Named("svc.digest"))
		digestSender = digest
		jobs.Digest = digest
		baseLogger.Info("whatsapp digest notifier enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, digest notifier disabled")
	}

	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc, digestSender, recorder, cfg.Server.MaxUploadBytes, baseLogger.Named("handlers.dashboard"))
	engine := router.New(dashboardHandler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched, err := scheduler.NewScheduler(cfg.Schedule, jobs, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Register(); err != nil {
		baseLogger.Fatal("failed to register scheduled jobs", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
