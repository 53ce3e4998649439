package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/config"
	"github.com/mamadbah2/herdsman/internal/repository/mongodb"
	"github.com/mamadbah2/herdsman/internal/repository/sheets"
	"github.com/mamadbah2/herdsman/internal/scheduler"
	"github.com/mamadbah2/herdsman/internal/server/handlers"
	"github.com/mamadbah2/herdsman/internal/server/router"
	"github.com/mamadbah2/herdsman/internal/service/alerts"
	"github.com/mamadbah2/herdsman/internal/service/breeding"
	herdsvc "github.com/mamadbah2/herdsman/internal/service/herd"
	importersvc "github.com/mamadbah2/herdsman/internal/service/importer"
	notifysvc "github.com/mamadbah2/herdsman/internal/service/notify"
	slackclient "github.com/mamadbah2/herdsman/pkg/clients/slack"
	"github.com/mamadbah2/herdsman/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	params := breeding.Params{
		GestationDays:       cfg.Breeding.GestationDays,
		PregCheckOffsetDays: cfg.Breeding.PregCheckOffsetDays,
	}

	thresholds := alerts.Thresholds{
		DaysOpenOK:       cfg.Alerts.DaysOpenOK,
		DaysOpenLow:      cfg.Alerts.DaysOpenLow,
		DaysOpenMedium:   cfg.Alerts.DaysOpenMedium,
		InseminationOK:   cfg.Alerts.InseminationOK,
		InseminationHigh: cfg.Alerts.InseminationHigh,
		LookaheadDays:    cfg.Alerts.LookaheadDays,
	}
	if err := thresholds.Validate(); err != nil {
		baseLogger.Fatal("invalid alert thresholds", zap.Error(err))
	}

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	herdService := herdsvc.NewService(mongoRepo, params, thresholds, baseLogger.Named("svc.herd"))

	// Sheet import is optional: only wired when a spreadsheet is configured.
	var importerService *importersvc.Service
	if cfg.Sheets.SpreadsheetID != "" {
		sheetReader, err := sheets.NewGoogleSheetReader(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets reader", zap.Error(err))
		}
		importerService = importersvc.NewService(sheetReader, mongoRepo, cfg.Sheets.EventsRange, baseLogger.Named("svc.importer"))
		baseLogger.Info("sheet import enabled")
	} else {
		baseLogger.Warn("spreadsheet id missing, sheet import disabled")
	}

	// Digest delivery is optional as well.
	var notifier notifysvc.Notifier
	if cfg.Slack.WebhookURL != "" {
		notifier = notifysvc.NewSlackNotifier(slackclient.NewClient(cfg.Slack), baseLogger.Named("svc.notify"))
		baseLogger.Info("slack alert digest enabled")
	} else {
		baseLogger.Warn("slack webhook missing, alert digest disabled")
	}

	herdHandler := handlers.NewHerdHandler(herdService, importerService, baseLogger.Named("handlers.herd"))
	engine := router.New(herdHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, herdService, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
