package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/config"
	"github.com/woodtrack/sawmill/internal/repository/mongodb"
	sheetsrepo "github.com/woodtrack/sawmill/internal/repository/sheets"
	"github.com/woodtrack/sawmill/internal/scheduler"
	"github.com/woodtrack/sawmill/internal/server/handlers"
	"github.com/woodtrack/sawmill/internal/server/router"
	"github.com/woodtrack/sawmill/internal/service/designation"
	"github.com/woodtrack/sawmill/internal/service/drying"
	"github.com/woodtrack/sawmill/internal/service/movement"
	reportingsvc "github.com/woodtrack/sawmill/internal/service/reporting"
	"github.com/woodtrack/sawmill/internal/service/stock"
	workshopsvc "github.com/woodtrack/sawmill/internal/service/workshop"
	"github.com/woodtrack/sawmill/pkg/clients/notify"
	"github.com/woodtrack/sawmill/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.NewClient(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb client", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheetsrepo.Repository
	if cfg.Sheets.CredentialsPath != "" {
		sheetsRepo, err = sheetsrepo.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	refs := mongodb.NewReferenceStore(mongoClient)
	stocks := mongodb.NewStockStore(mongoClient)
	lumberArrivals := mongodb.NewLumberArrivalStore(mongoClient)
	lumberShipments := mongodb.NewLumberShipmentStore(mongoClient)
	logArrivals := mongodb.NewLogArrivalStore(mongoClient)
	logShipments := mongodb.NewLogShipmentStore(mongoClient)
	dryingBatches := mongodb.NewDryingStore(mongoClient)
	throughput := mongodb.NewWorkshopStore(mongoClient)
	reports := mongodb.NewReportStore(mongoClient)

	ledger := stock.NewLedger(stocks, stocks, baseLogger.Named("svc.stock"))
	resolver := designation.NewResolver(refs, baseLogger.Named("svc.designation"))

	lumberSvc := movement.NewLumberService(refs, ledger, lumberArrivals, lumberShipments, mongoClient, baseLogger.Named("svc.lumber"))
	logSvc := movement.NewLogService(refs, resolver, refs, ledger, logArrivals, logShipments, mongoClient, baseLogger.Named("svc.logs"))
	dryingSvc := drying.NewService(refs, refs, dryingBatches, lumberSvc, mongoClient, baseLogger.Named("svc.drying"))
	costs := workshopsvc.Costs{
		RawMaterialPerCubicMeter: decimal.NewFromFloat(cfg.Costs.RawMaterialPerCubicMeter),
		SawingPerCubicMeter:      decimal.NewFromFloat(cfg.Costs.SawingPerCubicMeter),
	}
	workshopSvc := workshopsvc.NewService(refs, throughput, lumberSvc, logSvc, mongoClient, costs, baseLogger.Named("svc.workshop"))
	reportingSvc := reportingsvc.NewService(stocks, stocks, refs, reports, sheetsRepo, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Lumber:    handlers.NewLumberHandler(lumberSvc, baseLogger.Named("handlers.lumber")),
		Logs:      handlers.NewLogHandler(logSvc, baseLogger.Named("handlers.logs")),
		Drying:    handlers.NewDryingHandler(dryingSvc, baseLogger.Named("handlers.drying")),
		Workshop:  handlers.NewWorkshopHandler(workshopSvc, baseLogger.Named("handlers.workshop")),
		Warehouse: handlers.NewWarehouseHandler(reportingSvc, baseLogger.Named("handlers.warehouse")),
	}, baseLogger.Named("router"))

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
	} else {
		baseLogger.Warn("notification webhook missing, report notifications disabled")
	}

	sched := scheduler.NewScheduler(*cfg, reportingSvc, notifier, baseLogger.Named("scheduler"))
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
