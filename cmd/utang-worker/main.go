package main

import (
	"context"
	"errors"
	"os"
	"time"

	"utang/internal/amqp"
	"utang/internal/cli"
	"utang/internal/config"
	"utang/internal/core"
	applog "utang/internal/log"
	"utang/internal/services"
	gsheet "utang/internal/sheets/google"
	"utang/internal/storage"
	"utang/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(config.RoleReportWorker, applog.ComponentWorker)
	logger.Info("Starting utang-worker")

	if cfg.DataBackend != "sqlite" {
		logger.Error("The report worker reads the shared SQLite database; set DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleReportSheet)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Every message triggers a fresh read, so the worker keeps no cache.
	dashboard := services.NewDashboardService(repo, services.DashboardOptions{
		HorizonMonths: cfg.ProjectionHorizonMonths,
		Allocation:    core.ExtraAllocation(cfg.ExtraAllocation),
	}, logger)
	reports := worker.NewReportWorker(repo, dashboard, sheetsClient, logger)

	var sweeper *worker.Sweeper
	if cfg.ReportSweepInterval > 0 {
		sweeper = worker.NewSweeper(reports.ProcessAll, cfg.ReportSweepInterval, logger)
	}
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if sweeper != nil {
			if err := sweeper.Stop(ctx); err != nil {
				logger.Warn("Sweeper did not stop cleanly", applog.FieldError, err)
			}
		}
	})

	if sweeper != nil {
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("Failed to start report sweeper", applog.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Report sweep disabled")
	}

	if err := amqpClient.ConsumeLedgerChanges(ctx, reports.HandleLedgerChange); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
