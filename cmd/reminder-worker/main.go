package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"utang/internal/backend"
	"utang/internal/cli"
	"utang/internal/config"
	applog "utang/internal/log"
	"utang/internal/notify"
	"utang/internal/services"
)

// cronLogger routes the scheduler's own messages through the app logger.
type cronLogger struct {
	logger *applog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, applog.FieldError, err)...)
}

func main() {
	cfg, logger := cli.Bootstrap(config.RoleReminderWorker, applog.ComponentReminder)
	logger.Info("Starting reminder-worker",
		"schedule", cfg.ReminderSchedule,
		"days_ahead", cfg.ReminderDaysAhead)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	// reminders only read, so ledger events are never published from here
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	processor := services.NewReminderProcessor(res.Store, notify.NewEmailSender(cfg, logger), cfg.ReminderDaysAhead, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	cl := cronLogger{logger: logger}
	scheduler := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		if _, err := processor.Run(ctx, time.Now()); err != nil {
			logger.Error("Reminder run failed", applog.FieldError, err)
		}
	}); err != nil {
		logger.Error("Invalid reminder schedule", applog.FieldError, err, "schedule", cfg.ReminderSchedule)
		os.Exit(1)
	}
	scheduler.Start()

	cli.WaitForShutdown(ctx, done)

	// wait for a run in progress; it sees the cancelled context
	<-scheduler.Stop().Done()
	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", applog.FieldError, err)
	}
	logger.Info("Reminder worker stopped")
}
