package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"utang/internal/amqp"
	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
	"utang/internal/sheets"
)

const defaultConcurrency = 4

// Users is what the worker needs to know about accounts.
type Users interface {
	GetUser(ctx context.Context, id string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// Reporter composes a user's report; services.DashboardService satisfies it.
type Reporter interface {
	Report(ctx context.Context, userID string) (core.Report, error)
}

// ReportWorker re-exports a user's report whenever their ledger changes.
type ReportWorker struct {
	users       Users
	reports     Reporter
	sheets      sheets.ReportWriter
	logger      *applog.Logger
	concurrency int
}

func NewReportWorker(users Users, reports Reporter, writer sheets.ReportWriter, logger *applog.Logger) *ReportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReportWorker{
		users:       users,
		reports:     reports,
		sheets:      writer,
		logger:      logger.WithComponent(applog.ComponentWorker),
		concurrency: defaultConcurrency,
	}
}

// HandleLedgerChange processes a single ledger change message from AMQP.
// Messages for users that no longer exist are acknowledged and dropped.
func (w *ReportWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		applog.FieldUserID, msg.UserID,
		applog.FieldEntity, msg.Entity,
		applog.FieldEntityID, msg.EntityID,
		applog.FieldOperation, msg.Operation)

	if _, err := w.users.GetUser(ctx, msg.UserID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			w.logger.WarnContext(ctx, "Dropping ledger change for unknown user", applog.FieldUserID, msg.UserID)
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	return w.export(ctx, msg.UserID)
}

// ProcessAll exports every user's report. It is the backup path for lost
// messages; one user's failure does not stop the others.
func (w *ReportWorker) ProcessAll(ctx context.Context) (int, error) {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var exported, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, u := range users {
		g.Go(func() error {
			if err := w.export(gctx, u.ID); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				w.logger.ErrorContext(gctx, "Report export failed",
					applog.FieldUserID, u.ID,
					applog.FieldError, err)
				return nil
			}
			exported.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(exported.Load()), err
	}

	w.logger.InfoContext(ctx, "Report sweep completed",
		"total", len(users),
		"exported", exported.Load(),
		"errors", failed.Load())
	if n := failed.Load(); n > 0 {
		return int(exported.Load()), fmt.Errorf("report export failed for %d user(s)", n)
	}
	return int(exported.Load()), nil
}

func (w *ReportWorker) export(ctx context.Context, userID string) error {
	report, err := w.reports.Report(ctx, userID)
	if err != nil {
		return fmt.Errorf("compose report: %w", err)
	}
	ref, err := w.sheets.WriteReport(ctx, report)
	if err != nil {
		return fmt.Errorf("write report to sheets: %w", err)
	}
	w.logger.InfoContext(ctx, "Report exported",
		applog.FieldUserID, userID,
		"sheets_ref", ref,
		applog.FieldCount, report.Summary.DebtCount)
	return nil
}
