package services

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
)

const defaultReminderConcurrency = 4

// Reminder is one due-date notice for one user.
type Reminder struct {
	UserID   string
	FullName string
	Email    string
	Item     core.DueItem
}

// Notifier delivers reminders.
type Notifier interface {
	NotifyDue(ctx context.Context, r Reminder) error
}

// ReminderSource lists users and reads their snapshots.
type ReminderSource interface {
	ListUsers(ctx context.Context) ([]core.User, error)
	ledger.SnapshotReader
}

// ReminderProcessor sends a notice for every unpaid debt due exactly
// daysAhead days from now, and again on the due day itself.
type ReminderProcessor struct {
	source      ReminderSource
	notifier    Notifier
	daysAhead   int
	concurrency int
	logger      *applog.Logger
}

func NewReminderProcessor(source ReminderSource, notifier Notifier, daysAhead int, logger *applog.Logger) *ReminderProcessor {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReminderProcessor{
		source:      source,
		notifier:    notifier,
		daysAhead:   daysAhead,
		concurrency: defaultReminderConcurrency,
		logger:      logger.WithComponent(applog.ComponentReminder),
	}
}

// Due returns the items of views that warrant a reminder at now. Dates
// already past this month count toward next month's payment.
func (p *ReminderProcessor) Due(views []core.DebtView, now time.Time) []core.DueItem {
	dueDay := make(map[string]int, len(views))
	for _, v := range views {
		dueDay[v.ID] = v.DueDay
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var out []core.DueItem
	for _, it := range core.UpcomingDue(views, now, p.daysAhead) {
		if it.Overdue {
			it.DueDate = core.NextDueDate(dueDay[it.DebtID], now)
			it.DaysUntilDue = int(it.DueDate.Sub(today).Hours() / 24)
			it.Overdue = false
			it.Upcoming = it.DaysUntilDue <= p.daysAhead
		}
		if it.DaysUntilDue == p.daysAhead || it.DaysUntilDue == 0 {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysUntilDue != out[j].DaysUntilDue {
			return out[i].DaysUntilDue < out[j].DaysUntilDue
		}
		return out[i].DebtID < out[j].DebtID
	})
	return out
}

// Run checks every user once and returns how many reminders went out. A
// failing user does not stop the others; failures are reported together.
func (p *ReminderProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	users, err := p.source.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, u := range users {
		if u.Email == "" {
			continue
		}
		g.Go(func() error {
			n, err := p.remindUser(gctx, u, now)
			sent.Add(int64(n))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				p.logger.ErrorContext(gctx, "Reminder run failed for user",
					applog.NewFields().WithUser(u.ID).WithError(err).WithOperation(applog.OpNotify).ToSlice()...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}

	p.logger.InfoContext(ctx, "Reminder run completed",
		"users", len(users),
		"sent", sent.Load(),
		"failed", failed.Load(),
		"days_ahead", p.daysAhead)

	if n := failed.Load(); n > 0 {
		return int(sent.Load()), fmt.Errorf("reminders failed for %d user(s)", n)
	}
	return int(sent.Load()), nil
}

func (p *ReminderProcessor) remindUser(ctx context.Context, u core.User, now time.Time) (int, error) {
	snap, err := p.source.Snapshot(ctx, u.ID)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}
	views, err := core.BuildDebtViews(snap.Debts, snap.Payments)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, item := range p.Due(views, now) {
		r := Reminder{UserID: u.ID, FullName: u.FullName, Email: u.Email, Item: item}
		if err := p.notifier.NotifyDue(ctx, r); err != nil {
			return sent, fmt.Errorf("notify %s: %w", item.DebtID, err)
		}
		sent++
	}
	return sent, nil
}
