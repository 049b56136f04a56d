package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"

	_ "modernc.org/sqlite"
)

const (
	// fixed width so lexical order matches time order
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dateLayout      = "2006-01-02"
)

// SQLiteRepository implements ledger.Repository on a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
	now     func() time.Time
}

var _ ledger.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() (string, time.Time) {
	return uuid.NewString(), r.now().UTC()
}

// found turns sql.ErrNoRows into a false flag for ledger.Authorize.
func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID, u.CreatedAt = r.stamp()
	err := r.queries.CreateUser(ctx, User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Format(timestampLayout),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, ledger.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	ok, err := found(err)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return ledger.Authorize(toCoreUser(row), ok, id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	ok, err := found(err)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	if !ok {
		return core.User{}, ledger.ErrNotFound
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]core.User, len(rows))
	for i, row := range rows {
		out[i] = toCoreUser(row)
	}
	return out, nil
}

// Debts

func (r *SQLiteRepository) ListDebts(ctx context.Context, userID string) ([]core.Debt, error) {
	rows, err := r.queries.ListDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return mapRows(rows, toCoreDebt), nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, userID, id string) (core.Debt, error) {
	return r.getDebt(ctx, r.queries, userID, id)
}

func (r *SQLiteRepository) getDebt(ctx context.Context, q *Queries, userID, id string) (core.Debt, error) {
	row, err := q.GetDebt(ctx, id)
	ok, err := found(err)
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return ledger.Authorize(toCoreDebt(row), ok, userID)
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	d.ID, d.CreatedAt = r.stamp()
	if err := r.queries.CreateDebt(ctx, fromCoreDebt(d)); err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	r.logger.DebugContext(ctx, "Debt stored", applog.FieldUserID, d.UserID, applog.FieldDebtID, d.ID)
	return d, nil
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, userID string, d core.Debt) (core.Debt, error) {
	var out core.Debt
	err := r.withTx(ctx, func(q *Queries) error {
		existing, err := r.getDebt(ctx, q, userID, d.ID)
		if err != nil {
			return err
		}
		d.UserID, d.CreatedAt = existing.UserID, existing.CreatedAt
		if err := d.Validate(); err != nil {
			return err
		}
		if err := q.UpdateDebt(ctx, fromCoreDebt(d)); err != nil {
			return fmt.Errorf("update debt: %w", err)
		}
		out = d
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, userID, id string) error {
	return r.withTx(ctx, func(q *Queries) error {
		if _, err := r.getDebt(ctx, q, userID, id); err != nil {
			return err
		}
		if err := q.DeletePaymentsByDebt(ctx, id); err != nil {
			return fmt.Errorf("delete debt payments: %w", err)
		}
		if err := q.DeleteDebt(ctx, id); err != nil {
			return fmt.Errorf("delete debt: %w", err)
		}
		return nil
	})
}

// Payments

func (r *SQLiteRepository) ListPayments(ctx context.Context, userID string) ([]core.Payment, error) {
	rows, err := r.queries.ListPayments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return mapRows(rows, toCorePayment), nil
}

func (r *SQLiteRepository) ListPaymentsByDebt(ctx context.Context, userID, debtID string) ([]core.Payment, error) {
	if _, err := r.GetDebt(ctx, userID, debtID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListPaymentsByDebt(ctx, debtID)
	if err != nil {
		return nil, fmt.Errorf("list payments by debt: %w", err)
	}
	return mapRows(rows, toCorePayment), nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	err := r.withTx(ctx, func(q *Queries) error {
		if _, err := r.getDebt(ctx, q, p.UserID, p.DebtID); err != nil {
			return err
		}
		p.ID, p.CreatedAt = r.stamp()
		if err := q.CreatePayment(ctx, fromCorePayment(p)); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, userID, id string) error {
	return r.withTx(ctx, func(q *Queries) error {
		row, err := q.GetPayment(ctx, id)
		ok, err := found(err)
		if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}
		if _, err := ledger.Authorize(toCorePayment(row), ok, userID); err != nil {
			return err
		}
		if err := q.DeletePayment(ctx, id); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		return nil
	})
}

// Budget items

func (r *SQLiteRepository) ListBudgetItems(ctx context.Context, userID string) ([]core.BudgetItem, error) {
	rows, err := r.queries.ListBudgetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	return mapRows(rows, toCoreBudgetItem), nil
}

func (r *SQLiteRepository) GetBudgetItem(ctx context.Context, userID, id string) (core.BudgetItem, error) {
	return r.getBudgetItem(ctx, r.queries, userID, id)
}

func (r *SQLiteRepository) getBudgetItem(ctx context.Context, q *Queries, userID, id string) (core.BudgetItem, error) {
	row, err := q.GetBudgetItem(ctx, id)
	ok, err := found(err)
	if err != nil {
		return core.BudgetItem{}, fmt.Errorf("get budget item: %w", err)
	}
	return ledger.Authorize(toCoreBudgetItem(row), ok, userID)
}

func (r *SQLiteRepository) CreateBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	b.ID, b.CreatedAt = r.stamp()
	if err := r.queries.CreateBudgetItem(ctx, fromCoreBudgetItem(b)); err != nil {
		return core.BudgetItem{}, fmt.Errorf("create budget item: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudgetItem(ctx context.Context, userID string, b core.BudgetItem) (core.BudgetItem, error) {
	var out core.BudgetItem
	err := r.withTx(ctx, func(q *Queries) error {
		existing, err := r.getBudgetItem(ctx, q, userID, b.ID)
		if err != nil {
			return err
		}
		b.UserID, b.CreatedAt = existing.UserID, existing.CreatedAt
		if err := b.Validate(); err != nil {
			return err
		}
		if err := q.UpdateBudgetItem(ctx, fromCoreBudgetItem(b)); err != nil {
			return fmt.Errorf("update budget item: %w", err)
		}
		out = b
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteBudgetItem(ctx context.Context, userID, id string) error {
	return r.withTx(ctx, func(q *Queries) error {
		if _, err := r.getBudgetItem(ctx, q, userID, id); err != nil {
			return err
		}
		if err := q.DeleteBudgetItem(ctx, id); err != nil {
			return fmt.Errorf("delete budget item: %w", err)
		}
		return nil
	})
}

// Snapshot reads the user's records inside one transaction so debts and
// payments agree with each other.
func (r *SQLiteRepository) Snapshot(ctx context.Context, userID string) (ledger.Snapshot, error) {
	snap := ledger.Snapshot{UserID: userID}
	err := r.withTx(ctx, func(q *Queries) error {
		debts, err := q.ListDebts(ctx, userID)
		if err != nil {
			return fmt.Errorf("list debts: %w", err)
		}
		payments, err := q.ListPayments(ctx, userID)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		items, err := q.ListBudgetItems(ctx, userID)
		if err != nil {
			return fmt.Errorf("list budget items: %w", err)
		}
		snap.Debts = mapRows(debts, toCoreDebt)
		snap.Payments = mapRows(payments, toCorePayment)
		snap.BudgetItems = mapRows(items, toCoreBudgetItem)
		return nil
	})
	return snap, err
}

// Row conversion

func mapRows[R, T any](rows []R, conv func(R) T) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = conv(row)
	}
	return out
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(timestampLayout, s)
	return t
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    parseTimestamp(u.CreatedAt),
	}
}

func toCoreDebt(d Debt) core.Debt {
	return core.Debt{
		ID:             d.ID,
		UserID:         d.UserID,
		Name:           d.Name,
		Balance:        core.Money{Cents: d.BalanceCents},
		InterestRate:   core.RateFromBasisPoints(d.InterestRateBp),
		MinimumPayment: core.Money{Cents: d.MinimumPaymentCents},
		DueDay:         int(d.DueDay),
		Category:       core.DebtCategory(d.Category),
		Frequency:      core.PaymentFrequency(d.Frequency),
		CreatedAt:      parseTimestamp(d.CreatedAt),
	}
}

func fromCoreDebt(d core.Debt) Debt {
	return Debt{
		ID:                  d.ID,
		UserID:              d.UserID,
		Name:                d.Name,
		BalanceCents:        d.Balance.Cents,
		InterestRateBp:      d.InterestRate.BasisPoints(),
		MinimumPaymentCents: d.MinimumPayment.Cents,
		DueDay:              int64(d.DueDay),
		Category:            string(d.Category),
		Frequency:           string(d.Frequency),
		CreatedAt:           d.CreatedAt.Format(timestampLayout),
	}
}

func toCorePayment(p Payment) core.Payment {
	paid, _ := time.Parse(dateLayout, p.PaidAt)
	return core.Payment{
		ID:        p.ID,
		DebtID:    p.DebtID,
		UserID:    p.UserID,
		Amount:    core.Money{Cents: p.AmountCents},
		PaidAt:    core.Date{Time: paid},
		Kind:      core.PaymentKind(p.Kind),
		CreatedAt: parseTimestamp(p.CreatedAt),
	}
}

func fromCorePayment(p core.Payment) Payment {
	return Payment{
		ID:          p.ID,
		DebtID:      p.DebtID,
		UserID:      p.UserID,
		AmountCents: p.Amount.Cents,
		PaidAt:      p.PaidAt.Format(dateLayout),
		Kind:        string(p.Kind),
		CreatedAt:   p.CreatedAt.Format(timestampLayout),
	}
}

func toCoreBudgetItem(b BudgetItem) core.BudgetItem {
	return core.BudgetItem{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Amount:    core.Money{Cents: b.AmountCents},
		Category:  b.Category,
		Type:      core.ItemType(b.ItemType),
		Essential: b.IsEssential,
		Fixed:     b.IsFixed,
		Protected: b.IsProtected,
		CreatedAt: parseTimestamp(b.CreatedAt),
	}
}

func fromCoreBudgetItem(b core.BudgetItem) BudgetItem {
	return BudgetItem{
		ID:          b.ID,
		UserID:      b.UserID,
		Name:        b.Name,
		AmountCents: b.Amount.Cents,
		Category:    b.Category,
		ItemType:    string(b.Type),
		IsEssential: b.Essential,
		IsFixed:     b.Fixed,
		IsProtected: b.Protected,
		CreatedAt:   b.CreatedAt.Format(timestampLayout),
	}
}
