// Package ledger defines the record store used by the services and the single
// gate through which every ownership check passes.
package ledger

import (
	"context"
	"errors"

	"utang/internal/core"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Snapshot is every record a user owns, read at one point in time.
type Snapshot struct {
	UserID      string
	Debts       []core.Debt
	Payments    []core.Payment
	BudgetItems []core.BudgetItem
}

// Ports for the storage backends. Creating methods assign ID and CreatedAt.
type (
	DebtStore interface {
		ListDebts(ctx context.Context, userID string) ([]core.Debt, error)
		GetDebt(ctx context.Context, userID, id string) (core.Debt, error)
		CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		UpdateDebt(ctx context.Context, userID string, d core.Debt) (core.Debt, error)
		// DeleteDebt also removes the debt's payments.
		DeleteDebt(ctx context.Context, userID, id string) error
	}

	PaymentStore interface {
		ListPayments(ctx context.Context, userID string) ([]core.Payment, error)
		ListPaymentsByDebt(ctx context.Context, userID, debtID string) ([]core.Payment, error)
		CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		DeletePayment(ctx context.Context, userID, id string) error
	}

	BudgetStore interface {
		ListBudgetItems(ctx context.Context, userID string) ([]core.BudgetItem, error)
		GetBudgetItem(ctx context.Context, userID, id string) (core.BudgetItem, error)
		CreateBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error)
		UpdateBudgetItem(ctx context.Context, userID string, b core.BudgetItem) (core.BudgetItem, error)
		DeleteBudgetItem(ctx context.Context, userID, id string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	SnapshotReader interface {
		Snapshot(ctx context.Context, userID string) (Snapshot, error)
	}

	Repository interface {
		DebtStore
		PaymentStore
		BudgetStore
		UserStore
		SnapshotReader
		Close() error
	}
)
