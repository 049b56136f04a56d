package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"utang/internal/core"
	"utang/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "utang.db"), nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleDebt(userID string) core.Debt {
	return core.Debt{
		UserID:         userID,
		Name:           "Visa",
		Balance:        core.NewMoney(12_345, 67),
		InterestRate:   core.MustRate("24.99"),
		MinimumPayment: core.NewMoney(600, 0),
		DueDay:         31,
		Category:       core.CreditCard,
		Frequency:      core.Biweekly,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utang.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path, nil)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}

func TestDebtRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateDebt(ctx, sampleDebt("alice"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetDebt(ctx, "alice", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Balance.Cents != 1_234_567 || got.InterestRate.BasisPoints() != 2499 || got.DueDay != 31 || got.Frequency != core.Biweekly {
		t.Fatalf("fields lost in storage: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v vs %v", got.CreatedAt, created.CreatedAt)
	}

	if _, err := repo.GetDebt(ctx, "bob", created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign read should be not found, got %v", err)
	}
	if _, err := repo.GetDebt(ctx, "alice", "nope"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("missing read should be not found, got %v", err)
	}

	created.Name = "Visa Platinum"
	created.Balance = core.NewMoney(20_000, 0)
	if _, err := repo.UpdateDebt(ctx, "bob", created); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign update should be not found, got %v", err)
	}
	upd, err := repo.UpdateDebt(ctx, "alice", created)
	if err != nil || upd.Name != "Visa Platinum" {
		t.Fatalf("update failed: %+v %v", upd, err)
	}
	list, _ := repo.ListDebts(ctx, "alice")
	if len(list) != 1 || list[0].Balance.Cents != 2_000_000 {
		t.Fatalf("update not persisted: %+v", list)
	}
}

func TestDeleteDebtRemovesPayments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	d, _ := repo.CreateDebt(ctx, sampleDebt("alice"))
	other, _ := repo.CreateDebt(ctx, sampleDebt("alice"))

	for _, id := range []string{d.ID, d.ID, other.ID} {
		_, err := repo.CreatePayment(ctx, core.Payment{
			DebtID: id, UserID: "alice", Amount: core.NewMoney(100, 50), PaidAt: core.NewDate(2025, 2, 1), Kind: core.ExtraPayment,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.DeleteDebt(ctx, "bob", d.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}
	if err := repo.DeleteDebt(ctx, "alice", d.ID); err != nil {
		t.Fatal(err)
	}
	ps, _ := repo.ListPayments(ctx, "alice")
	if len(ps) != 1 || ps[0].DebtID != other.ID {
		t.Fatalf("expected one surviving payment, got %+v", ps)
	}
	if ps[0].PaidAt.Format("2006-01-02") != "2025-02-01" || ps[0].Amount.Cents != 10_050 {
		t.Fatalf("payment fields lost: %+v", ps[0])
	}
}

func TestPaymentOwnership(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	d, _ := repo.CreateDebt(ctx, sampleDebt("alice"))

	_, err := repo.CreatePayment(ctx, core.Payment{
		DebtID: d.ID, UserID: "bob", Amount: core.NewMoney(1, 0), PaidAt: core.NewDate(2025, 2, 1), Kind: core.MinimumPayment,
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("paying someone else's debt should be not found, got %v", err)
	}

	p, err := repo.CreatePayment(ctx, core.Payment{
		DebtID: d.ID, UserID: "alice", Amount: core.NewMoney(1, 0), PaidAt: core.NewDate(2025, 2, 1), Kind: core.MinimumPayment,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.DeletePayment(ctx, "bob", p.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign payment delete should be not found, got %v", err)
	}
	if _, err := repo.ListPaymentsByDebt(ctx, "bob", d.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign payment list should be not found, got %v", err)
	}
	if err := repo.DeletePayment(ctx, "alice", p.ID); err != nil {
		t.Fatal(err)
	}
}

func TestBudgetItemsAndSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	items := []core.BudgetItem{
		{UserID: "alice", Name: "Salary", Amount: core.NewMoney(50_000, 0), Category: "salary", Type: core.Income},
		{UserID: "alice", Name: "Food", Amount: core.NewMoney(8_000, 0), Category: "food", Type: core.Expense, Protected: true, Essential: true},
		{UserID: "alice", Name: "Rent", Amount: core.NewMoney(15_000, 0), Category: "housing", Type: core.Expense, Fixed: true},
		{UserID: "bob", Name: "Salary", Amount: core.NewMoney(1, 0), Category: "salary", Type: core.Income},
	}
	for _, it := range items {
		if _, err := repo.CreateBudgetItem(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := repo.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.BudgetItems) != 3 || snap.BudgetItems[0].Name != "Salary" || snap.BudgetItems[2].Name != "Rent" {
		t.Fatalf("unexpected snapshot items %+v", snap.BudgetItems)
	}
	if !snap.BudgetItems[1].Protected || !snap.BudgetItems[1].Essential || snap.BudgetItems[1].Fixed {
		t.Fatalf("flags lost: %+v", snap.BudgetItems[1])
	}

	summary, err := core.SummarizeBudget(snap.BudgetItems)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Health != 54 {
		t.Fatalf("Health = %d, want 54", summary.Health)
	}

	food := snap.BudgetItems[1]
	food.Amount = core.NewMoney(9_000, 0)
	if _, err := repo.UpdateBudgetItem(ctx, "bob", food); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign update should be not found, got %v", err)
	}
	if _, err := repo.UpdateBudgetItem(ctx, "alice", food); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteBudgetItem(ctx, "alice", food.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetBudgetItem(ctx, "alice", food.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("deleted item should be gone, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u, err := repo.CreateUser(ctx, core.User{Username: "Maria", FullName: "Maria Santos", PasswordHash: "hash"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateUser(ctx, core.User{Username: "maria", PasswordHash: "hash"}); !errors.Is(err, ledger.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	got, err := repo.GetUserByUsername(ctx, "MARIA")
	if err != nil || got.ID != u.ID || got.FullName != "Maria Santos" {
		t.Fatalf("lookup failed: %+v %v", got, err)
	}
	users, _ := repo.ListUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
}
