package ledger

import (
	"context"
	"fmt"
	"time"

	"utang/internal/core"
)

// DemoStore is what SeedDemo needs from a backend.
type DemoStore interface {
	DebtStore
	PaymentStore
	BudgetStore
}

// SeedDemo fills an empty account with a small sample household so the
// dashboard has something to show. It does nothing when the user already has
// debts.
func SeedDemo(ctx context.Context, store DemoStore, userID string, now time.Time) error {
	existing, err := store.ListDebts(ctx, userID)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	debts := []core.Debt{
		{Name: "BPI Credit Card", Balance: core.NewMoney(45_000, 0), InterestRate: core.MustRate("36"), MinimumPayment: core.NewMoney(2_250, 0), DueDay: 15, Category: core.CreditCard},
		{Name: "Car Loan", Balance: core.NewMoney(350_000, 0), InterestRate: core.MustRate("8.5"), MinimumPayment: core.NewMoney(12_500, 0), DueDay: 5, Category: core.AutoLoan},
		{Name: "Salary Loan", Balance: core.NewMoney(30_000, 0), InterestRate: core.MustRate("12"), MinimumPayment: core.NewMoney(2_500, 0), DueDay: 28, Category: core.PersonalLoan},
	}
	var first core.Debt
	for i, d := range debts {
		d.UserID = userID
		d.Frequency = core.Monthly
		created, err := store.CreateDebt(ctx, d)
		if err != nil {
			return fmt.Errorf("create demo debt %q: %w", d.Name, err)
		}
		if i == 0 {
			first = created
		}
	}

	paidAt := core.Date{Time: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)}
	if _, err := store.CreatePayment(ctx, core.Payment{
		DebtID: first.ID, UserID: userID, Amount: core.NewMoney(5_000, 0), PaidAt: paidAt, Kind: core.ExtraPayment,
	}); err != nil {
		return fmt.Errorf("create demo payment: %w", err)
	}

	items := []core.BudgetItem{
		{Name: "Salary", Amount: core.NewMoney(65_000, 0), Category: "salary", Type: core.Income, Fixed: true},
		{Name: "Groceries", Amount: core.NewMoney(12_000, 0), Category: "food", Type: core.Expense, Essential: true, Protected: true},
		{Name: "Rent", Amount: core.NewMoney(15_000, 0), Category: "housing", Type: core.Expense, Essential: true, Fixed: true},
		{Name: "Utilities", Amount: core.NewMoney(4_500, 0), Category: "utilities", Type: core.Expense, Essential: true},
		{Name: "Transport", Amount: core.NewMoney(3_000, 0), Category: "transport", Type: core.Expense},
	}
	for _, it := range items {
		it.UserID = userID
		if _, err := store.CreateBudgetItem(ctx, it); err != nil {
			return fmt.Errorf("create demo budget item %q: %w", it.Name, err)
		}
	}
	return nil
}
