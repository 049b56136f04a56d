package core

import (
	"errors"
	"testing"
)

func item(name string, typ ItemType, amount int64, protected bool) BudgetItem {
	return BudgetItem{
		ID:        name,
		UserID:    "u1",
		Name:      name,
		Amount:    Money{Cents: amount},
		Category:  name,
		Type:      typ,
		Protected: protected,
	}
}

func TestSummarizeBudget_Scenario(t *testing.T) {
	s, err := SummarizeBudget([]BudgetItem{
		item("salary", Income, 50_000_00, false),
		item("food", Expense, 8_000_00, true),
		item("rent", Expense, 15_000_00, false),
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalIncome.Cents != 50_000_00 {
		t.Errorf("TotalIncome = %d", s.TotalIncome.Cents)
	}
	if s.TotalExpenses.Cents != 23_000_00 {
		t.Errorf("TotalExpenses = %d", s.TotalExpenses.Cents)
	}
	if s.ProtectedAmount.Cents != 8_000_00 {
		t.Errorf("ProtectedAmount = %d", s.ProtectedAmount.Cents)
	}
	if s.AvailableForDebt.Cents != 27_000_00 {
		t.Errorf("AvailableForDebt = %d", s.AvailableForDebt.Cents)
	}
	if s.Health != 54 {
		t.Errorf("Health = %d, want 54", s.Health)
	}
	if len(s.ByCategory) != 2 || s.ByCategory[0].Name != "rent" || s.ByCategory[0].Percent != 30 {
		t.Errorf("unexpected categories %+v", s.ByCategory)
	}
	if !s.ByCategory[1].Protected {
		t.Error("food should be flagged protected")
	}
}

func TestSummarizeBudget_NoIncome(t *testing.T) {
	s, err := SummarizeBudget([]BudgetItem{item("rent", Expense, 15_000_00, false)})
	if err != nil {
		t.Fatal(err)
	}
	if s.Health != 0 {
		t.Errorf("Health = %d, want 0", s.Health)
	}
	if s.AvailableForDebt.Cents != -15_000_00 {
		t.Errorf("AvailableForDebt = %d, want -1500000", s.AvailableForDebt.Cents)
	}
}

func TestSummarizeBudget_Empty(t *testing.T) {
	s, err := SummarizeBudget(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalIncome.Cents != 0 || s.TotalExpenses.Cents != 0 || s.Health != 0 || len(s.ByCategory) != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeBudget_Properties(t *testing.T) {
	sets := [][]BudgetItem{
		{item("a", Income, 1, false), item("b", Expense, 3, true)},
		{item("a", Income, 999_999_999_99, false), item("b", Expense, 1, false), item("c", Expense, 7, true)},
		{item("a", Expense, 10, true), item("b", Expense, 10, true)},
		{item("a", Income, 12_345, false), item("b", Income, 55, false), item("c", Expense, 12_400, false)},
	}
	for i, items := range sets {
		s, err := SummarizeBudget(items)
		if err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
		if s.TotalIncome.Sub(s.TotalExpenses) != s.AvailableForDebt {
			t.Errorf("set %d: income - expenses != available", i)
		}
		if s.ProtectedAmount.Cents > s.TotalExpenses.Cents {
			t.Errorf("set %d: protected exceeds expenses", i)
		}
	}
}

func TestBudgetHealth(t *testing.T) {
	cases := []struct {
		available, income int64
		want              int
	}{
		{27_000, 50_000, 54},
		{0, 0, 0},
		{-5_000, 0, 0},
		{1, 200, 1},  // 0.5 rounds up
		{-1, 200, 0}, // -0.5 rounds up too
		{-1_250, 10_000, -12},
		{-1_251, 10_000, -13},
		{1_250, 10_000, 13},
		{30_000, 10_000, 300},
		{-25_000, 10_000, -250},
	}
	for _, tc := range cases {
		got := BudgetHealth(Money{Cents: tc.available}, Money{Cents: tc.income})
		if got != tc.want {
			t.Errorf("BudgetHealth(%d, %d) = %d, want %d", tc.available, tc.income, got, tc.want)
		}
	}
}

func TestSummarizeBudget_Invariants(t *testing.T) {
	bad := [][]BudgetItem{
		{item("x", "transfer", 100, false)},
		{item("x", Income, 0, false)},
	}
	for i, items := range bad {
		if _, err := SummarizeBudget(items); !errors.Is(err, ErrInvariant) {
			t.Errorf("case %d: expected invariant error, got %v", i, err)
		}
	}
}
