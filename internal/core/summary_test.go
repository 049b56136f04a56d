package core

import (
	"testing"
	"time"
)

func TestComposeSummary(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 100_000, 5_000, 2000), payment("p1", "a", 30_000, 1)),
		mustView(t, debt("b", 1_000, 500, 1000), payment("p2", "b", 1_500, 1)),
	}
	budget, err := SummarizeBudget([]BudgetItem{
		item("salary", Income, 50_000, false),
		item("rent", Expense, 20_000, true),
	})
	if err != nil {
		t.Fatal(err)
	}

	s := ComposeSummary(views, budget)
	if s.TotalDebt.Cents != 70_000 {
		t.Errorf("TotalDebt = %d, want 70000", s.TotalDebt.Cents)
	}
	if s.MonthlyPayments.Cents != 5_500 {
		t.Errorf("MonthlyPayments = %d, want 5500", s.MonthlyPayments.Cents)
	}
	if s.TotalPaid.Cents != 31_500 || s.DebtCount != 2 {
		t.Errorf("TotalPaid = %d DebtCount = %d", s.TotalPaid.Cents, s.DebtCount)
	}
	if s.AvailableForDebt.Cents != 30_000 || s.BudgetHealth != 60 || s.ProtectedAmount.Cents != 20_000 {
		t.Errorf("budget figures not carried: %+v", s)
	}
	if s.ExtraPool.Cents != 24_500 {
		t.Errorf("ExtraPool = %d, want 24500", s.ExtraPool.Cents)
	}
}

func TestComposeSummary_Empty(t *testing.T) {
	s := ComposeSummary(nil, BudgetSummary{})
	if s.TotalDebt.Cents != 0 || s.DebtCount != 0 || s.BudgetHealth != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestDebtsByCategoryAndHighestInterest(t *testing.T) {
	car := debt("car", 300_000, 5_000, 700)
	car.Category = AutoLoan
	views := []DebtView{
		mustView(t, debt("visa", 100_000, 5_000, 2499)),
		mustView(t, debt("amex", 100_000, 5_000, 3000), payment("p", "amex", 100_000, 2)),
		mustView(t, car),
	}

	cats := DebtsByCategory(views)
	if len(cats) != 2 || cats[0].Name != "Auto Loan" || cats[0].Percent != 75 || cats[1].Amount.Cents != 100_000 {
		t.Fatalf("unexpected categories %+v", cats)
	}

	top, ok := HighestInterest(views)
	if !ok || top.ID != "visa" {
		t.Fatalf("HighestInterest = %s, want visa (amex is paid off)", top.ID)
	}
	if _, ok := HighestInterest(nil); ok {
		t.Fatal("expected no result for empty input")
	}

	b := ComposeBreakdown(views, BudgetSummary{})
	if b.HighestInterest == nil || b.HighestInterest.ID != "visa" {
		t.Fatalf("breakdown highest = %+v", b.HighestInterest)
	}
}

func TestEstimateInterestSavings(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 100_000_00, 2_000_00, 2000)),
		mustView(t, debt("b", 50_000_00, 1_000_00, 1000)),
	}
	est, err := EstimateInterestSavings(views, Money{Cents: 3_000_00})
	if err != nil {
		t.Fatal(err)
	}
	if !est.Advisory {
		t.Fatal("estimate must be flagged advisory")
	}
	// 150000 * 15% * 0.3
	if est.EstimatedSaved.Cents != 6_750_00 {
		t.Errorf("EstimatedSaved = %d, want 675000", est.EstimatedSaved.Cents)
	}
	if est.AverageRate.BasisPoints() != 1500 {
		t.Errorf("AverageRate = %s", est.AverageRate)
	}
	// minimum only: 50 months; with 3000 extra focused on a: a done at 20, b at 28
	if est.MonthsSaved != 22 {
		t.Errorf("MonthsSaved = %d, want 22", est.MonthsSaved)
	}
}

func TestEstimateInterestSavings_NoDebt(t *testing.T) {
	est, err := EstimateInterestSavings(nil, Money{Cents: 100})
	if err != nil {
		t.Fatal(err)
	}
	if est.EstimatedSaved.Cents != 0 || est.MonthsSaved != 0 || !est.Advisory {
		t.Fatalf("unexpected estimate %+v", est)
	}
}

func TestUpcomingDue(t *testing.T) {
	now := time.Date(2025, time.February, 10, 15, 30, 0, 0, time.UTC)
	mk := func(id string, day int) DebtView {
		d := debt(id, 10_000, 1_000, 100)
		d.DueDay = day
		return mustView(t, d)
	}
	paid := mk("paid", 11)
	paid.RemainingBalance = Money{}

	items := UpcomingDue([]DebtView{mk("late", 5), mk("today", 10), mk("soon", 17), mk("later", 18), mk("eom", 31), paid}, now, 7)
	if len(items) != 5 {
		t.Fatalf("expected paid-off debts to be skipped, got %d items", len(items))
	}

	want := []struct {
		id       string
		days     int
		overdue  bool
		upcoming bool
	}{
		{"late", -5, true, false},
		{"today", 0, false, true},
		{"soon", 7, false, true},
		{"later", 8, false, false},
		{"eom", 18, false, false}, // clamped to Feb 28
	}
	for i, w := range want {
		got := items[i]
		if got.DebtID != w.id || got.DaysUntilDue != w.days || got.Overdue != w.overdue || got.Upcoming != w.upcoming {
			t.Errorf("item %d = %+v, want %+v", i, got, w)
		}
	}
	if items[4].DueDate.Day() != 28 {
		t.Errorf("due day 31 in February should fall on the 28th, got %d", items[4].DueDate.Day())
	}

	cal := BuildDueCalendar([]DebtView{mk("late", 5), mk("today", 10), mk("later", 18)}, now, 7)
	if cal.TotalDue.Cents != 3_000 || cal.OverdueAmount.Cents != 1_000 || cal.UpcomingAmount.Cents != 1_000 {
		t.Errorf("unexpected calendar totals %+v", cal)
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		day  int
		now  time.Time
		want string
	}{
		{10, time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC), "2026-01-10"},
		{10, time.Date(2026, 1, 10, 23, 0, 0, 0, time.UTC), "2026-01-10"},
		{1, time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC), "2026-02-01"},
		{30, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), "2026-02-28"},
		{5, time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), "2027-01-05"},
	}
	for _, tt := range tests {
		if got := NextDueDate(tt.day, tt.now).Format("2006-01-02"); got != tt.want {
			t.Errorf("NextDueDate(%d, %s) = %s, want %s", tt.day, tt.now.Format("2006-01-02"), got, tt.want)
		}
	}
}
