package core

import "time"

// Summary is the dashboard figure set for one user.
type Summary struct {
	TotalDebt        Money `json:"totalDebt"`
	MonthlyPayments  Money `json:"monthlyPayments"`
	TotalPaid        Money `json:"totalPaid"`
	DebtCount        int   `json:"debtCount"`
	TotalIncome      Money `json:"totalIncome"`
	TotalExpenses    Money `json:"totalExpenses"`
	ProtectedAmount  Money `json:"protectedAmount"`
	AvailableForDebt Money `json:"availableForDebt"`
	BudgetHealth     int   `json:"budgetHealth"`
	ExtraPool        Money `json:"extraPool"`
}

// ComposeSummary combines debt views with a budget summary. It only sums.
func ComposeSummary(views []DebtView, budget BudgetSummary) Summary {
	s := Summary{
		DebtCount:        len(views),
		TotalIncome:      budget.TotalIncome,
		TotalExpenses:    budget.TotalExpenses,
		ProtectedAmount:  budget.ProtectedAmount,
		AvailableForDebt: budget.AvailableForDebt,
		BudgetHealth:     budget.Health,
	}
	for _, v := range views {
		s.TotalDebt = s.TotalDebt.Add(v.RemainingBalance)
		s.MonthlyPayments = s.MonthlyPayments.Add(v.MinimumPayment)
		s.TotalPaid = s.TotalPaid.Add(v.TotalPaid)
	}
	s.ExtraPool = ExtraPool(s.AvailableForDebt, s.MonthlyPayments)
	return s
}

// DebtsByCategory sums remaining balances per debt category. Percent is the
// share of total remaining debt.
func DebtsByCategory(views []DebtView) []CategoryAmount {
	totals := map[DebtCategory]Money{}
	var all Money
	for _, v := range views {
		totals[v.Category] = totals[v.Category].Add(v.RemainingBalance)
		all = all.Add(v.RemainingBalance)
	}
	out := make([]CategoryAmount, 0, len(totals))
	for cat, amt := range totals {
		out = append(out, CategoryAmount{
			Name:    cat.Label(),
			Amount:  amt,
			Percent: PercentOf(amt, all),
		})
	}
	sortCategories(out)
	return out
}

// HighestInterest returns the debt with a balance left that avalanche would
// pay first.
func HighestInterest(views []DebtView) (DebtView, bool) {
	var (
		best  DebtView
		found bool
	)
	for _, v := range views {
		if v.RemainingBalance.Cents == 0 {
			continue
		}
		if !found || (AvalancheStrategy{}).Less(v, best) {
			best, found = v, true
		}
	}
	return best, found
}

// Breakdown groups the report page figures.
type Breakdown struct {
	Budget          []CategoryAmount `json:"budgetCategories"`
	Debts           []CategoryAmount `json:"debtCategories"`
	HighestInterest *DebtView        `json:"highestInterest,omitempty"`
}

func ComposeBreakdown(views []DebtView, budget BudgetSummary) Breakdown {
	b := Breakdown{Budget: budget.ByCategory, Debts: DebtsByCategory(views)}
	if v, ok := HighestInterest(views); ok {
		b.HighestInterest = &v
	}
	return b
}

// Report bundles everything exported for one user at a point in time.
type Report struct {
	UserID      string          `json:"userId"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Summary     Summary         `json:"summary"`
	Debts       []DebtView      `json:"debts"`
	Budget      BudgetSummary   `json:"budget"`
	Projection  Projection      `json:"projection"`
	Savings     SavingsEstimate `json:"savings"`
	Upcoming    []DueItem       `json:"upcoming"`
}
