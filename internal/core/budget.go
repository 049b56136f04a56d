package core

import (
	"sort"
)

// CategoryAmount is one slice of a breakdown.
type CategoryAmount struct {
	Name      string `json:"name"`
	Amount    Money  `json:"amount"`
	Percent   int    `json:"percent"`
	Protected bool   `json:"isProtected"`
}

// BudgetSummary partitions a user's budget items.
//
// AvailableForDebt may be negative, which signals a deficit. Health is not a
// bounded ratio and may exceed 100 or go below zero.
type BudgetSummary struct {
	TotalIncome      Money            `json:"totalIncome"`
	TotalExpenses    Money            `json:"totalExpenses"`
	ProtectedAmount  Money            `json:"protectedAmount"`
	EssentialAmount  Money            `json:"essentialAmount"`
	FixedAmount      Money            `json:"fixedAmount"`
	AvailableForDebt Money            `json:"availableForDebt"`
	Health           int              `json:"budgetHealth"`
	ByCategory       []CategoryAmount `json:"byCategory"`
}

// SummarizeBudget totals income and expenses. Category percentages are shares
// of total income.
func SummarizeBudget(items []BudgetItem) (BudgetSummary, error) {
	var s BudgetSummary
	type bucket struct {
		amount    Money
		protected bool
	}
	buckets := map[string]*bucket{}

	for _, it := range items {
		if it.Amount.Cents <= 0 {
			return BudgetSummary{}, invariant("SummarizeBudget", "item %q has non-positive amount %s", it.ID, it.Amount)
		}
		switch it.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(it.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(it.Amount)
			if it.Protected {
				s.ProtectedAmount = s.ProtectedAmount.Add(it.Amount)
			}
			if it.Essential {
				s.EssentialAmount = s.EssentialAmount.Add(it.Amount)
			}
			if it.Fixed {
				s.FixedAmount = s.FixedAmount.Add(it.Amount)
			}
			b, ok := buckets[it.Category]
			if !ok {
				b = &bucket{}
				buckets[it.Category] = b
			}
			b.amount = b.amount.Add(it.Amount)
			b.protected = b.protected || it.Protected
		default:
			return BudgetSummary{}, invariant("SummarizeBudget", "item %q has unknown type %q", it.ID, it.Type)
		}
	}

	s.AvailableForDebt = s.TotalIncome.Sub(s.TotalExpenses)
	s.Health = BudgetHealth(s.AvailableForDebt, s.TotalIncome)

	s.ByCategory = make([]CategoryAmount, 0, len(buckets))
	for name, b := range buckets {
		s.ByCategory = append(s.ByCategory, CategoryAmount{
			Name:      name,
			Amount:    b.amount,
			Percent:   PercentOf(b.amount, s.TotalIncome),
			Protected: b.protected,
		})
	}
	sortCategories(s.ByCategory)
	return s, nil
}

// BudgetHealth is available/income*100 with halves rounded up (-12.5 gives
// -12), or 0 when there is no income.
func BudgetHealth(available, income Money) int {
	return PercentOf(available, income)
}

// PercentOf returns part/whole*100 rounded to the nearest integer with halves
// going up, 0 when whole is not positive.
func PercentOf(part, whole Money) int {
	if whole.Cents <= 0 {
		return 0
	}
	return int(part.Decimal().Mul(hundred).Div(whole.Decimal()).Add(half).Floor().IntPart())
}

func sortCategories(c []CategoryAmount) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].Amount.Cents != c[j].Amount.Cents {
			return c[i].Amount.Cents > c[j].Amount.Cents
		}
		return c[i].Name < c[j].Name
	})
}
