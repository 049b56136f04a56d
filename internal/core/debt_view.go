package core

import (
	"sort"
)

const (
	PriorityHigh   PriorityClass = "high"
	PriorityMedium PriorityClass = "medium"
	PriorityLow    PriorityClass = "low"
)

var (
	highPriorityFloor   = RateFromBasisPoints(2500)
	mediumPriorityFloor = RateFromBasisPoints(1000)
)

// PriorityClass buckets a debt by its annual rate.
type PriorityClass string

// ClassifyPriority returns high for 25% and above, medium for 10% and above.
func ClassifyPriority(r Rate) PriorityClass {
	switch {
	case r.Cmp(highPriorityFloor) >= 0:
		return PriorityHigh
	case r.Cmp(mediumPriorityFloor) >= 0:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// DebtView is a debt together with its payment history and derived balances.
//
// TotalPaid + RemainingBalance equals Balance except when the debt was
// over-paid, in which case RemainingBalance is clamped to zero.
type DebtView struct {
	Debt
	Payments         []Payment     `json:"payments"`
	TotalPaid        Money         `json:"totalPaid"`
	RemainingBalance Money         `json:"remainingBalance"`
	PercentPaid      int           `json:"percentPaid"`
	Priority         PriorityClass `json:"priority"`
}

// BuildDebtView sums the payments made against d.
func BuildDebtView(d Debt, payments []Payment) (DebtView, error) {
	const op = "BuildDebtView"
	if err := d.Validate(); err != nil {
		return DebtView{}, invariant(op, "debt %q: %v", d.ID, err)
	}

	var total Money
	history := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.DebtID != d.ID || p.UserID != d.UserID {
			return DebtView{}, invariant(op, "payment %q does not belong to debt %q", p.ID, d.ID)
		}
		if p.Amount.Cents <= 0 {
			return DebtView{}, invariant(op, "payment %q has non-positive amount %s", p.ID, p.Amount)
		}
		total = total.Add(p.Amount)
		history = append(history, p)
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].PaidAt.Before(history[j].PaidAt.Time)
	})

	return DebtView{
		Debt:             d,
		Payments:         history,
		TotalPaid:        total,
		RemainingBalance: d.Balance.Sub(total).ClampZero(),
		PercentPaid:      percentPaid(total, d.Balance),
		Priority:         ClassifyPriority(d.InterestRate),
	}, nil
}

// BuildDebtViews groups payments by debt and builds one view per debt, in the
// order the debts were given. A payment for a debt not in the list is an
// invariant violation.
func BuildDebtViews(debts []Debt, payments []Payment) ([]DebtView, error) {
	byDebt := make(map[string][]Payment, len(debts))
	for _, d := range debts {
		byDebt[d.ID] = nil
	}
	for _, p := range payments {
		if _, ok := byDebt[p.DebtID]; !ok {
			return nil, invariant("BuildDebtViews", "payment %q references unknown debt %q", p.ID, p.DebtID)
		}
		byDebt[p.DebtID] = append(byDebt[p.DebtID], p)
	}

	views := make([]DebtView, 0, len(debts))
	for _, d := range debts {
		v, err := BuildDebtView(d, byDebt[d.ID])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func percentPaid(paid, balance Money) int {
	if paid.Cents >= balance.Cents {
		return 100
	}
	return int((paid.Cents*100 + balance.Cents/2) / balance.Cents)
}
