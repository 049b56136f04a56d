package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// savingsFactor is a rough share of outstanding interest an avalanche plan
// avoids. It has no actuarial basis.
var savingsFactor = decimal.RequireFromString("0.3")

const savingsMethod = "avalanche-vs-minimum heuristic"

// SavingsEstimate compares an avalanche plan with paying minimums only.
// Advisory is always true: the figures are approximations, not a financial
// calculation.
type SavingsEstimate struct {
	EstimatedSaved Money  `json:"estimatedSaved"`
	MonthsSaved    int    `json:"monthsSaved"`
	AverageRate    Rate   `json:"averageRate"`
	Advisory       bool   `json:"advisory"`
	Method         string `json:"method"`
}

// EstimateInterestSavings only considers debts with a remaining balance.
func EstimateInterestSavings(views []DebtView, extraPool Money) (SavingsEstimate, error) {
	est := SavingsEstimate{Advisory: true, Method: savingsMethod}

	var (
		active  []DebtView
		rateSum decimal.Decimal
	)
	for _, v := range views {
		if v.RemainingBalance.Cents > 0 {
			active = append(active, v)
			rateSum = rateSum.Add(v.InterestRate.Decimal())
		}
	}
	if len(active) == 0 {
		return est, nil
	}

	avg := rateSum.Div(decimal.NewFromInt(int64(len(active)))).Round(2)
	est.AverageRate = Rate{d: avg}
	saved, err := MoneyFromDecimal(
		totalRemaining(active).Decimal().Mul(avg).Div(hundred).Mul(savingsFactor),
	)
	if err != nil {
		return SavingsEstimate{}, fmt.Errorf("estimate interest saved: %w", err)
	}
	est.EstimatedSaved = saved

	minimumOnly, err := Project(active, ProjectionInput{
		Strategy:      AvalancheStrategy{},
		HorizonMonths: MaxHorizonMonths,
		Allocation:    AllocateFocused,
	})
	if err != nil {
		return SavingsEstimate{}, err
	}
	withExtra, err := Project(active, ProjectionInput{
		Strategy:      AvalancheStrategy{},
		ExtraPool:     extraPool,
		HorizonMonths: MaxHorizonMonths,
		Allocation:    AllocateFocused,
	})
	if err != nil {
		return SavingsEstimate{}, err
	}
	est.MonthsSaved = max(0, monthsOrCap(minimumOnly)-monthsOrCap(withExtra))
	return est, nil
}

func monthsOrCap(p Projection) int {
	if p.MonthsToPayoff < 0 {
		return p.HorizonMonths
	}
	return p.MonthsToPayoff
}
