package core

import (
	"errors"
)

const (
	// AllocateEqual splits the extra pool evenly across debts that still carry
	// a balance after minimums. Surplus from a clamped share is not reassigned.
	AllocateEqual ExtraAllocation = "equal"
	// AllocateFocused puts the whole pool on the top-ranked debt and cascades
	// any surplus down the ranking.
	AllocateFocused ExtraAllocation = "focused"
)

const (
	DefaultHorizonMonths = 60
	MaxHorizonMonths     = 600
)

var ErrUnknownAllocation = errors.New("unknown extra allocation policy")

// ExtraAllocation names how the monthly extra pool is spread.
type ExtraAllocation string

// ParseAllocation maps "" to AllocateEqual.
func ParseAllocation(s string) (ExtraAllocation, error) {
	switch ExtraAllocation(s) {
	case "", AllocateEqual:
		return AllocateEqual, nil
	case AllocateFocused:
		return AllocateFocused, nil
	}
	return "", ErrUnknownAllocation
}

type ProjectionInput struct {
	Strategy      RankingStrategy
	ExtraPool     Money
	HorizonMonths int // 0 means DefaultHorizonMonths
	Allocation    ExtraAllocation
}

type ProjectionPoint struct {
	Month          int   `json:"month"`
	TotalRemaining Money `json:"totalRemaining"`
}

type PayoffEvent struct {
	DebtID string `json:"debtId"`
	Name   string `json:"name"`
	Month  int    `json:"month"`
}

// Projection is a month-by-month payoff simulation. Points start at month 0
// and never increase.
type Projection struct {
	Strategy       string            `json:"strategy"`
	Allocation     ExtraAllocation   `json:"allocation"`
	ExtraPool      Money             `json:"extraPool"`
	HorizonMonths  int               `json:"horizonMonths"`
	Points         []ProjectionPoint `json:"points"`
	PaidOff        []PayoffEvent     `json:"paidOff"`
	MonthsToPayoff int               `json:"monthsToPayoff"` // -1 when the horizon ends first
}

// ExtraPool is what is left of the available budget after every minimum
// payment, floored at zero.
func ExtraPool(available, totalMinimums Money) Money {
	return available.Sub(totalMinimums).ClampZero()
}

// Project simulates repayment. Interest accrual is not modelled.
func Project(views []DebtView, in ProjectionInput) (Projection, error) {
	const op = "Project"
	if in.Strategy == nil {
		return Projection{}, invariant(op, "no ranking strategy")
	}
	horizon := in.HorizonMonths
	if horizon == 0 {
		horizon = DefaultHorizonMonths
	}
	if horizon < 0 || horizon > MaxHorizonMonths {
		return Projection{}, invariant(op, "horizon %d outside 1..%d", horizon, MaxHorizonMonths)
	}
	if in.ExtraPool.Cents < 0 {
		return Projection{}, invariant(op, "negative extra pool %s", in.ExtraPool)
	}
	alloc, err := ParseAllocation(string(in.Allocation))
	if err != nil {
		return Projection{}, invariant(op, "%v: %q", err, in.Allocation)
	}

	active := make([]DebtView, 0, len(views))
	for _, v := range views {
		if v.RemainingBalance.Cents < 0 {
			return Projection{}, invariant(op, "debt %q has negative remaining balance", v.ID)
		}
		if v.MinimumPayment.Cents <= 0 {
			return Projection{}, invariant(op, "debt %q has non-positive minimum payment", v.ID)
		}
		if v.RemainingBalance.Cents > 0 {
			active = append(active, v)
		}
	}

	p := Projection{
		Strategy:       in.Strategy.Name(),
		Allocation:     alloc,
		ExtraPool:      in.ExtraPool,
		HorizonMonths:  horizon,
		Points:         []ProjectionPoint{{Month: 0, TotalRemaining: totalRemaining(active)}},
		PaidOff:        []PayoffEvent{},
		MonthsToPayoff: -1,
	}
	if len(active) == 0 {
		p.MonthsToPayoff = 0
		return p, nil
	}

	for month := 1; month <= horizon && len(active) > 0; month++ {
		for i := range active {
			active[i].RemainingBalance = active[i].RemainingBalance.Sub(active[i].MinimumPayment).ClampZero()
		}
		active = Rank(active, in.Strategy)

		switch alloc {
		case AllocateFocused:
			allocateFocused(active, in.ExtraPool)
		default:
			allocateEqual(active, in.ExtraPool)
		}

		next := active[:0]
		for _, v := range active {
			if v.RemainingBalance.Cents > 0 {
				next = append(next, v)
				continue
			}
			p.PaidOff = append(p.PaidOff, PayoffEvent{DebtID: v.ID, Name: v.Name, Month: month})
		}
		active = next
		p.Points = append(p.Points, ProjectionPoint{Month: month, TotalRemaining: totalRemaining(active)})
		if len(active) == 0 {
			p.MonthsToPayoff = month
		}
	}
	return p, nil
}

// allocateEqual expects ranked input; leftover centavos from the division go
// one each to the top-ranked debts.
func allocateEqual(ranked []DebtView, pool Money) {
	if pool.Cents == 0 {
		return
	}
	carrying := make([]int, 0, len(ranked))
	for i, v := range ranked {
		if v.RemainingBalance.Cents > 0 {
			carrying = append(carrying, i)
		}
	}
	if len(carrying) == 0 {
		return
	}
	n := int64(len(carrying))
	share, rest := pool.Cents/n, pool.Cents%n
	for k, idx := range carrying {
		amt := share
		if int64(k) < rest {
			amt++
		}
		ranked[idx].RemainingBalance = ranked[idx].RemainingBalance.Sub(Money{Cents: amt}).ClampZero()
	}
}

func allocateFocused(ranked []DebtView, pool Money) {
	left := pool.Cents
	for i := range ranked {
		if left == 0 {
			return
		}
		rem := ranked[i].RemainingBalance.Cents
		if rem == 0 {
			continue
		}
		pay := min(left, rem)
		ranked[i].RemainingBalance = Money{Cents: rem - pay}
		left -= pay
	}
}

func totalRemaining(views []DebtView) Money {
	var total Money
	for _, v := range views {
		total = total.Add(v.RemainingBalance)
	}
	return total
}
