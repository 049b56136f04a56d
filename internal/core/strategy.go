// This file implements the ranking strategies used to order debts for
// repayment. Each strategy defines a strict total order so the same input
// always ranks the same way regardless of storage order.

package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	StrategyAvalanche = "avalanche"
	StrategySnowball  = "snowball"
)

var ErrUnknownStrategy = errors.New("unknown ranking strategy")

// RankingStrategy decides which debt should be paid first.
type RankingStrategy interface {
	Name() string
	// Less reports whether a should be paid before b.
	Less(a, b DebtView) bool
}

// AvalancheStrategy pays the highest rate first. Equal rates go to the larger
// remaining balance, then to the smaller ID.
type AvalancheStrategy struct{}

func (AvalancheStrategy) Name() string { return StrategyAvalanche }

func (AvalancheStrategy) Less(a, b DebtView) bool {
	if c := a.InterestRate.Cmp(b.InterestRate); c != 0 {
		return c > 0
	}
	if a.RemainingBalance.Cents != b.RemainingBalance.Cents {
		return a.RemainingBalance.Cents > b.RemainingBalance.Cents
	}
	return a.ID < b.ID
}

// SnowballStrategy pays the smallest remaining balance first. Equal balances go
// to the higher rate, then to the smaller ID.
type SnowballStrategy struct{}

func (SnowballStrategy) Name() string { return StrategySnowball }

func (SnowballStrategy) Less(a, b DebtView) bool {
	if a.RemainingBalance.Cents != b.RemainingBalance.Cents {
		return a.RemainingBalance.Cents < b.RemainingBalance.Cents
	}
	if c := a.InterestRate.Cmp(b.InterestRate); c != 0 {
		return c > 0
	}
	return a.ID < b.ID
}

// rankingStrategies is populated at init time only; lookups are read-only.
var rankingStrategies = map[string]RankingStrategy{
	StrategyAvalanche: AvalancheStrategy{},
	StrategySnowball:  SnowballStrategy{},
}

// GetRankingStrategy looks a strategy up by name, case-insensitively.
func GetRankingStrategy(name string) (RankingStrategy, error) {
	s, ok := rankingStrategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// RegisterRankingStrategy adds or replaces a strategy. Call it from init.
func RegisterRankingStrategy(s RankingStrategy) {
	rankingStrategies[strings.ToLower(s.Name())] = s
}

// Rank returns a new slice ordered by s. The input is not modified.
func Rank(views []DebtView, s RankingStrategy) []DebtView {
	out := make([]DebtView, len(views))
	copy(out, views)
	sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	return out
}
