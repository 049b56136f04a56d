package core

import (
	"errors"
	"testing"
)

func TestAvalancheRanking(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("low", 100_000, 1_000, 500)),
		mustView(t, debt("high-small", 20_000, 1_000, 2499)),
		mustView(t, debt("high-big", 90_000, 1_000, 2499)),
		mustView(t, debt("mid", 50_000, 1_000, 1200)),
		mustView(t, debt("high-big-twin", 90_000, 1_000, 2499)),
	}
	ranked := Rank(views, AvalancheStrategy{})

	want := []string{"high-big", "high-big-twin", "high-small", "mid", "low"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].ID, id)
		}
	}
	for i := 0; i+1 < len(ranked); i++ {
		a, b := ranked[i], ranked[i+1]
		c := a.InterestRate.Cmp(b.InterestRate)
		if c < 0 || (c == 0 && a.RemainingBalance.Cents < b.RemainingBalance.Cents) {
			t.Fatalf("%s must not precede %s", a.ID, b.ID)
		}
	}
	if views[0].ID != "low" {
		t.Fatal("Rank must not reorder its input")
	}
}

func TestSnowballRanking(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("big", 100_000, 1_000, 3000)),
		mustView(t, debt("small-low", 20_000, 1_000, 500)),
		mustView(t, debt("small-high", 20_000, 1_000, 1900)),
	}
	ranked := Rank(views, SnowballStrategy{})
	want := []string{"small-high", "small-low", "big"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].ID, id)
		}
	}
}

type largestFirst struct{}

func (largestFirst) Name() string { return "largest" }
func (largestFirst) Less(a, b DebtView) bool {
	return a.RemainingBalance.Cents > b.RemainingBalance.Cents
}

func TestRankingRegistry(t *testing.T) {
	for _, name := range []string{"avalanche", "Snowball", " AVALANCHE "} {
		if _, err := GetRankingStrategy(name); err != nil {
			t.Errorf("GetRankingStrategy(%q): %v", name, err)
		}
	}
	if _, err := GetRankingStrategy("debt-free-tomorrow"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	RegisterRankingStrategy(largestFirst{})
	defer delete(rankingStrategies, "largest")
	s, err := GetRankingStrategy("largest")
	if err != nil || s.Name() != "largest" {
		t.Fatalf("registered strategy not found: %v", err)
	}
}

func TestProject_SingleDebtScenario(t *testing.T) {
	views := []DebtView{mustView(t, debt("d1", 10_000_00, 500_00, 1800))}
	p, err := Project(views, ProjectionInput{Strategy: AvalancheStrategy{}})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Points[1].TotalRemaining.Cents; got != 9_500_00 {
		t.Errorf("month 1 = %d, want 950000", got)
	}
	if got := p.Points[20].TotalRemaining.Cents; got != 0 {
		t.Errorf("month 20 = %d, want 0", got)
	}
	if len(p.Points) != 21 {
		t.Errorf("expected simulation to stop after month 20, got %d points", len(p.Points))
	}
	if p.MonthsToPayoff != 20 {
		t.Errorf("MonthsToPayoff = %d, want 20", p.MonthsToPayoff)
	}
	if len(p.PaidOff) != 1 || p.PaidOff[0].Month != 20 {
		t.Errorf("PaidOff = %+v", p.PaidOff)
	}
	if p.HorizonMonths != DefaultHorizonMonths || p.Allocation != AllocateEqual {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestProject_NoDebts(t *testing.T) {
	for _, views := range [][]DebtView{nil, {mustView(t, debt("paid", 1_000, 100, 100), payment("p", "paid", 1_000, 1))}} {
		p, err := Project(views, ProjectionInput{Strategy: SnowballStrategy{}, ExtraPool: Money{Cents: 500}})
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Points) != 1 || p.Points[0].Month != 0 || p.Points[0].TotalRemaining.Cents != 0 {
			t.Fatalf("expected [(0,0)], got %+v", p.Points)
		}
		if p.MonthsToPayoff != 0 {
			t.Fatalf("MonthsToPayoff = %d, want 0", p.MonthsToPayoff)
		}
	}
}

func TestProject_EqualSplit(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 10_000, 1_000, 2000)),
		mustView(t, debt("b", 2_500, 1_000, 1000)),
		mustView(t, debt("c", 50_000, 1_000, 500)),
	}
	// after minimums: a=9000 b=1500 c=49000; pool 3001 -> 1001,1000,1000 in avalanche order a,b,c
	p, err := Project(views, ProjectionInput{Strategy: AvalancheStrategy{}, ExtraPool: Money{Cents: 3_001}, HorizonMonths: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := int64(9_000 - 1_001 + 1_500 - 1_000 + 49_000 - 1_000)
	if got := p.Points[1].TotalRemaining.Cents; got != want {
		t.Fatalf("month 1 = %d, want %d", got, want)
	}
}

func TestProject_EqualSplitSurplusNotRedistributed(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 1_500, 1_000, 2000)),
		mustView(t, debt("b", 10_000, 1_000, 1000)),
	}
	// after minimums a=500 b=9000; pool 2000 splits 1000/1000, a clamps to 0 and its 500 surplus is lost
	p, err := Project(views, ProjectionInput{Strategy: AvalancheStrategy{}, ExtraPool: Money{Cents: 2_000}, HorizonMonths: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Points[1].TotalRemaining.Cents; got != 8_000 {
		t.Fatalf("month 1 = %d, want 8000", got)
	}
	if len(p.PaidOff) != 1 || p.PaidOff[0].DebtID != "a" || p.PaidOff[0].Month != 1 {
		t.Fatalf("PaidOff = %+v", p.PaidOff)
	}
}

func TestProject_FocusedCascades(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 1_500, 1_000, 2000)),
		mustView(t, debt("b", 10_000, 1_000, 1000)),
	}
	p, err := Project(views, ProjectionInput{
		Strategy:      AvalancheStrategy{},
		ExtraPool:     Money{Cents: 2_000},
		HorizonMonths: 1,
		Allocation:    AllocateFocused,
	})
	if err != nil {
		t.Fatal(err)
	}
	// a takes 500 of the pool, the remaining 1500 cascades to b: 9000-1500
	if got := p.Points[1].TotalRemaining.Cents; got != 7_500 {
		t.Fatalf("month 1 = %d, want 7500", got)
	}
}

func TestProject_NonIncreasingWithinHorizon(t *testing.T) {
	views := []DebtView{
		mustView(t, debt("a", 5_000_000_00, 1_000_00, 2000)),
		mustView(t, debt("b", 300_000, 2_000, 1000)),
		mustView(t, debt("c", 77_777, 333, 1500)),
	}
	for _, alloc := range []ExtraAllocation{AllocateEqual, AllocateFocused} {
		for _, s := range []RankingStrategy{AvalancheStrategy{}, SnowballStrategy{}} {
			p, err := Project(views, ProjectionInput{Strategy: s, ExtraPool: Money{Cents: 12_345}, HorizonMonths: 36, Allocation: alloc})
			if err != nil {
				t.Fatal(err)
			}
			if len(p.Points) > 37 {
				t.Fatalf("%s/%s exceeded horizon: %d points", s.Name(), alloc, len(p.Points))
			}
			for i := 1; i < len(p.Points); i++ {
				if p.Points[i].TotalRemaining.Cents > p.Points[i-1].TotalRemaining.Cents {
					t.Fatalf("%s/%s increased at month %d", s.Name(), alloc, i)
				}
				if p.Points[i].Month != i {
					t.Fatalf("month index %d at position %d", p.Points[i].Month, i)
				}
			}
			if p.MonthsToPayoff != -1 {
				t.Fatalf("a 5M debt cannot be paid off in 36 months, got %d", p.MonthsToPayoff)
			}
		}
	}
}

func TestProject_Invariants(t *testing.T) {
	v := mustView(t, debt("a", 1_000, 100, 100))
	zeroMin := v
	zeroMin.MinimumPayment = Money{}

	cases := []struct {
		name  string
		views []DebtView
		in    ProjectionInput
	}{
		{"nil strategy", []DebtView{v}, ProjectionInput{}},
		{"negative pool", []DebtView{v}, ProjectionInput{Strategy: AvalancheStrategy{}, ExtraPool: Money{Cents: -1}}},
		{"horizon too long", []DebtView{v}, ProjectionInput{Strategy: AvalancheStrategy{}, HorizonMonths: MaxHorizonMonths + 1}},
		{"negative horizon", []DebtView{v}, ProjectionInput{Strategy: AvalancheStrategy{}, HorizonMonths: -1}},
		{"unknown allocation", []DebtView{v}, ProjectionInput{Strategy: AvalancheStrategy{}, Allocation: "random"}},
		{"zero minimum", []DebtView{zeroMin}, ProjectionInput{Strategy: AvalancheStrategy{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Project(tc.views, tc.in); !errors.Is(err, ErrInvariant) {
				t.Fatalf("expected invariant error, got %v", err)
			}
		})
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	views := []DebtView{mustView(t, debt("a", 10_000, 1_000, 100))}
	if _, err := Project(views, ProjectionInput{Strategy: AvalancheStrategy{}}); err != nil {
		t.Fatal(err)
	}
	if views[0].RemainingBalance.Cents != 10_000 {
		t.Fatal("input view was modified")
	}
}

func TestExtraPool(t *testing.T) {
	if got := ExtraPool(Money{Cents: 27_000}, Money{Cents: 5_000}); got.Cents != 22_000 {
		t.Errorf("ExtraPool = %d, want 22000", got.Cents)
	}
	if got := ExtraPool(Money{Cents: -100}, Money{Cents: 5_000}); got.Cents != 0 {
		t.Errorf("ExtraPool with deficit = %d, want 0", got.Cents)
	}
}

func TestParseAllocation(t *testing.T) {
	if a, err := ParseAllocation(""); err != nil || a != AllocateEqual {
		t.Errorf("empty allocation should default to equal, got %q %v", a, err)
	}
	if a, err := ParseAllocation("focused"); err != nil || a != AllocateFocused {
		t.Errorf("got %q %v", a, err)
	}
	if _, err := ParseAllocation("everything"); !errors.Is(err, ErrUnknownAllocation) {
		t.Errorf("expected ErrUnknownAllocation, got %v", err)
	}
}
