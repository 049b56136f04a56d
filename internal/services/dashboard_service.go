package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"utang/internal/cache"
	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
)

var ErrInvalidHorizon = fmt.Errorf("horizon must be between 1 and %d months", core.MaxHorizonMonths)

// DashboardOptions configures report defaults and the per-user cache.
// A CacheSize below 1 disables caching.
type DashboardOptions struct {
	HorizonMonths int
	Allocation    core.ExtraAllocation
	CacheSize     int
	CacheTTL      time.Duration
}

// DashboardService answers every read-side question about one user's
// finances. It reads one consistent snapshot and hands it to core.
type DashboardService struct {
	reader     ledger.SnapshotReader
	horizon    int
	allocation core.ExtraAllocation
	logger     *applog.Logger
	now        func() time.Time

	cache *cache.LRUCache[dashboardState]
	genMu sync.Mutex
	gen   map[string]uint64
}

// dashboardState is what is derived from a snapshot before any
// endpoint-specific work. Cached values are shared and must not be mutated.
type dashboardState struct {
	views  []core.DebtView
	budget core.BudgetSummary
}

func NewDashboardService(reader ledger.SnapshotReader, opts DashboardOptions, logger *applog.Logger) *DashboardService {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.HorizonMonths <= 0 {
		opts.HorizonMonths = core.DefaultHorizonMonths
	}
	if opts.Allocation == "" {
		opts.Allocation = core.AllocateEqual
	}
	s := &DashboardService{
		reader:     reader,
		horizon:    opts.HorizonMonths,
		allocation: opts.Allocation,
		logger:     logger.WithComponent(applog.ComponentDashboard),
		now:        time.Now,
		gen:        make(map[string]uint64),
	}
	if opts.CacheSize > 0 {
		s.cache = cache.NewLRUCache[dashboardState](opts.CacheSize, opts.CacheTTL)
	}
	return s
}

// Cache exposes the snapshot cache for periodic cleanup; nil when disabled.
func (s *DashboardService) Cache() cache.Cleaner {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

// CacheStats reports snapshot cache usage; zero when caching is disabled.
func (s *DashboardService) CacheStats() (entries int, stats cache.Stats) {
	if s.cache == nil {
		return 0, cache.Stats{}
	}
	return s.cache.Size(), s.cache.Stats()
}

// Invalidate forgets the cached state of userID. Loads that started before
// the call will not repopulate the cache.
func (s *DashboardService) Invalidate(userID string) {
	s.genMu.Lock()
	s.gen[userID]++
	s.genMu.Unlock()
	if s.cache != nil {
		s.cache.Delete(userID)
	}
}

func (s *DashboardService) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen[userID]
}

func (s *DashboardService) state(ctx context.Context, userID string) (dashboardState, error) {
	if s.cache != nil {
		if st, ok := s.cache.Get(userID); ok {
			return st, nil
		}
	}

	gen := s.generation(userID)
	snap, err := s.reader.Snapshot(ctx, userID)
	if err != nil {
		return dashboardState{}, fmt.Errorf("read snapshot: %w", err)
	}

	views, err := core.BuildDebtViews(snap.Debts, snap.Payments)
	if err != nil {
		s.logInvariant(ctx, userID, err)
		return dashboardState{}, err
	}
	budget, err := core.SummarizeBudget(snap.BudgetItems)
	if err != nil {
		s.logInvariant(ctx, userID, err)
		return dashboardState{}, err
	}

	st := dashboardState{views: views, budget: budget}
	if s.cache != nil && s.generation(userID) == gen {
		s.cache.Set(userID, st)
	}
	return st, nil
}

func (s *DashboardService) logInvariant(ctx context.Context, userID string, err error) {
	errType := applog.ErrorTypeInternal
	var inv *core.InvariantError
	if errors.As(err, &inv) {
		errType = applog.ErrorTypeInvariant
	}
	s.logger.ErrorContext(ctx, "Snapshot failed core checks",
		applog.NewFields().WithUser(userID).WithError(err).WithErrorType(errType).ToSlice()...)
}

func (s *DashboardService) Summary(ctx context.Context, userID string) (core.Summary, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.ComposeSummary(st.views, st.budget), nil
}

func (s *DashboardService) Debts(ctx context.Context, userID string) ([]core.DebtView, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]core.DebtView(nil), st.views...), nil
}

func (s *DashboardService) Budget(ctx context.Context, userID string) (core.BudgetSummary, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	return st.budget, nil
}

// Ranking is a strategy's payoff order.
type Ranking struct {
	Strategy string          `json:"strategy"`
	Debts    []core.DebtView `json:"debts"`
}

// Ranking orders the user's debts; an empty name means avalanche.
func (s *DashboardService) Ranking(ctx context.Context, userID, strategy string) (Ranking, error) {
	strat, err := rankingStrategy(strategy)
	if err != nil {
		return Ranking{}, err
	}
	st, err := s.state(ctx, userID)
	if err != nil {
		return Ranking{}, err
	}
	return Ranking{Strategy: strat.Name(), Debts: core.Rank(st.views, strat)}, nil
}

func rankingStrategy(name string) (core.RankingStrategy, error) {
	if name == "" {
		name = core.StrategyAvalanche
	}
	return core.GetRankingStrategy(name)
}

// ProjectionRequest selects a simulation. Zero values take the configured defaults.
type ProjectionRequest struct {
	Strategy      string
	Allocation    string
	HorizonMonths int
}

func (s *DashboardService) Projection(ctx context.Context, userID string, req ProjectionRequest) (core.Projection, error) {
	in, err := s.projectionInput(req)
	if err != nil {
		return core.Projection{}, err
	}
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.Projection{}, err
	}
	return s.project(ctx, userID, st, in)
}

func (s *DashboardService) projectionInput(req ProjectionRequest) (core.ProjectionInput, error) {
	strat, err := rankingStrategy(req.Strategy)
	if err != nil {
		return core.ProjectionInput{}, err
	}
	alloc := s.allocation
	if req.Allocation != "" {
		if alloc, err = core.ParseAllocation(req.Allocation); err != nil {
			return core.ProjectionInput{}, err
		}
	}
	horizon := req.HorizonMonths
	if horizon == 0 {
		horizon = s.horizon
	}
	if horizon < 1 || horizon > core.MaxHorizonMonths {
		return core.ProjectionInput{}, ErrInvalidHorizon
	}
	return core.ProjectionInput{Strategy: strat, HorizonMonths: horizon, Allocation: alloc}, nil
}

func (s *DashboardService) project(ctx context.Context, userID string, st dashboardState, in core.ProjectionInput) (core.Projection, error) {
	summary := core.ComposeSummary(st.views, st.budget)
	in.ExtraPool = summary.ExtraPool
	p, err := core.Project(st.views, in)
	if err != nil {
		s.logInvariant(ctx, userID, err)
		return core.Projection{}, err
	}
	s.logger.DebugContext(ctx, "Projection computed",
		applog.NewFields().
			WithUser(userID).
			WithProjection(p.Strategy, string(p.Allocation), p.HorizonMonths).
			WithAmount(p.ExtraPool.Cents).ToSlice()...)
	return p, nil
}

func (s *DashboardService) Savings(ctx context.Context, userID string) (core.SavingsEstimate, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.SavingsEstimate{}, err
	}
	summary := core.ComposeSummary(st.views, st.budget)
	return core.EstimateInterestSavings(st.views, summary.ExtraPool)
}

// Calendar lists this month's due dates; a window below 1 means the default week.
func (s *DashboardService) Calendar(ctx context.Context, userID string, windowDays int) (core.DueCalendar, error) {
	if windowDays < 1 {
		windowDays = core.DefaultDueWindowDays
	}
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.DueCalendar{}, err
	}
	return core.BuildDueCalendar(st.views, s.now(), windowDays), nil
}

func (s *DashboardService) Breakdown(ctx context.Context, userID string) (core.Breakdown, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.Breakdown{}, err
	}
	return core.ComposeBreakdown(st.views, st.budget), nil
}

// Report gathers every figure exported for userID, using avalanche with the
// configured allocation and horizon.
func (s *DashboardService) Report(ctx context.Context, userID string) (core.Report, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return core.Report{}, err
	}
	in, err := s.projectionInput(ProjectionRequest{})
	if err != nil {
		return core.Report{}, err
	}
	projection, err := s.project(ctx, userID, st, in)
	if err != nil {
		return core.Report{}, err
	}
	summary := core.ComposeSummary(st.views, st.budget)
	savings, err := core.EstimateInterestSavings(st.views, summary.ExtraPool)
	if err != nil {
		return core.Report{}, err
	}
	now := s.now()
	return core.Report{
		UserID:      userID,
		GeneratedAt: now.UTC(),
		Summary:     summary,
		Debts:       append([]core.DebtView(nil), st.views...),
		Budget:      st.budget,
		Projection:  projection,
		Savings:     savings,
		Upcoming:    core.UpcomingDue(st.views, now, core.DefaultDueWindowDays),
	}, nil
}
