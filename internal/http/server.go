package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"utang/internal/auth"
	applog "utang/internal/log"
	"utang/internal/middleware/authn"
	"utang/internal/middleware/ratelimit"
	"utang/internal/middleware/security"
	"utang/internal/middleware/trace"
	"utang/internal/services"
)

// CheckFunc reports whether a dependency is usable; used by /readyz.
type CheckFunc func(ctx context.Context) error

// Options configures the listener and request limits.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	// TrustedProxies are extra CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
}

// Deps are the services behind the API.
type Deps struct {
	Auth      *auth.Service
	Ledger    *services.LedgerService
	Dashboard *services.DashboardService
	Checks    map[string]CheckFunc
}

type Server struct {
	http.Server

	auth      *auth.Service
	ledger    *services.LedgerService
	dashboard *services.DashboardService
	checks    map[string]CheckFunc
	logger    *applog.Logger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	trace       *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

func NewServer(opts Options, deps Deps, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector(logger)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	s := &Server{
		auth:        deps.Auth,
		ledger:      deps.Ledger,
		dashboard:   deps.Dashboard,
		checks:      deps.Checks,
		logger:      logger,
		detector:    detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}, logger),
		trace:       trace.NewMiddleware(detector.ExtractClientIP, logger),
		started:     time.Now(),
	}

	s.Addr = opts.Addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 10 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		NotFoundError("Not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, req *http.Request) {
		TooManyRequestsError("Rate limit exceeded. Please try again later.").Write(w)
	}))
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	// authn wraps each route so a wrong method on a known path stays a 405
	requireUser := authn.Middleware(s.auth, func(w http.ResponseWriter, req *http.Request, err error) {
		UnauthorizedError("Unauthorized").Write(w)
	})
	private := func(path string, h http.HandlerFunc, method string) {
		api.Handle(path, requireUser(h)).Methods(method)
	}

	private("/auth/logout", s.handleLogout, http.MethodPost)
	private("/auth/me", s.handleMe, http.MethodGet)

	private("/debts", s.handleListDebts, http.MethodGet)
	private("/debts", s.handleCreateDebt, http.MethodPost)
	private("/debts/{id}", s.handleUpdateDebt, http.MethodPut)
	private("/debts/{id}", s.handleDeleteDebt, http.MethodDelete)

	private("/budget", s.handleListBudget, http.MethodGet)
	private("/budget", s.handleCreateBudgetItem, http.MethodPost)
	private("/budget/{id}", s.handleUpdateBudgetItem, http.MethodPut)
	private("/budget/{id}", s.handleDeleteBudgetItem, http.MethodDelete)

	private("/payments", s.handleListPayments, http.MethodGet)
	private("/payments", s.handleCreatePayment, http.MethodPost)
	private("/payments/debt/{debtId}", s.handleListDebtPayments, http.MethodGet)
	private("/payments/{id}", s.handleDeletePayment, http.MethodDelete)

	private("/dashboard/summary", s.handleSummary, http.MethodGet)
	private("/reports/budget", s.handleBudgetSummary, http.MethodGet)
	private("/reports/ranking", s.handleRanking, http.MethodGet)
	private("/reports/projection", s.handleProjection, http.MethodGet)
	private("/reports/savings", s.handleSavings, http.MethodGet)
	private("/reports/breakdown", s.handleBreakdown, http.MethodGet)
	private("/reports/calendar", s.handleCalendar, http.MethodGet)
	private("/reports/export.xlsx", s.handleExportWorkbook, http.MethodGet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	return s.trace.Middleware(s.detector.Middleware(headers.Middleware(r)))
}

// Shutdown stops background work and then drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
