package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"utang/internal/auth"
	"utang/internal/backend"
	"utang/internal/cache"
	"utang/internal/cli"
	"utang/internal/config"
	"utang/internal/core"
	apphttp "utang/internal/http"
	applog "utang/internal/log"
	"utang/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(config.RoleAPI, applog.ComponentApp)
	logger.Info("Starting utang server", "port", cfg.Port, "backend", cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	dashboard := services.NewDashboardService(res.Store, services.DashboardOptions{
		HorizonMonths: cfg.ProjectionHorizonMonths,
		Allocation:    core.ExtraAllocation(cfg.ExtraAllocation),
		CacheSize:     cfg.DashboardCacheSize,
		CacheTTL:      cfg.DashboardCacheTTL,
	}, logger)
	ledgerSvc := services.NewLedgerService(res.Store, res.Publisher, dashboard, logger)
	authSvc := auth.NewService(res.Store, auth.NewTokenStore(cfg.JWTSecret, cfg.SessionTTL), 0, logger)

	caches := cache.NewManager(logger)
	caches.Register(dashboard.Cache())
	caches.StartCleanup(time.Minute)

	if err := backend.SeedDemoAccount(context.Background(), authSvc, res.Store, cfg.DemoUser, cfg.DemoPassword, logger); err != nil {
		logger.Warn("Demo account not seeded", applog.FieldError, err)
	}

	checks := make(map[string]apphttp.CheckFunc, len(res.Checks))
	for name, check := range res.Checks {
		checks[name] = apphttp.CheckFunc(check)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Auth:      authSvc,
		Ledger:    ledgerSvc,
		Dashboard: dashboard,
		Checks:    checks,
	}, logger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
