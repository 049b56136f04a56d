package backend

import (
	"context"
	"fmt"
	"time"

	"utang/internal/auth"
	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
)

// UserEnsurer registers a user unless one with that name already exists.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, in auth.RegisterInput) (core.User, error)
}

// SeedDemoAccount makes sure the demo user exists and, when the account is
// empty, fills it with sample records.
func SeedDemoAccount(ctx context.Context, users UserEnsurer, store ledger.DemoStore, username, password string, logger *applog.Logger) error {
	if username == "" {
		return nil
	}
	if logger == nil {
		logger = applog.Discard()
	}
	u, err := users.EnsureUser(ctx, auth.RegisterInput{
		Username: username,
		Password: password,
		FullName: "Demo User",
	})
	if err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}
	if err := ledger.SeedDemo(ctx, store, u.ID, time.Now()); err != nil {
		return fmt.Errorf("seed demo ledger: %w", err)
	}
	logger.Info("Demo account ready", applog.FieldUserID, u.ID, "username", u.Username)
	return nil
}
