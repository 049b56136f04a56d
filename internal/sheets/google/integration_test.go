//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"utang/internal/config"
	"utang/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_WriteReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := config.Load()
	if cfg.GoogleSpreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if cfg.GoogleServiceAccountJSON == "" && cfg.GoogleServiceAccountFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewFromConfig(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ref, err := client.WriteReport(ctx, core.Report{
		UserID:      "integration-test",
		GeneratedAt: time.Now(),
		Summary:     core.Summary{TotalDebt: core.NewMoney(12, 34), DebtCount: 1},
	})
	if err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}
	if ref == "" {
		t.Error("Expected non-empty reference")
	}
	t.Logf("Wrote report row at %s", ref)
}
