package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"utang/internal/config"
	"utang/internal/core"
	applog "utang/internal/log"
	ports "utang/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportSheet   string
	logger        *applog.Logger

	mu          sync.Mutex
	headerReady bool
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// NewFromConfig creates a Sheets client authenticated with a service account.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.GoogleSpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	creds, err := serviceAccountCredentials(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, cfg.GoogleReportSheet, logger), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, sheet string, logger *applog.Logger) *Client {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = "Reports"
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, reportSheet: sheet, logger: logger}
}

// serviceAccountCredentials prefers inline JSON, then the configured file,
// then GOOGLE_APPLICATION_CREDENTIALS.
func serviceAccountCredentials(cfg *config.Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.GoogleServiceAccountJSON)
	file := strings.TrimSpace(cfg.GoogleServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteReport appends one row summarizing r and returns the updated range.
func (c *Client) WriteReport(ctx context.Context, r core.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return "", errors.New("report has no user")
	}
	if err := c.prepare(ctx); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:%s", c.reportSheet, lastColumn)
	vr := &gsheet.ValueRange{Values: [][]any{reportRow(r)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report to %s: %w", c.reportSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Report row appended",
		applog.FieldUserID, r.UserID,
		"range", ref)
	return ref, nil
}

// prepare checks the header once per client; a failed check is retried on
// the next write.
func (c *Client) prepare(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headerReady {
		return nil
	}
	if err := c.ensureHeader(ctx); err != nil {
		return err
	}
	c.headerReady = true
	return nil
}

// ensureHeader writes the header row into an empty sheet and rejects a sheet
// whose first row is some other layout.
func (c *Client) ensureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:%s1", c.reportSheet, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	var first []any
	if len(resp.Values) > 0 {
		first = resp.Values[0]
	}
	empty, err := checkHeader(first)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	header := make([]any, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", c.reportSheet, err)
	}
	c.logger.InfoContext(ctx, "Report header written", "sheet", c.reportSheet)
	return nil
}

// amount renders money for USER_ENTERED input so Sheets parses a number.
func amount(m core.Money) string { return m.String() }

func reportRow(r core.Report) []any {
	s := r.Summary
	return []any{
		r.GeneratedAt.UTC().Format(time.RFC3339),
		r.UserID,
		amount(s.TotalDebt),
		amount(s.TotalPaid),
		amount(s.MonthlyPayments),
		s.DebtCount,
		amount(s.TotalIncome),
		amount(s.TotalExpenses),
		amount(s.AvailableForDebt),
		s.BudgetHealth,
		amount(s.ExtraPool),
		r.Projection.MonthsToPayoff,
		amount(r.Savings.EstimatedSaved),
	}
}
