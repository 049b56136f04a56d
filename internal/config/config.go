package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Role selects which binary-specific checks Validate runs.
type Role string

const (
	RoleAPI            Role = "api"
	RoleReportWorker   Role = "report-worker"
	RoleReminderWorker Role = "reminder-worker"
)

const minJWTSecretLength = 16

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	LogLevel string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP; an empty URL disables event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sessions
	JWTSecret  string
	SessionTTL time.Duration

	// Reports
	ProjectionHorizonMonths int
	ExtraAllocation         string
	DashboardCacheTTL       time.Duration
	DashboardCacheSize      int

	// Google Sheets report export
	GoogleSpreadsheetID      string
	GoogleReportSheet        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Full re-export of every user's report; 0 disables it
	ReportSweepInterval time.Duration

	// Reminders
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
	ReminderSchedule  string
	ReminderDaysAhead int

	// Seeds a demo account on start when set
	DemoUser     string
	DemoPassword string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/utang.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "utang"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		ProjectionHorizonMonths: getEnvInt("PROJECTION_HORIZON_MONTHS", 60),
		ExtraAllocation:         getEnv("EXTRA_ALLOCATION", "equal"),
		DashboardCacheTTL:       getEnvDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		DashboardCacheSize:      getEnvInt("DASHBOARD_CACHE_SIZE", 500),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleReportSheet:        getEnv("GOOGLE_REPORT_SHEET", "Reports"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		ReportSweepInterval:      getEnvDuration("REPORT_SWEEP_INTERVAL", 6*time.Hour),

		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", ""),
		ReminderSchedule:  getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		ReminderDaysAhead: getEnvInt("REMINDER_DAYS_AHEAD", 3),

		DemoUser:     getEnv("DEMO_USER", ""),
		DemoPassword: getEnv("DEMO_PASSWORD", "demo-password"),
	}
}

// Validate checks the shared settings plus those the given role needs, and
// returns one error listing every problem.
func (c *Config) Validate(role Role) error {
	var errors []string

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ProjectionHorizonMonths < 1 || c.ProjectionHorizonMonths > 600 {
		errors = append(errors, fmt.Sprintf("invalid projection horizon %d: must be between 1 and 600 months", c.ProjectionHorizonMonths))
	}
	if c.ExtraAllocation != "equal" && c.ExtraAllocation != "focused" {
		errors = append(errors, fmt.Sprintf("invalid extra allocation '%s': must be 'equal' or 'focused'", c.ExtraAllocation))
	}
	if c.DashboardCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}
	if c.DashboardCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache size %d: must be at least 1", c.DashboardCacheSize))
	}

	switch role {
	case RoleAPI:
		errors = append(errors, c.validateAPI()...)
	case RoleReportWorker:
		errors = append(errors, c.validateReportWorker()...)
	case RoleReminderWorker:
		errors = append(errors, c.validateReminderWorker()...)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func (c *Config) validateAPI() []string {
	var errors []string
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if c.SessionTTL < time.Minute || c.SessionTTL > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be between 1 minute and 30 days", c.SessionTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	return errors
}

func (c *Config) validateReportWorker() []string {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the report worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the report worker")
	}
	if c.GoogleReportSheet == "" {
		errors = append(errors, "GOOGLE_REPORT_SHEET cannot be empty")
	}
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasFile && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	if c.ReportSweepInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid report sweep interval %s: must not be negative", c.ReportSweepInterval))
	}
	return errors
}

func (c *Config) validateReminderWorker() []string {
	var errors []string
	if c.SMTPHost == "" {
		errors = append(errors, "SMTP_HOST is required for the reminder worker")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
	}
	if _, err := mail.ParseAddress(c.SenderEmail); err != nil {
		errors = append(errors, fmt.Sprintf("invalid SENDER_EMAIL '%s'", c.SenderEmail))
	}
	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid REMINDER_SCHEDULE '%s': %v", c.ReminderSchedule, err))
	}
	if c.ReminderDaysAhead < 0 || c.ReminderDaysAhead > 27 {
		errors = append(errors, fmt.Sprintf("invalid reminder days ahead %d: must be between 0 and 27", c.ReminderDaysAhead))
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
