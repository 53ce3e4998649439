package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Breeding  BreedingConfig
	Alerts    AlertsConfig
	Scheduler SchedulerConfig
	Slack     SlackConfig
	LogLevel  string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to import events from the
// Google Sheet kept by farm staff. Optional; import is disabled when empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	EventsRange     string
}

// BreedingConfig carries the temporal constants of the breeding engine.
type BreedingConfig struct {
	GestationDays       int
	PregCheckOffsetDays int
}

// AlertsConfig carries the per-farm rating bands.
type AlertsConfig struct {
	DaysOpenOK       int
	DaysOpenLow      int
	DaysOpenMedium   int
	InseminationOK   int
	InseminationHigh int
	LookaheadDays    int
}

// SchedulerConfig holds cron-related settings.
type SchedulerConfig struct {
	SnapshotCronSchedule string
	DigestCronSchedule   string
	Timezone             string
}

// SlackConfig contains the incoming-webhook settings for alert digests.
// Optional; digest delivery is disabled when the URL is empty.
type SlackConfig struct {
	WebhookURL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "herdsman"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EVENTS_ID"),
			EventsRange:     getenvWithDefault("GOOGLE_SHEET_EVENTS_RANGE", "Events!A2:E"),
		},
		Breeding: BreedingConfig{
			GestationDays:       getenvIntWithDefault("GESTATION_DAYS", 282),
			PregCheckOffsetDays: getenvIntWithDefault("PREG_CHECK_OFFSET_DAYS", 30),
		},
		Alerts: AlertsConfig{
			DaysOpenOK:       getenvIntWithDefault("ALERT_DAYS_OPEN_OK", 60),
			DaysOpenLow:      getenvIntWithDefault("ALERT_DAYS_OPEN_LOW", 90),
			DaysOpenMedium:   getenvIntWithDefault("ALERT_DAYS_OPEN_MEDIUM", 120),
			InseminationOK:   getenvIntWithDefault("ALERT_INSEMINATION_OK", 2),
			InseminationHigh: getenvIntWithDefault("ALERT_INSEMINATION_HIGH", 4),
			LookaheadDays:    getenvIntWithDefault("ALERT_LOOKAHEAD_DAYS", 7),
		},
		Scheduler: SchedulerConfig{
			SnapshotCronSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "30 0 * * *"),
			DigestCronSchedule:   getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:             getenvWithDefault("TIMEZONE", "UTC"),
		},
		Slack: SlackConfig{
			WebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// day counts make sense. Threshold band ordering is checked again by the
// alert deriver's Thresholds type at startup.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Breeding.GestationDays <= 0 {
		return errors.New("GESTATION_DAYS must be positive")
	}
	if c.Breeding.PregCheckOffsetDays <= 0 {
		return errors.New("PREG_CHECK_OFFSET_DAYS must be positive")
	}

	if c.Scheduler.SnapshotCronSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.DigestCronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_EVENTS_ID is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
