package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Data     DataConfig
	MongoDB  MongoDBConfig
	Sheets   SheetsConfig
	Schedule ScheduleConfig
	WhatsApp WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// DataConfig controls how the dataset is seeded.
type DataConfig struct {
	SampleEnabled bool
}

// MongoDBConfig holds settings for MongoDB. An empty URI keeps the archive in memory.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether MongoDB should be used.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// SheetsConfig contains configuration required to import data from Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether a sheet import source is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// ScheduleConfig holds cron expressions for background jobs. An empty expression
// disables the job.
type ScheduleConfig struct {
	SnapshotCron  string
	SheetSyncCron string
	DigestCron    string
	Timezone      string
}

// WhatsAppConfig contains credentials for the WhatsApp digest notifier.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	DigestTo      string
}

// Enabled reports whether the notifier has enough settings to send messages.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.DigestTo != ""
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

	maxUpload, err := getenvInt64("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}
	sampleEnabled, err := getenvBool("SAMPLE_DATA_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			MaxUploadBytes: maxUpload,
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
		Data: DataConfig{
			SampleEnabled: sampleEnabled,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "factoryboard"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Data!A:L"),
		},
		Schedule: ScheduleConfig{
			SnapshotCron:  getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "*/15 * * * *"),
			SheetSyncCron: os.Getenv("SHEET_SYNC_CRON_SCHEDULE"),
			DigestCron:    os.Getenv("DIGEST_CRON_SCHEDULE"),
			Timezone:      getenvWithDefault("TIMEZONE", "UTC"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			DigestTo:      os.Getenv("WHATSAPP_DIGEST_TO"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID must be provided together")
	}

	if c.Sheets.Enabled() && c.Sheets.Range == "" {
		return errors.New("GOOGLE_SHEET_RANGE must not be empty")
	}

	if c.Schedule.SheetSyncCron != "" && !c.Sheets.Enabled() {
		return errors.New("SHEET_SYNC_CRON_SCHEDULE requires a configured Google Sheet")
	}

	if c.Schedule.DigestCron != "" && !c.WhatsApp.Enabled() {
		return errors.New("DIGEST_CRON_SCHEDULE requires WHATSAPP_TOKEN, WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_DIGEST_TO")
	}

	for key, expr := range map[string]string{
		"SNAPSHOT_CRON_SCHEDULE":   c.Schedule.SnapshotCron,
		"SHEET_SYNC_CRON_SCHEDULE": c.Schedule.SheetSyncCron,
		"DIGEST_CRON_SCHEDULE":     c.Schedule.DigestCron,
	} {
		if expr == "" {
			continue
		}
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("%s is invalid: %w", key, err)
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
