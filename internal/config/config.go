package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongoDB = "mongodb"
	StoreRedis   = "redis"
	StoreMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Sheets   SheetsConfig
	Schedule ScheduleConfig
	Auth     AuthConfig
	Shop     ShopConfig
	WhatsApp WhatsAppConfig
	Undo     UndoConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects the durable store driver.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the redis store driver.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Both fields empty disables spreadsheet sync and the remote product source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether spreadsheet access is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ScheduleConfig holds cron settings for timed jobs.
type ScheduleConfig struct {
	BackupCron    string
	DailySyncCron string
	Timezone      string
}

// Location resolves the configured timezone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AuthConfig is the single shared staff credential.
type AuthConfig struct {
	Username string
	Password string
}

// ShopConfig holds values rendered into customer messages and printouts.
type ShopConfig struct {
	Name string
}

// WhatsAppConfig contains credentials for optional notification dispatch.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
}

// Enabled reports whether WhatsApp dispatch is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// UndoConfig sizes the undo ledger. Zero values keep the ledger defaults.
type UndoConfig struct {
	Capacity     int
	DismissAfter time.Duration
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := strconv.Atoi(getenvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	undoCapacity, err := strconv.Atoi(getenvWithDefault("UNDO_CAPACITY", "10"))
	if err != nil {
		return nil, fmt.Errorf("UNDO_CAPACITY must be an integer: %w", err)
	}
	undoDismiss, err := time.ParseDuration(getenvWithDefault("UNDO_DISMISS_AFTER", "5s"))
	if err != nil {
		return nil, fmt.Errorf("UNDO_DISMISS_AFTER must be a duration: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "butchershop"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Schedule: ScheduleConfig{
			BackupCron:    getenvWithDefault("BACKUP_CRON_SCHEDULE", "30 20 * * *"),
			DailySyncCron: getenvWithDefault("DAILY_SYNC_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:      getenvWithDefault("TIMEZONE", "Europe/London"),
		},
		Auth: AuthConfig{
			Username: os.Getenv("STAFF_USERNAME"),
			Password: os.Getenv("STAFF_PASSWORD"),
		},
		Shop: ShopConfig{
			Name: getenvWithDefault("SHOP_NAME", "The Butcher's Block"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
		Undo: UndoConfig{
			Capacity:     undoCapacity,
			DismissAfter: undoDismiss,
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
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

	switch c.Store.Driver {
	case StoreMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
			return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.Schedule.BackupCron == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Schedule.Timezone, err)
	}

	if c.Undo.Capacity < 0 || c.Undo.DismissAfter < 0 {
		return errors.New("UNDO_CAPACITY and UNDO_DISMISS_AFTER must not be negative")
	}

	switch {
	case c.Auth.Username == "":
		return errors.New("STAFF_USERNAME must be provided")
	case c.Auth.Password == "":
		return errors.New("STAFF_PASSWORD must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
