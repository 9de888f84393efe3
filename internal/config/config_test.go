package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STAFF_USERNAME", "staff")
	t.Setenv("STAFF_PASSWORD", "secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("BACKUP_CRON_SCHEDULE", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("UNDO_CAPACITY", "")
	t.Setenv("UNDO_DISMISS_AFTER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreMongoDB, cfg.Store.Driver)
	assert.Equal(t, "30 20 * * *", cfg.Schedule.BackupCron)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, 10, cfg.Undo.Capacity)
	assert.Equal(t, 5*time.Second, cfg.Undo.DismissAfter)
}

func TestLoadUndoSettings(t *testing.T) {
	t.Setenv("STAFF_USERNAME", "staff")
	t.Setenv("STAFF_PASSWORD", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("UNDO_CAPACITY", "25")
	t.Setenv("UNDO_DISMISS_AFTER", "8s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Undo.Capacity)
	assert.Equal(t, 8*time.Second, cfg.Undo.DismissAfter)

	t.Setenv("UNDO_CAPACITY", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadFromEnvFile(t *testing.T) {
	keys := []string{"STAFF_USERNAME", "STAFF_PASSWORD", "STORE_DRIVER", "TIMEZONE"}
	for _, key := range keys {
		// godotenv never overrides variables that already exist, even when empty.
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range keys {
			_ = os.Unsetenv(key)
		}
	})

	path := filepath.Join(t.TempDir(), "test.env")
	content := "STAFF_USERNAME=counter\nSTAFF_PASSWORD=pw\nSTORE_DRIVER=memory\nTIMEZONE=UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "counter", cfg.Auth.Username)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Store:    StoreConfig{Driver: StoreMemory},
			Schedule: ScheduleConfig{BackupCron: "30 20 * * *", Timezone: "UTC"},
			Auth:     AuthConfig{Username: "staff", Password: "pw"},
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"unknown driver":      func(c *Config) { c.Store.Driver = "sqlite" },
		"half sheets":         func(c *Config) { c.Sheets.SpreadsheetID = "abc" },
		"bad timezone":        func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" },
		"missing password":    func(c *Config) { c.Auth.Password = "" },
		"missing port":        func(c *Config) { c.Server.Port = "" },
		"missing redis":       func(c *Config) { c.Store.Driver = StoreRedis },
		"missing backup cron": func(c *Config) { c.Schedule.BackupCron = "" },
		"negative undo":       func(c *Config) { c.Undo.Capacity = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
