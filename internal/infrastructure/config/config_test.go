package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "arrange_my_list_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Session.CleanupInterval)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, time.UTC, cfg.Calendar.Location())
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("SERVER_PORT", "9099")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CALENDAR_TIMEZONE", "Europe/Berlin")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", cfg.Database.GetDSN())
	assert.Equal(t, 9099, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Europe/Berlin", cfg.Calendar.Location().String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"bad port", map[string]string{"SERVER_PORT": "70000"}},
		{"bad timezone", map[string]string{"CALENDAR_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestRequireSessionSecret(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Error(t, cfg.RequireSessionSecret())

	cfg.Session.Secret = "s3cret"
	assert.NoError(t, cfg.RequireSessionSecret())
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: debug\ncalendar:\n  timezone: Asia/Tokyo\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "Asia/Tokyo", cfg.Calendar.Timezone)
}
