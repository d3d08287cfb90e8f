package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "data/clinicdesk.db", cfg.DatabaseDbPath)
	assert.Equal(t, 8280, cfg.ServerPort)
	assert.Equal(t, "https://api.resend.com", cfg.EmailProviderBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ReadinessDebounce())
	assert.Equal(t, 15*time.Second, cfg.EmailProviderTimeout())
	assert.False(t, cfg.IsProduction())
}

func TestInitConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("READINESS_DEBOUNCE_SECONDS", "12")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("EMAIL_PROVIDER_TIMEOUT_SECONDS", "3")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Second, cfg.ReadinessDebounce())
	assert.Equal(t, 3*time.Second, cfg.EmailProviderTimeout())
	assert.True(t, cfg.IsProduction())
}

func TestInitConfig_MissingJWTSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := InitConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseDriver: DriverSQLite,
		DatabaseDbPath: "data/test.db",
		AuthJWTSecret:  "secret",
		ServerPort:     8280,
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{
			name:     "sqlite without path",
			mutate:   func(c *Config) { c.DatabaseDbPath = "" },
			errorMsg: "DB_PATH",
		},
		{
			name: "valid postgres",
			mutate: func(c *Config) {
				c.DatabaseDriver = DriverPostgres
				c.DatabaseHost = "localhost"
				c.DatabaseName = "clinicdesk"
			},
		},
		{
			name:     "postgres without host",
			mutate:   func(c *Config) { c.DatabaseDriver = DriverPostgres },
			errorMsg: "DB_HOST",
		},
		{
			name:     "unknown driver",
			mutate:   func(c *Config) { c.DatabaseDriver = "mysql" },
			errorMsg: "DB_DRIVER",
		},
		{
			name:     "zero port",
			mutate:   func(c *Config) { c.ServerPort = 0 },
			errorMsg: "SERVER_PORT",
		},
		{
			name:     "negative debounce",
			mutate:   func(c *Config) { c.ReadinessDebounceSeconds = -1 },
			errorMsg: "READINESS_DEBOUNCE_SECONDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			}
		})
	}
}
