// Package config loads application config from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	GeneralVersion   string `mapstructure:"GENERAL_VERSION"`
	Environment      string `mapstructure:"ENVIRONMENT"`
	ServerPort       int    `mapstructure:"SERVER_PORT"`
	CorsAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	// DatabaseDriver selects the record store: "sqlite" (DatabaseDbPath) or
	// "postgres" (DatabaseHost and friends).
	DatabaseDriver       string `mapstructure:"DB_DRIVER"`
	DatabaseDbPath       string `mapstructure:"DB_PATH"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`

	// AuthJWTSecret verifies the HS256 bearer tokens issued by the auth provider.
	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`

	EmailProviderBaseURL        string `mapstructure:"EMAIL_PROVIDER_BASE_URL"`
	EmailProviderTimeoutSeconds int    `mapstructure:"EMAIL_PROVIDER_TIMEOUT_SECONDS"`
	// EmailKeySecret seals stored provider API keys. Empty stores them as-is.
	EmailKeySecret string `mapstructure:"EMAIL_KEY_SECRET"`

	ReadinessDebounceSeconds int `mapstructure:"READINESS_DEBOUNCE_SECONDS"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `mapstructure:"OTEL_ENDPOINT"`
}

func InitConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("GENERAL_VERSION", "dev")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", 8280)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "data/clinicdesk.db")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_CACHE_ADDRESS", "localhost")
	v.SetDefault("DB_CACHE_PORT", 6379)
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("EMAIL_PROVIDER_BASE_URL", "https://api.resend.com")
	v.SetDefault("EMAIL_PROVIDER_TIMEOUT_SECONDS", 15)
	v.SetDefault("EMAIL_KEY_SECRET", "")
	v.SetDefault("READINESS_DEBOUNCE_SECONDS", 5)
	v.SetDefault("OTEL_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseDbPath == "" {
			return errors.New("config: DB_PATH must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseHost == "" || c.DatabaseName == "" {
			return errors.New("config: DB_HOST and DB_NAME must be set for the postgres driver")
		}
	default:
		return errors.New("config: DB_DRIVER must be sqlite or postgres")
	}

	if c.AuthJWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET must be set")
	}

	if c.ServerPort <= 0 {
		return errors.New("config: SERVER_PORT must be positive")
	}

	if c.ReadinessDebounceSeconds < 0 {
		return errors.New("config: READINESS_DEBOUNCE_SECONDS must not be negative")
	}

	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ReadinessDebounce returns the visibility-resume debounce window.
func (c Config) ReadinessDebounce() time.Duration {
	return time.Duration(c.ReadinessDebounceSeconds) * time.Second
}

func (c Config) EmailProviderTimeout() time.Duration {
	if c.EmailProviderTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.EmailProviderTimeoutSeconds) * time.Second
}

func (c Config) CorsOrigins() string {
	return strings.TrimSpace(c.CorsAllowOrigins)
}
