package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the otpdash server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Email      EmailConfig      `mapstructure:"email"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`

	// PublicURL is the externally reachable origin used in outbound email links.
	PublicURL string `mapstructure:"public_url"`
}

// IsProduction reports whether the server runs with production hardening.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.Environment), "production")
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string            `mapstructure:"driver"`
	Path     string            `mapstructure:"path"`
	DSN      string            `mapstructure:"dsn"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Name     string            `mapstructure:"name"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
	Pool     PoolSettings      `mapstructure:"pool"`
}

// PoolSettings bounds the database connection pool.
type PoolSettings struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT     JWTSettings     `mapstructure:"jwt"`
	Session SessionSettings `mapstructure:"session"`
	OTP     OTPSettings     `mapstructure:"otp"`
}

// JWTSettings configures the signed session cookie.
type JWTSettings struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// SessionSettings configures server-side sessions.
type SessionSettings struct {
	TTL             time.Duration `mapstructure:"ttl"`
	SecureCookie    bool          `mapstructure:"secure_cookie"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
}

// OTPSettings configures one-time codes.
type OTPSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	Provider string       `mapstructure:"provider"`
	From     string       `mapstructure:"from"`
	FromName string       `mapstructure:"from_name"`
	SMTP     SMTPConfig   `mapstructure:"smtp"`
	Resend   ResendConfig `mapstructure:"resend"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ResendConfig holds Resend API credentials.
type ResendConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// CatalogConfig describes the remote product catalog.
type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size"`
	HoldTTL   time.Duration `mapstructure:"hold_ttl"`
	HoldSlots int           `mapstructure:"hold_slots"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// RateLimitConfig bounds requests per client to the public auth endpoints.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("OTPDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.public_url", "http://localhost:8000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/otpdash.sqlite")
	v.SetDefault("database.pool.max_open_conns", 0)
	v.SetDefault("database.pool.max_idle_conns", 0)
	v.SetDefault("database.pool.conn_max_lifetime", "0s")

	v.SetDefault("auth.jwt.issuer", "otpdash")
	v.SetDefault("auth.session.ttl", "168h") // 7 days
	v.SetDefault("auth.session.secure_cookie", false)
	v.SetDefault("auth.session.cleanup_schedule", "@hourly")
	v.SetDefault("auth.otp.ttl", "10m")

	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.from", "noreply@dashboard.com")
	v.SetDefault("email.from_name", "Dashboard App")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")
	v.SetDefault("email.resend.api_key", "")

	v.SetDefault("catalog.base_url", "https://dummyjson.com/products")
	v.SetDefault("catalog.limit", 100)
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.cache_ttl", "0s")
	v.SetDefault("catalog.cache_size", 1)
	v.SetDefault("catalog.hold_ttl", "30m")
	v.SetDefault("catalog.hold_slots", 256)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("cors.origins", []string{})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
