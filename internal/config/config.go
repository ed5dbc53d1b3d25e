// Package config defines the configuration for the VolSpike OI backend and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by VOLSPIKE_* environment
// variables.
type Config struct {
	Postgres Postgres `toml:"postgres"`
	Redis    Redis    `toml:"redis"`
	Binance  Binance  `toml:"binance"`
	Universe Universe `toml:"universe"`
	Ingest   Ingest   `toml:"ingest"`
	Archive  Archive  `toml:"archive"`
	S3       S3       `toml:"s3"`
	Server   Server   `toml:"server"`
	Notify   Notify   `toml:"notify"`
	Auth     Auth     `toml:"auth"`
	Mode     string   `toml:"mode"`
	LogLevel string   `toml:"log_level"`
}

// Postgres holds PostgreSQL connection parameters.
type Postgres struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Redis holds Redis connection parameters.
type Redis struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// Binance holds upstream market-data parameters. ProxyURL, when set, is
// preferred for the exchangeInfo fetch with direct Binance as fallback.
type Binance struct {
	BaseURL       string   `toml:"base_url"`
	ProxyURL      string   `toml:"proxy_url"`
	InfoTimeout   duration `toml:"info_timeout"`
	TickerTimeout duration `toml:"ticker_timeout"`
}

// Universe holds the liquid-universe classification parameters.
type Universe struct {
	EnterThreshold   float64  `toml:"enter_threshold"`
	ExitThreshold    float64  `toml:"exit_threshold"`
	ClassifyInterval duration `toml:"classify_interval"`
	MaxReqPerMin     int      `toml:"max_req_per_min"`
	MinIntervalSec   int      `toml:"min_interval_sec"`
	MaxIntervalSec   int      `toml:"max_interval_sec"`
}

// Ingest holds the machine-to-machine ingestion parameters.
type Ingest struct {
	// APIKey is the shared secret the upstream poller presents on every
	// ingestion call. Empty disables machine endpoints entirely.
	APIKey string `toml:"api_key"`
}

// Archive holds cold-storage archival parameters.
type Archive struct {
	Enabled       bool     `toml:"enabled"`
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// S3 holds S3-compatible object storage parameters for sample archival.
type S3 struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// Server holds HTTP server parameters.
type Server struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Notify holds outbound notification parameters. Email delivery posts to an
// HTTP transactional-mail API; failures are logged and never surfaced to
// ingestion callers.
type Notify struct {
	EmailEndpoint string   `toml:"email_endpoint"`
	EmailAPIKey   string   `toml:"email_api_key"`
	EmailFrom     string   `toml:"email_from"`
	EmailTo       []string `toml:"email_to"`
	Events        []string `toml:"events"`
}

// Auth maps static end-user bearer tokens to tier names. This stands in for
// the real authentication layer, which is an external collaborator.
type Auth struct {
	Tokens map[string]string `toml:"tokens"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration. Threshold and budget defaults
// match the production classifier: $4M enter / $2M exit, 2000 req/min spread
// over a 5-20s interval window.
func Defaults() Config {
	return Config{
		Postgres: Postgres{
			Port:         5432,
			SSLMode:      "disable",
			PoolMaxConns: 8,
			PoolMinConns: 1,
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		Binance: Binance{
			BaseURL:       "https://fapi.binance.com",
			InfoTimeout:   duration{15 * time.Second},
			TickerTimeout: duration{30 * time.Second},
		},
		Universe: Universe{
			EnterThreshold:   4_000_000,
			ExitThreshold:    2_000_000,
			ClassifyInterval: duration{5 * time.Minute},
			MaxReqPerMin:     2000,
			MinIntervalSec:   5,
			MaxIntervalSec:   20,
		},
		Archive: Archive{
			RetentionDays: 30,
			Interval:      duration{24 * time.Hour},
		},
		Server: Server{
			Port: 3001,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// Validate checks cross-field invariants. It must be called after Load.
func (c *Config) Validate() error {
	var problems []string

	// The hysteresis band requires exit < enter; classifier behavior is
	// undefined outside this ordering.
	if c.Universe.ExitThreshold >= c.Universe.EnterThreshold {
		problems = append(problems, fmt.Sprintf(
			"universe.exit_threshold (%.0f) must be below universe.enter_threshold (%.0f)",
			c.Universe.ExitThreshold, c.Universe.EnterThreshold,
		))
	}
	if c.Universe.EnterThreshold <= 0 {
		problems = append(problems, "universe.enter_threshold must be positive")
	}
	if c.Universe.MinIntervalSec <= 0 || c.Universe.MaxIntervalSec < c.Universe.MinIntervalSec {
		problems = append(problems, "universe interval bounds must satisfy 0 < min <= max")
	}
	if c.Universe.MaxReqPerMin <= 0 {
		problems = append(problems, "universe.max_req_per_min must be positive")
	}
	if c.Universe.ClassifyInterval.Duration <= 0 {
		problems = append(problems, "universe.classify_interval must be positive")
	}

	switch c.Mode {
	case "serve", "classify", "full":
	default:
		problems = append(problems, fmt.Sprintf("unsupported mode %q", c.Mode))
	}

	if c.Mode != "classify" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
		}
		if c.Ingest.APIKey == "" {
			problems = append(problems, "ingest.api_key is required when serving ingestion endpoints")
		}
	}

	if c.Binance.BaseURL == "" {
		problems = append(problems, "binance.base_url is required")
	}

	if c.Archive.Enabled {
		if c.S3.Bucket == "" || c.S3.Region == "" {
			problems = append(problems, "archive enabled but s3.bucket / s3.region not configured")
		}
		if c.Archive.RetentionDays <= 0 {
			problems = append(problems, "archive.retention_days must be positive")
		}
	}

	for token, tier := range c.Auth.Tokens {
		switch tier {
		case "free", "pro", "elite":
		default:
			problems = append(problems, fmt.Sprintf("auth token %q has unknown tier %q", abbreviate(token), tier))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// abbreviate shortens a secret for error messages.
func abbreviate(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "..."
}
