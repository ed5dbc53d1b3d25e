package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies VOLSPIKE_* environment variable overrides, and
// returns the final Config. A missing config file is not an error: the
// defaults plus environment overrides are enough to run. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known VOLSPIKE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "VOLSPIKE_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // deployment-platform alias
	setStr(&cfg.Postgres.Host, "VOLSPIKE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "VOLSPIKE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "VOLSPIKE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "VOLSPIKE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "VOLSPIKE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "VOLSPIKE_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "VOLSPIKE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "VOLSPIKE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "VOLSPIKE_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "VOLSPIKE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "VOLSPIKE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "VOLSPIKE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "VOLSPIKE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "VOLSPIKE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "VOLSPIKE_REDIS_TLS_ENABLED")

	// ── Binance ──
	setStr(&cfg.Binance.BaseURL, "VOLSPIKE_BINANCE_BASE_URL")
	setStr(&cfg.Binance.ProxyURL, "VOLSPIKE_BINANCE_PROXY_URL")
	setDuration(&cfg.Binance.InfoTimeout, "VOLSPIKE_BINANCE_INFO_TIMEOUT")
	setDuration(&cfg.Binance.TickerTimeout, "VOLSPIKE_BINANCE_TICKER_TIMEOUT")

	// ── Universe ── (names kept compatible with the legacy deployment)
	setFloat64(&cfg.Universe.EnterThreshold, "OI_LIQUID_ENTER_QUOTE_24H")
	setFloat64(&cfg.Universe.ExitThreshold, "OI_LIQUID_EXIT_QUOTE_24H")
	setInt(&cfg.Universe.MaxReqPerMin, "OI_MAX_REQ_PER_MIN")
	setInt(&cfg.Universe.MinIntervalSec, "OI_MIN_INTERVAL_SEC")
	setInt(&cfg.Universe.MaxIntervalSec, "OI_MAX_INTERVAL_SEC")
	setDuration(&cfg.Universe.ClassifyInterval, "VOLSPIKE_CLASSIFY_INTERVAL")

	// ── Ingest ──
	setStr(&cfg.Ingest.APIKey, "VOLSPIKE_API_KEY")

	// ── Archive / S3 ──
	setBool(&cfg.Archive.Enabled, "VOLSPIKE_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "VOLSPIKE_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "VOLSPIKE_ARCHIVE_INTERVAL")
	setStr(&cfg.S3.Endpoint, "VOLSPIKE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "VOLSPIKE_S3_REGION")
	setStr(&cfg.S3.Bucket, "VOLSPIKE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "VOLSPIKE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "VOLSPIKE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "VOLSPIKE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "VOLSPIKE_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setInt(&cfg.Server.Port, "VOLSPIKE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "VOLSPIKE_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.EmailEndpoint, "VOLSPIKE_NOTIFY_EMAIL_ENDPOINT")
	setStr(&cfg.Notify.EmailAPIKey, "VOLSPIKE_NOTIFY_EMAIL_API_KEY")
	setStr(&cfg.Notify.EmailFrom, "VOLSPIKE_NOTIFY_EMAIL_FROM")
	setStringSlice(&cfg.Notify.EmailTo, "VOLSPIKE_NOTIFY_EMAIL_TO")
	setStringSlice(&cfg.Notify.Events, "VOLSPIKE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "VOLSPIKE_MODE")
	setStr(&cfg.LogLevel, "VOLSPIKE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
