package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Ingest.APIKey = "test-secret"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 4_000_000.0, cfg.Universe.EnterThreshold)
	assert.Equal(t, 2_000_000.0, cfg.Universe.ExitThreshold)
	assert.Equal(t, 2000, cfg.Universe.MaxReqPerMin)
	assert.Equal(t, 5, cfg.Universe.MinIntervalSec)
	assert.Equal(t, 20, cfg.Universe.MaxIntervalSec)
	assert.Equal(t, 5*time.Minute, cfg.Universe.ClassifyInterval.Duration)
	assert.Equal(t, "https://fapi.binance.com", cfg.Binance.BaseURL)
}

func TestValidate(t *testing.T) {
	t.Run("defaults with secret pass", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("threshold ordering enforced", func(t *testing.T) {
		cfg := validConfig()
		cfg.Universe.ExitThreshold = cfg.Universe.EnterThreshold
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit_threshold")
	})

	t.Run("serve mode requires ingest secret", func(t *testing.T) {
		cfg := Defaults()
		cfg.Mode = "serve"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ingest.api_key")
	})

	t.Run("classify mode runs without server settings", func(t *testing.T) {
		cfg := Defaults()
		cfg.Mode = "classify"
		cfg.Server.Port = 0
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mode = "trade"
		require.Error(t, cfg.Validate())
	})

	t.Run("archive requires s3 settings", func(t *testing.T) {
		cfg := validConfig()
		cfg.Archive.Enabled = true
		require.Error(t, cfg.Validate())

		cfg.S3.Bucket = "volspike-archive"
		cfg.S3.Region = "us-east-1"
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown tier rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.Tokens = map[string]string{"tok-abc123": "platinum"}
		require.Error(t, cfg.Validate())
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OI_LIQUID_ENTER_QUOTE_24H", "6000000")
	t.Setenv("OI_LIQUID_EXIT_QUOTE_24H", "3000000")
	t.Setenv("VOLSPIKE_API_KEY", "env-secret")
	t.Setenv("VOLSPIKE_CLASSIFY_INTERVAL", "90s")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 6_000_000.0, cfg.Universe.EnterThreshold)
	assert.Equal(t, 3_000_000.0, cfg.Universe.ExitThreshold)
	assert.Equal(t, "env-secret", cfg.Ingest.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Universe.ClassifyInterval.Duration)
}
