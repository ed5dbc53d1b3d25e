package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/volspike/volspike/internal/blob/s3"
	"github.com/volspike/volspike/internal/cache/redis"
	"github.com/volspike/volspike/internal/config"
	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/notify"
	"github.com/volspike/volspike/internal/platform/binance"
	"github.com/volspike/volspike/internal/store/postgres"
)

// Dependencies bundles the concrete collaborators the run modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	SampleStore domain.OISampleStore
	AlertStore  domain.OIAlertStore
	SymbolStore domain.LiquidSymbolStore

	// Redis
	SignalBus   domain.SignalBus
	LockManager domain.LockManager

	// Upstream market data
	Market *binance.Client

	// Cold storage; nil unless archival is enabled.
	SampleArchiver *s3blob.SampleArchiver

	// Liveness probes for the health endpoint.
	PostgresPing *postgres.Client
	RedisPing    *redis.Client

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them with a cleanup function to be called on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.SampleStore = postgres.NewOISampleStore(pool)
	deps.AlertStore = postgres.NewOIAlertStore(pool)
	deps.SymbolStore = postgres.NewLiquidSymbolStore(pool)
	deps.PostgresPing = pgClient

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.SignalBus = redis.NewSignalBus(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.RedisPing = redisClient

	// --- Upstream market data ---
	deps.Market = binance.NewClient(binance.Config{
		BaseURL:       cfg.Binance.BaseURL,
		ProxyURL:      cfg.Binance.ProxyURL,
		InfoTimeout:   cfg.Binance.InfoTimeout.Duration,
		TickerTimeout: cfg.Binance.TickerTimeout.Duration,
	}, logger)

	// --- S3 cold storage ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.SampleArchiver = s3blob.NewSampleArchiver(s3blob.NewWriter(s3Client), deps.SampleStore)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.EmailEndpoint != "" && len(cfg.Notify.EmailTo) > 0 {
		senders = append(senders, notify.NewEmailSender(
			cfg.Notify.EmailEndpoint,
			cfg.Notify.EmailAPIKey,
			cfg.Notify.EmailFrom,
			cfg.Notify.EmailTo,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
