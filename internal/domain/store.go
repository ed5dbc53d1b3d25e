package domain

import (
	"context"
	"time"
)

// AlertListOpts filters and pages the alert read path. Limit is capped by the
// handler regardless of what the caller asks for.
type AlertListOpts struct {
	Limit     int
	Symbol    string
	Direction AlertDirection
}

// OISampleStore persists the append-only OI time series. Ingestion owns all
// writes; nothing updates or deletes individual samples except archival.
type OISampleStore interface {
	InsertBatch(ctx context.Context, samples []OISample) (int, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]OISample, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OIAlertStore persists threshold-crossing alerts.
type OIAlertStore interface {
	Insert(ctx context.Context, alert OIAlert) error
	ListRecent(ctx context.Context, opts AlertListOpts) ([]OIAlert, error)
}

// LiquidSymbolStore persists the liquid universe membership. The
// classification job exclusively owns writes; the query API only reads.
type LiquidSymbolStore interface {
	Upsert(ctx context.Context, sym LiquidSymbol) error
	UpsertBatch(ctx context.Context, syms []LiquidSymbol) error
	Delete(ctx context.Context, symbol string) error
	DeleteBatch(ctx context.Context, symbols []string) error
	List(ctx context.Context) ([]LiquidSymbol, error)
}

// SignalBus is the real-time fan-out channel between ingestion and connected
// clients. Publish is fire-and-forget from the caller's perspective.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// LockManager provides distributed locks so the classification job runs
// single-flight even across processes.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
