package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volspike/volspike/internal/domain"
)

// LiquidSymbolStore implements domain.LiquidSymbolStore using PostgreSQL.
// Only the classification job writes here; the query API reads.
type LiquidSymbolStore struct {
	pool *pgxpool.Pool
}

// NewLiquidSymbolStore creates a LiquidSymbolStore backed by the given pool.
func NewLiquidSymbolStore(pool *pgxpool.Pool) *LiquidSymbolStore {
	return &LiquidSymbolStore{pool: pool}
}

// The upsert keeps entered_at from the existing row: entry time is set once,
// on first admission, and only last_seen_at and the volume refresh after that.
const upsertLiquidSymbolSQL = `
	INSERT INTO liquid_symbols (symbol, quote_volume_24h, entered_at, last_seen_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (symbol) DO UPDATE SET
		quote_volume_24h = EXCLUDED.quote_volume_24h,
		last_seen_at     = EXCLUDED.last_seen_at`

// Upsert inserts or refreshes a single membership row.
func (s *LiquidSymbolStore) Upsert(ctx context.Context, sym domain.LiquidSymbol) error {
	_, err := s.pool.Exec(ctx, upsertLiquidSymbolSQL,
		sym.Symbol, sym.QuoteVolume24h, sym.EnteredAt, sym.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert liquid symbol %s: %w", sym.Symbol, err)
	}
	return nil
}

// UpsertBatch inserts or refreshes multiple membership rows in one batch.
func (s *LiquidSymbolStore) UpsertBatch(ctx context.Context, syms []domain.LiquidSymbol) error {
	if len(syms) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sym := range syms {
		batch.Queue(upsertLiquidSymbolSQL,
			sym.Symbol, sym.QuoteVolume24h, sym.EnteredAt, sym.LastSeenAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range syms {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert liquid symbol batch item %d (%s): %w", i, syms[i].Symbol, err)
		}
	}
	return nil
}

// Delete removes a symbol that has exited the universe.
func (s *LiquidSymbolStore) Delete(ctx context.Context, symbol string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM liquid_symbols WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("postgres: delete liquid symbol %s: %w", symbol, err)
	}
	return nil
}

// DeleteBatch removes all symbols that exited this cycle.
func (s *LiquidSymbolStore) DeleteBatch(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM liquid_symbols WHERE symbol = ANY($1)`, symbols)
	if err != nil {
		return fmt.Errorf("postgres: delete %d liquid symbols: %w", len(symbols), err)
	}
	return nil
}

// List returns the full membership sorted by descending 24h quote volume.
func (s *LiquidSymbolStore) List(ctx context.Context) ([]domain.LiquidSymbol, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, quote_volume_24h, entered_at, last_seen_at
		FROM liquid_symbols
		ORDER BY quote_volume_24h DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list liquid symbols: %w", err)
	}
	defer rows.Close()

	var syms []domain.LiquidSymbol
	for rows.Next() {
		var sym domain.LiquidSymbol
		if err := rows.Scan(&sym.Symbol, &sym.QuoteVolume24h, &sym.EnteredAt, &sym.LastSeenAt); err != nil {
			return nil, fmt.Errorf("postgres: scan liquid symbol: %w", err)
		}
		syms = append(syms, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list liquid symbols: %w", err)
	}
	return syms, nil
}

// Compile-time interface check.
var _ domain.LiquidSymbolStore = (*LiquidSymbolStore)(nil)
