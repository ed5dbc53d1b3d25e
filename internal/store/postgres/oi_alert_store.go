package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volspike/volspike/internal/domain"
)

// OIAlertStore implements domain.OIAlertStore using PostgreSQL.
type OIAlertStore struct {
	pool *pgxpool.Pool
}

// NewOIAlertStore creates an OIAlertStore backed by the given pool.
func NewOIAlertStore(pool *pgxpool.Pool) *OIAlertStore {
	return &OIAlertStore{pool: pool}
}

// Insert persists a single alert. Alerts are immutable once created.
func (s *OIAlertStore) Insert(ctx context.Context, alert domain.OIAlert) error {
	const query = `
		INSERT INTO oi_alerts (
			id, symbol, direction, baseline, current, pct_change, abs_change,
			price_change, funding_rate, timeframe, source, ts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		alert.ID, alert.Symbol, string(alert.Direction),
		alert.Baseline, alert.Current, alert.PctChange, alert.AbsChange,
		alert.PriceChange, alert.FundingRate, alert.Timeframe, alert.Source,
		alert.Timestamp, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert alert %s %s: %w", alert.Symbol, alert.Direction, err)
	}
	return nil
}

// ListRecent returns the newest alerts first, optionally filtered by symbol
// and direction. The caller is responsible for capping opts.Limit.
func (s *OIAlertStore) ListRecent(ctx context.Context, opts domain.AlertListOpts) ([]domain.OIAlert, error) {
	var (
		conds []string
		args  []any
	)

	if opts.Symbol != "" {
		args = append(args, opts.Symbol)
		conds = append(conds, fmt.Sprintf("symbol = $%d", len(args)))
	}
	if opts.Direction != "" {
		args = append(args, string(opts.Direction))
		conds = append(conds, fmt.Sprintf("direction = $%d", len(args)))
	}

	query := `
		SELECT id, symbol, direction, baseline, current, pct_change, abs_change,
		       price_change, funding_rate, timeframe, source, ts, created_at
		FROM oi_alerts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, opts.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.OIAlert
	for rows.Next() {
		var a domain.OIAlert
		var direction string
		if err := rows.Scan(
			&a.ID, &a.Symbol, &direction, &a.Baseline, &a.Current,
			&a.PctChange, &a.AbsChange, &a.PriceChange, &a.FundingRate,
			&a.Timeframe, &a.Source, &a.Timestamp, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		a.Direction = domain.AlertDirection(direction)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent alerts: %w", err)
	}
	return alerts, nil
}

// Compile-time interface check.
var _ domain.OIAlertStore = (*OIAlertStore)(nil)
