package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volspike/volspike/internal/domain"
)

// OISampleStore implements domain.OISampleStore using PostgreSQL. The table
// is an append-only time series: rows are only ever inserted by ingestion and
// removed in bulk by archival.
type OISampleStore struct {
	pool *pgxpool.Pool
}

// NewOISampleStore creates an OISampleStore backed by the given pool.
func NewOISampleStore(pool *pgxpool.Pool) *OISampleStore {
	return &OISampleStore{pool: pool}
}

const insertSampleSQL = `
	INSERT INTO oi_samples (symbol, ts, open_interest, open_interest_usd, mark_price, source)
	VALUES ($1, $2, $3, $4, $5, $6)`

// InsertBatch appends samples in a single pgx batch and returns the number of
// rows written. Items have already been validated by the ingestion service.
func (s *OISampleStore) InsertBatch(ctx context.Context, samples []domain.OISample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, smp := range samples {
		batch.Queue(insertSampleSQL,
			smp.Symbol, smp.Timestamp, smp.OpenInterest,
			smp.OpenInterestUsd, smp.MarkPrice, string(smp.Source),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range samples {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("postgres: insert sample batch item %d (%s): %w", i, samples[i].Symbol, err)
		}
	}
	return len(samples), nil
}

// ListBefore returns up to limit samples with a timestamp strictly before the
// cutoff, oldest first. Used by the archiver.
func (s *OISampleStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.OISample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, symbol, ts, open_interest, open_interest_usd, mark_price, source
		FROM oi_samples
		WHERE ts < $1
		ORDER BY ts ASC
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list samples before %v: %w", before, err)
	}
	defer rows.Close()

	var samples []domain.OISample
	for rows.Next() {
		var smp domain.OISample
		var source string
		if err := rows.Scan(
			&smp.ID, &smp.Symbol, &smp.Timestamp,
			&smp.OpenInterest, &smp.OpenInterestUsd, &smp.MarkPrice, &source,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan sample: %w", err)
		}
		smp.Source = domain.SampleSource(source)
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list samples: %w", err)
	}
	return samples, nil
}

// DeleteBefore removes samples older than the cutoff and returns the number
// of rows deleted. Called only after the archiver has uploaded them.
func (s *OISampleStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM oi_samples WHERE ts < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete samples before %v: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the total number of persisted samples.
func (s *OISampleStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM oi_samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count samples: %w", err)
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.OISampleStore = (*OISampleStore)(nil)
