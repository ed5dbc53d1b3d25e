package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/volspike/volspike/internal/domain"
	"github.com/volspike/volspike/internal/universe"
)

// fakeSymbolStore is an in-memory LiquidSymbolStore recording calls.
type fakeSymbolStore struct {
	mu      sync.Mutex
	members map[string]domain.LiquidSymbol
	listErr error
	writes  int
}

func newFakeSymbolStore(members ...domain.LiquidSymbol) *fakeSymbolStore {
	m := make(map[string]domain.LiquidSymbol, len(members))
	for _, s := range members {
		m[s.Symbol] = s
	}
	return &fakeSymbolStore{members: m}
}

func (f *fakeSymbolStore) Upsert(ctx context.Context, sym domain.LiquidSymbol) error {
	return f.UpsertBatch(ctx, []domain.LiquidSymbol{sym})
}

func (f *fakeSymbolStore) UpsertBatch(_ context.Context, syms []domain.LiquidSymbol) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for _, s := range syms {
		if prev, ok := f.members[s.Symbol]; ok {
			// Mirrors the SQL upsert: entry time is never overwritten.
			s.EnteredAt = prev.EnteredAt
		}
		f.members[s.Symbol] = s
	}
	return nil
}

func (f *fakeSymbolStore) Delete(ctx context.Context, symbol string) error {
	return f.DeleteBatch(ctx, []string{symbol})
}

func (f *fakeSymbolStore) DeleteBatch(_ context.Context, symbols []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for _, s := range symbols {
		delete(f.members, s)
	}
	return nil
}

func (f *fakeSymbolStore) List(_ context.Context) ([]domain.LiquidSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.LiquidSymbol, 0, len(f.members))
	for _, s := range f.members {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSymbolStore) symbols() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.members))
	for s := range f.members {
		out = append(out, s)
	}
	return out
}

// fakeMarket serves canned instrument and ticker data.
type fakeMarket struct {
	instruments []universe.Instrument
	volumes     map[string]float64
	infoErr     error
	tickerErr   error
}

func (f *fakeMarket) FetchInstruments(context.Context) ([]universe.Instrument, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.instruments, nil
}

func (f *fakeMarket) FetchQuoteVolumes(context.Context) (map[string]float64, error) {
	if f.tickerErr != nil {
		return nil, f.tickerErr
	}
	return f.volumes, nil
}

// fakeBus records published payloads per channel.
type fakeBus struct {
	mu        sync.Mutex
	published map[string][][]byte
	appended  map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(map[string][][]byte),
		appended:  make(map[string][][]byte),
	}
}

func (f *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[channel] = append(f.published[channel], payload)
	return nil
}

func (f *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended[stream] = append(f.appended[stream], payload)
	return nil
}

// fakeSampleStore is an in-memory OISampleStore.
type fakeSampleStore struct {
	mu        sync.Mutex
	samples   []domain.OISample
	insertErr error
}

func (f *fakeSampleStore) InsertBatch(_ context.Context, samples []domain.OISample) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.samples = append(f.samples, samples...)
	return len(samples), nil
}

func (f *fakeSampleStore) ListBefore(_ context.Context, before time.Time, limit int) ([]domain.OISample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.OISample
	for _, s := range f.samples {
		if s.Timestamp.Before(before) {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSampleStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.OISample
	var deleted int64
	for _, s := range f.samples {
		if s.Timestamp.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.samples = kept
	return deleted, nil
}

func (f *fakeSampleStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.samples)), nil
}

// fakeAlertStore is an in-memory OIAlertStore.
type fakeAlertStore struct {
	mu        sync.Mutex
	alerts    []domain.OIAlert
	insertErr error
}

func (f *fakeAlertStore) Insert(_ context.Context, alert domain.OIAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertStore) ListRecent(_ context.Context, opts domain.AlertListOpts) ([]domain.OIAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.OIAlert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		a := f.alerts[i]
		if opts.Symbol != "" && a.Symbol != opts.Symbol {
			continue
		}
		if opts.Direction != "" && a.Direction != opts.Direction {
			continue
		}
		out = append(out, a)
		if len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAlertStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}
