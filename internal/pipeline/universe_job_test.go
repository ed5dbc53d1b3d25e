package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volspike/volspike/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCycleRunner struct {
	result domain.CycleResult
	err    error
	runs   atomic.Int32
}

func (f *fakeCycleRunner) RunCycle(context.Context) (domain.CycleResult, error) {
	f.runs.Add(1)
	return f.result, f.err
}

type fakeLockManager struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLockManager) Acquire(_ context.Context, _ string, _ time.Duration) (func(), error) {
	f.acquires++
	if f.held {
		return nil, domain.ErrLockHeld
	}
	return func() { f.releases++ }, nil
}

func TestUniverseJob_RunOnce(t *testing.T) {
	runner := &fakeCycleRunner{result: domain.CycleResult{Success: true, TotalSymbols: 3}}
	locks := &fakeLockManager{}
	job := NewUniverseJob(runner, locks, time.Minute, discardLogger())

	result, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalSymbols)
	assert.Equal(t, int32(1), runner.runs.Load())
	assert.Equal(t, 1, locks.acquires)
	assert.Equal(t, 1, locks.releases, "lock must be released after the cycle")
}

func TestUniverseJob_RunOnce_SkipsWhenLockHeld(t *testing.T) {
	runner := &fakeCycleRunner{}
	locks := &fakeLockManager{held: true}
	job := NewUniverseJob(runner, locks, time.Minute, discardLogger())

	_, err := job.RunOnce(context.Background())
	require.ErrorIs(t, err, domain.ErrLockHeld)
	assert.Zero(t, runner.runs.Load(), "cycle must not run without the lock")
}

func TestUniverseJob_RunOnce_ReleasesLockOnFailure(t *testing.T) {
	runner := &fakeCycleRunner{err: errors.New("upstream down")}
	locks := &fakeLockManager{}
	job := NewUniverseJob(runner, locks, time.Minute, discardLogger())

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, locks.releases)
}

func TestUniverseJob_RunLoop_RunsImmediatelyAndStops(t *testing.T) {
	runner := &fakeCycleRunner{result: domain.CycleResult{Success: true}}
	locks := &fakeLockManager{}
	job := NewUniverseJob(runner, locks, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.RunLoop(ctx) }()

	require.Eventually(t, func() bool { return runner.runs.Load() >= 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancellation")
	}
}
