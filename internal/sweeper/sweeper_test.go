package sweeper

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/accounts/internal/repo"
	pkgdb "github.com/Skotchmaster/accounts/pkg/db"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestSweeper_Run_TicksUntilCancelled(t *testing.T) {
	p := &countingPurger{}
	s := &Sweeper{Store: p, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_Run_SurvivesErrors(t *testing.T) {
	p := &countingPurger{err: errors.New("db down")}
	s := &Sweeper{Store: p, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestSweeper_Run_Disabled(t *testing.T) {
	p := &countingPurger{}
	s := &Sweeper{Store: p}

	s.Run(context.Background())
	assert.Zero(t, p.calls.Load())
}

func TestSweeper_SweepOnce_RemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	db, err := pkgdb.Open(ctx, pkgdb.DriverSQLite, filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	rp := &repo.GormRepo{DB: db}
	now := time.Now()
	require.NoError(t, rp.Revoke(ctx, "old", now.Add(-time.Hour)))
	require.NoError(t, rp.Revoke(ctx, "fresh", now.Add(time.Hour)))

	s := &Sweeper{Store: rp, Timeout: time.Second, Now: func() time.Time { return now }}
	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	revoked, err := rp.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}
