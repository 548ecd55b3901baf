package sweeper

import (
	"context"
	"log/slog"
	"time"
)

type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper periodically removes blacklist entries whose tokens have expired.
type Sweeper struct {
	Store    Purger
	Interval time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Store.PurgeExpired(ctx, s.now())
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	l := s.logger().With("worker", "revoked_sweeper")
	if s.Interval <= 0 {
		l.Info("sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	l.Info("sweeper started", "interval", s.Interval.String())
	for {
		select {
		case <-ctx.Done():
			l.Info("sweeper stopping")
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.Error("sweep_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("sweep_done", "purged", n)
			}
		}
	}
}
