// Package scheduler runs the daily month auto-close scan.
package scheduler

import (
	"context"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"go.uber.org/zap"
)

// LockKey guards the scan so only one replica runs it at a time.
const LockKey = "planner:auto-close"

// MonthCloser closes the open months whose auto-close day is day.
type MonthCloser interface {
	AutoClose(ctx context.Context, day int) (int, error)
}

// AutoCloser triggers the scan at local midnight, then every interval.
type AutoCloser struct {
	months   MonthCloser
	locker   store.Locker
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

// NewAutoCloser creates the scheduler. A zero interval means daily.
func NewAutoCloser(months MonthCloser, locker store.Locker, interval time.Duration, loc *time.Location, log *zap.Logger) *AutoCloser {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoCloser{
		months:   months,
		locker:   locker,
		interval: interval,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

// untilMidnight is the wait before the next local midnight after now.
func untilMidnight(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.Sub(local)
}

// Run blocks until ctx is done. Scans never overlap: the next tick is only
// read after the current scan returns.
func (a *AutoCloser) Run(ctx context.Context) {
	wait := untilMidnight(a.now(), a.loc)
	a.log.Info("Auto-close scheduler started",
		zap.Duration("first_run_in", wait),
		zap.Duration("interval", a.interval))

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		a.RunOnce(ctx)
		select {
		case <-ctx.Done():
			a.log.Info("Auto-close scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce scans for today's day of month. It returns the number of months
// closed, or zero when another replica holds the lock.
func (a *AutoCloser) RunOnce(ctx context.Context) int {
	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	release, err := a.locker.Acquire(lockCtx, LockKey)
	cancel()
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			a.log.Info("Auto-close already running elsewhere, skipping")
		} else {
			a.log.Error("Failed to acquire auto-close lock", zap.Error(err))
		}
		return 0
	}
	defer release()

	day := a.now().In(a.loc).Day()
	closed, err := a.months.AutoClose(ctx, day)
	if err != nil {
		a.log.Error("Auto-close scan failed", zap.Int("day", day), zap.Error(err))
		return closed
	}
	a.log.Info("Auto-close scan finished", zap.Int("day", day), zap.Int("closed", closed))
	return closed
}
