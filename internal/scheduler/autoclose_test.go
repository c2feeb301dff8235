package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
)

type fakeCloser struct {
	days []int
	err  error
}

func (f *fakeCloser) AutoClose(_ context.Context, day int) (int, error) {
	f.days = append(f.days, day)
	return 2, f.err
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestUntilMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	tests := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2025, 1, 10, 23, 0, 0, 0, loc), time.Hour},
		{time.Date(2025, 1, 10, 0, 0, 0, 0, loc), 24 * time.Hour},
		{time.Date(2025, 1, 31, 12, 30, 0, 0, loc), 11*time.Hour + 30*time.Minute},
		{time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC), time.Hour},
	}
	for _, tc := range tests {
		if got := untilMidnight(tc.now, loc); got != tc.want {
			t.Errorf("untilMidnight(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestRunOnceUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	closer := &fakeCloser{}
	a := NewAutoCloser(closer, store.NewLocalLocker(), 0, loc, nil)
	// 2025-01-09 20:00 UTC is already the 10th in UTC+8.
	a.now = fixedNow(time.Date(2025, 1, 9, 20, 0, 0, 0, time.UTC))

	if n := a.RunOnce(context.Background()); n != 2 {
		t.Errorf("expected 2 closed, got %d", n)
	}
	if len(closer.days) != 1 || closer.days[0] != 10 {
		t.Errorf("expected scan for day 10, got %v", closer.days)
	}
}

func TestRunOnceSkipsWhenLocked(t *testing.T) {
	locker := store.NewLocalLocker()
	release, err := locker.Acquire(context.Background(), LockKey)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	closer := &fakeCloser{}
	a := NewAutoCloser(closer, locker, 0, time.UTC, nil)
	if n := a.RunOnce(context.Background()); n != 0 {
		t.Errorf("locked scan must not run, got %d", n)
	}
	if len(closer.days) != 0 {
		t.Errorf("closer called while locked: %v", closer.days)
	}
}

func TestRunOnceReportsFailure(t *testing.T) {
	closer := &fakeCloser{err: errors.New("db down")}
	a := NewAutoCloser(closer, store.NewLocalLocker(), 0, time.UTC, nil)
	a.RunOnce(context.Background())
	if len(closer.days) != 1 {
		t.Errorf("expected one attempt, got %v", closer.days)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	a := NewAutoCloser(&fakeCloser{}, store.NewLocalLocker(), time.Hour, time.UTC, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
