package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/apperr"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker serialises work on one key across callers.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// UploadLockKey is the lock key of one (month, channel) upload.
func UploadLockKey(month, channel string) string {
	return "forecast-upload:" + month + ":" + channel
}

// SnapshotLockKey is the lock key under which inventory versions of month
// are stamped and written.
func SnapshotLockKey(month string) string {
	return "inventory-snapshot:" + month
}

// LocalLocker is an in-process keyed lock. Waiters block until the key is
// free or their context ends.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, apperr.Conflict("%s is locked by another request", key)
	}
}

// RedisLocker holds keys in Redis so replicas share one lock.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    *zap.Logger
}

// NewRedisLocker creates a locker over rdb. A key is held for at most ttl;
// Acquire retries for up to wait before giving up.
func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration, log *zap.Logger) *RedisLocker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, wait: wait, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	const step = 100 * time.Millisecond
	attempts := int(l.wait / step)

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(step), attempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) || (err != nil && ctx.Err() != nil) {
		return nil, apperr.Conflict("%s is locked by another request", key)
	}
	if err != nil {
		return nil, apperr.Internal(err, "obtain lock %s", key)
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
