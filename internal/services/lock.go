package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Locker serializes work on a key. Confirm uses it so that competing
// confirms of one transfer queue up instead of racing into the database;
// the status compare-and-swap in the unit of work stays authoritative.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LocalLocker is a keyed mutex for a single process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*keyLock{}}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = k
	}
	k.refs++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}()

	select {
	case k.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-k.ch }()
	return fn(ctx)
}

// RedisLocker holds a redsync mutex per key, so confirms are serialized
// across every instance sharing the Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
	delay  time.Duration
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: 10 * time.Second,
		tries:  64,
		delay:  50 * time.Millisecond,
	}
}

// NewRedisLockerFromURL parses a redis:// URL and checks connectivity.
func NewRedisLockerFromURL(ctx context.Context, url string) (*RedisLocker, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("redis locker: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis locker: ping: %w", err)
	}
	return NewRedisLocker(client), client, nil
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m := l.rs.NewMutex("lock:"+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
		redsync.WithRetryDelay(l.delay),
	)
	if err := m.LockContext(ctx); err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	defer func() { _, _ = m.UnlockContext(context.WithoutCancel(ctx)) }()
	return fn(ctx)
}
