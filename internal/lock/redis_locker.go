package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/przhevallsky/transferboss/internal/custom_err"
)

const releaseTimeout = 2 * time.Second

type Options struct {
	KeyPrefix        string
	SessionTTL       time.Duration
	AcquireTimeout   time.Duration
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		KeyPrefix:        "locks/transfer",
		SessionTTL:       15 * time.Second,
		AcquireTimeout:   5 * time.Second,
		RetryInterval:    50 * time.Millisecond,
		MaxRetryInterval: 500 * time.Millisecond,
	}
}

type RedisLocker struct {
	rs   *redsync.Redsync
	opts Options
	log  *slog.Logger
}

func NewRedisLocker(client redis.UniversalClient, opts Options, log *slog.Logger) *RedisLocker {
	return &RedisLocker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
		log:  log,
	}
}

func (l *RedisLocker) ExecuteWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	const op = "lock.ExecuteWithLock"

	fullKey := l.opts.KeyPrefix + "/" + key
	mutex := l.rs.NewMutex(fullKey,
		redsync.WithExpiry(l.opts.SessionTTL),
		redsync.WithTries(l.maxTries()),
		redsync.WithRetryDelayFunc(l.retryDelay),
	)

	started := time.Now()
	acquireCtx, cancel := context.WithTimeout(ctx, l.opts.AcquireTimeout)
	err := mutex.LockContext(acquireCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		if isContended(err) {
			l.log.Warn("lock is busy",
				slog.String("op", op),
				slog.String("key", fullKey),
				slog.Duration("waited", time.Since(started)))
			return &custom_err.LockBusyError{Key: fullKey, Waited: time.Since(started)}
		}
		return fmt.Errorf("%s: acquire %s: %w: %w", op, fullKey, custom_err.ErrLockUnavailable, err)
	}

	defer l.release(ctx, mutex)

	return fn(ctx)
}

// release uses a context detached from the request so a cancelled caller still unlocks.
func (l *RedisLocker) release(ctx context.Context, mutex *redsync.Mutex) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	ok, err := mutex.UnlockContext(releaseCtx)
	if err != nil || !ok {
		attrs := []any{
			slog.String("op", "lock.release"),
			slog.String("key", mutex.Name()),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		l.log.Warn("failed to release lock, it will expire by ttl", attrs...)
	}
}

func (l *RedisLocker) retryDelay(tries int) time.Duration {
	delay := l.opts.RetryInterval
	for i := 1; i < tries && delay < l.opts.MaxRetryInterval; i++ {
		delay *= 2
	}
	if delay > l.opts.MaxRetryInterval {
		delay = l.opts.MaxRetryInterval
	}
	return delay
}

// maxTries is an upper bound only; the acquire deadline stops retries first.
func (l *RedisLocker) maxTries() int {
	if l.opts.RetryInterval <= 0 {
		return 1
	}
	return int(l.opts.AcquireTimeout/l.opts.RetryInterval) + 1
}

// isContended tells a held lock apart from a Redis failure.
func isContended(err error) bool {
	if errors.Is(err, redsync.ErrFailed) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
