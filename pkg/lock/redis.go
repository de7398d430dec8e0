package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var errHeld = errors.New("lock held by another process")

// RedisLocker is a Locker shared by every instance pointed at the same Redis
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder
// keeps the key; wait bounds how long Lock keeps retrying.
func NewRedisLocker(client redis.UniversalClient, prefix string, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

// Lock takes the key with SET NX, retrying with exponential backoff until wait elapses
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf("%slock:%s", l.prefix, key)
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(err)
		}
		if !ok {
			return false, errHeld
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.wait))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, err)
	}

	l.logger.Debug("lock acquired", zap.String("key", redisKey), zap.Duration("ttl", l.ttl))

	return func() {
		// Release with a fresh context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
		}
	}, nil
}
