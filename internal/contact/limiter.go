package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vuducle/le-custom-sub000/internal/config"
)

// RateLimiter admits at most limit submissions per key and window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewRateLimiter returns the Redis limiter when Redis is configured, the
// in-process limiter otherwise, and nil when limiting is disabled.
func NewRateLimiter(rl config.RateLimitConfig, rc config.RedisConfig) (RateLimiter, func() error) {
	if rl.ContactPerWindow <= 0 || rl.ContactWindow <= 0 {
		return nil, func() error { return nil }
	}
	if strings.TrimSpace(rc.Addr) != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		return NewRedisLimiter(client, rl.ContactPerWindow, rl.ContactWindow), client.Close
	}
	return NewMemoryLimiter(rl.ContactPerWindow, rl.ContactWindow, nil), func() error { return nil }
}

// MemoryLimiter is a fixed-window limiter for a single process.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time
	mu     sync.Mutex
	store  map[string]rateEntry
}

type rateEntry struct {
	count int
	reset time.Time
}

func NewMemoryLimiter(limit int, window time.Duration, clock func() time.Time) *MemoryLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		clock:  clock,
		store:  make(map[string]rateEntry),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	key = normalizeKey(key)
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || now.After(entry.reset) {
		l.store[key] = rateEntry{count: 1, reset: now.Add(l.window)}
		l.pruneExpiredLocked(now)
		return true, nil
	}
	if entry.count >= l.limit {
		return false, nil
	}
	entry.count++
	l.store[key] = entry
	return true, nil
}

func (l *MemoryLimiter) pruneExpiredLocked(now time.Time) {
	for key, entry := range l.store {
		if now.After(entry.reset) {
			delete(l.store, key)
		}
	}
}

// RedisLimiter shares the fixed window across instances via INCR + EXPIRE NX.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: "praxis:contact:rl:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + normalizeKey(key)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("contact: rate limit: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "anonymous"
	}
	return key
}
