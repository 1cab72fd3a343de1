package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PeriodFunc derives the billing-period key segment for the current moment.
// Counters from different periods live under different keys, so a period
// rollover needs no explicit reset job.
type PeriodFunc func(now time.Time) string

// MonthlyPeriod keys counters by calendar month (UTC).
func MonthlyPeriod(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// RedisUsageStore implements UsageStore on Redis. INCRBY gives the atomic
// read-modify-write the limiter needs under concurrent consumers.
type RedisUsageStore struct {
	client *redis.Client
	period PeriodFunc
	ttl    time.Duration
}

// RedisStoreOption configures a RedisUsageStore.
type RedisStoreOption func(*RedisUsageStore)

// WithPeriodFunc overrides the default monthly period keying.
func WithPeriodFunc(fn PeriodFunc) RedisStoreOption {
	return func(s *RedisUsageStore) {
		if fn != nil {
			s.period = fn
		}
	}
}

// WithCounterTTL sets the expiry applied to counter keys on first increment.
// Expired counters from past periods are garbage-collected by Redis itself.
func WithCounterTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisUsageStore) { s.ttl = ttl }
}

// NewRedisUsageStore returns a UsageStore backed by the given Redis client.
func NewRedisUsageStore(client *redis.Client, opts ...RedisStoreOption) *RedisUsageStore {
	s := &RedisUsageStore{
		client: client,
		period: MonthlyPeriod,
		ttl:    62 * 24 * time.Hour, // two periods, so dashboards can show last month
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisUsageStore) key(userID uuid.UUID, res Resource) string {
	return fmt.Sprintf("usage:%s:%s:%s", userID, s.period(time.Now()), res)
}

func (s *RedisUsageStore) Get(ctx context.Context, userID uuid.UUID, res Resource) (int64, error) {
	val, err := s.client.Get(ctx, s.key(userID, res)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Join(ErrUsageUnavailable, err)
	}
	return val, nil
}

func (s *RedisUsageStore) IncrementBy(ctx context.Context, userID uuid.UUID, res Resource, delta int64) (int64, error) {
	key := s.key(userID, res)

	pipe := s.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, delta)
	pipe.ExpireNX(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Join(ErrConsumeFailed, err)
	}
	return incr.Val(), nil
}
