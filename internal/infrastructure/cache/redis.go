package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/infrastructure/metrics"
)

const redisOpTimeout = 5 * time.Second

// RedisStore keeps the two snapshot slots as reviewer-scoped Redis
// keys. Useful when reviewers roam between machines but the shared
// Postgres store should stay the system of record.
type RedisStore struct {
	client     *redis.Client
	set        entities.MetricSet
	logger     *zap.Logger
	ratingsKey string
	flagsKey   string
}

// NewRedisStore pings the server once; a dead Redis at startup is an
// error so the factory can fall back rather than silently lose every
// snapshot.
func NewRedisStore(client *redis.Client, set entities.MetricSet, reviewerID string, logger *zap.Logger) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{
		client:     client,
		set:        set,
		logger:     logger,
		ratingsKey: fmt.Sprintf("call-review:%s:ratings", reviewerID),
		flagsKey:   fmt.Sprintf("call-review:%s:flags", reviewerID),
	}, nil
}

// LoadRatings reads the ratings slot, degrading to empty on any failure.
func (rs *RedisStore) LoadRatings() entities.RatingCollection {
	data, ok := rs.read(rs.ratingsKey)
	if !ok {
		return make(entities.RatingCollection)
	}
	collection, err := decodeRatings(data, rs.set)
	if err != nil {
		rs.logger.Warn("ratings slot corrupt, starting empty", zap.Error(err))
		metrics.Default.CacheLoadFailures.Inc()
		return make(entities.RatingCollection)
	}
	return collection
}

// SaveRatings overwrites the ratings slot with the full collection.
func (rs *RedisStore) SaveRatings(collection entities.RatingCollection) {
	data, err := encodeRatings(collection, rs.set)
	if err != nil {
		rs.fail("encode ratings snapshot", err)
		return
	}
	rs.write(rs.ratingsKey, data)
}

// LoadFlags reads the completion-flag slot.
func (rs *RedisStore) LoadFlags() map[string]bool {
	data, ok := rs.read(rs.flagsKey)
	if !ok {
		return make(map[string]bool)
	}
	flags, err := decodeFlags(data)
	if err != nil {
		rs.logger.Warn("flags slot corrupt, starting empty", zap.Error(err))
		metrics.Default.CacheLoadFailures.Inc()
		return make(map[string]bool)
	}
	return flags
}

// SaveFlags overwrites the completion-flag slot.
func (rs *RedisStore) SaveFlags(flags map[string]bool) {
	data, err := encodeFlags(flags)
	if err != nil {
		rs.fail("encode flags snapshot", err)
		return
	}
	rs.write(rs.flagsKey, data)
}

// Close releases the underlying client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) read(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn("snapshot slot unreadable", zap.String("key", key), zap.Error(err))
			metrics.Default.CacheLoadFailures.Inc()
		}
		return nil, false
	}
	return data, true
}

func (rs *RedisStore) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rs.client.Set(ctx, key, data, 0).Err(); err != nil {
		rs.fail(fmt.Sprintf("write %s", key), err)
	}
}

func (rs *RedisStore) fail(op string, err error) {
	rs.logger.Warn("snapshot cache write failed",
		zap.String("op", op),
		zap.Error(err),
	)
	metrics.Default.CacheSaveFailures.Inc()
}
