package ratecache

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

const redisKeyPrefix = "ratecache:"

// RedisCache stores each rate as a hash (rate, stored_at) with a Redis TTL,
// so several service instances can share one cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache creates a RedisCache on top of an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, now: time.Now}
}

func (c *RedisCache) redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get returns the cached rate. Redis errors are reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool) {
	vals, err := c.client.HMGet(ctx, c.redisKey(key), "rate", "stored_at").Result()
	if err != nil || len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return 0, false
	}
	rate, storedAt, ok := parseHash(vals[0], vals[1])
	if !ok || c.now().Sub(storedAt) >= c.ttl {
		return 0, false
	}
	return rate, true
}

// Set writes the rate and refreshes the key expiry.
func (c *RedisCache) Set(ctx context.Context, key string, rate float64) {
	rk := c.redisKey(key)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, rk,
		"rate", strconv.FormatFloat(rate, 'f', -1, 64),
		"stored_at", c.now().UTC().Format(time.RFC3339Nano))
	pipe.Expire(ctx, rk, c.ttl)
	_, _ = pipe.Exec(ctx)
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Stats lists the live keys. Entries Redis already expired are not reported.
func (c *RedisCache) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := c.now()
	entries := make([]EntryStats, 0, len(keys))
	for _, rk := range keys {
		vals, err := c.client.HMGet(ctx, rk, "rate", "stored_at").Result()
		if err != nil {
			return Stats{}, err
		}
		if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
			continue
		}
		rate, storedAt, ok := parseHash(vals[0], vals[1])
		if !ok {
			continue
		}
		entries = append(entries, entryStats(rk[len(redisKeyPrefix):], rate, storedAt, now, c.ttl))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return Stats{TotalEntries: len(entries), TTL: c.ttl, Entries: entries}, nil
}

func (c *RedisCache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func parseHash(rateVal, tsVal any) (float64, time.Time, bool) {
	rateStr, ok1 := rateVal.(string)
	tsStr, ok2 := tsVal.(string)
	if !ok1 || !ok2 {
		return 0, time.Time{}, false
	}
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return 0, time.Time{}, false
	}
	return rate, ts, true
}
