// Package ratecache implements the TTL store for spot exchange rates.
package ratecache

import (
	"context"
	"time"
)

// Cache stores spot rates for a fixed TTL. Expired entries behave as absent.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, rate float64)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats is a point-in-time view of the cache contents.
type Stats struct {
	TotalEntries int
	TTL          time.Duration
	Entries      []EntryStats
}

// EntryStats describes a single cached rate.
type EntryStats struct {
	Key       string
	Rate      float64
	Age       time.Duration
	ExpiresIn time.Duration
	Valid     bool
}

// Key builds the cache key for a rate of the given source kind.
func Key(kind, base, target string) string {
	return kind + "_" + base + "_" + target
}

func entryStats(key string, rate float64, storedAt, now time.Time, ttl time.Duration) EntryStats {
	age := now.Sub(storedAt)
	expiresIn := ttl - age
	if expiresIn < 0 {
		expiresIn = 0
	}
	return EntryStats{
		Key:       key,
		Rate:      rate,
		Age:       age,
		ExpiresIn: expiresIn,
		Valid:     age < ttl,
	}
}
