//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	cacheRedisDB = 0
	queueRedisDB = 1
)

var (
	testDB       *sql.DB
	testRDB      *redis.Client // rate cache
	testQueueRDB *redis.Client // asynq
)

// resetTestData truncates the archive table and flushes both Redis databases.
func resetTestData(t *testing.T) {
	t.Helper()

	_, err := testDB.ExecContext(context.Background(), "TRUNCATE TABLE rate_quotes")
	if err != nil {
		t.Fatalf("failed to truncate rate_quotes table: %v", err)
	}

	for _, rdb := range []*redis.Client{testRDB, testQueueRDB} {
		if err := rdb.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("failed to flush redis: %v", err)
		}
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: testQueueRDB.Options().Addr, DB: queueRedisDB}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
