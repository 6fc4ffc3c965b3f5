// Package testkit provides test infrastructure for integration tests using testcontainers.
package testkit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const envPrefix = "SMARTRATE_TEST_"

// Config holds environment-driven configuration for integration test infrastructure.
// Every variable is read with the SMARTRATE_TEST_ prefix, e.g. SMARTRATE_TEST_PG_DSN.
type Config struct {
	PGImage        string        // PG_IMAGE
	RedisImage     string        // REDIS_IMAGE
	PGDSN          string        // PG_DSN; if set, no Postgres container is started.
	RedisAddr      string        // REDIS_ADDR; if set, no Redis container is started.
	StartupTimeout time.Duration // STARTUP_TIMEOUT, a duration or plain seconds.
	KeepContainers bool          // KEEP_CONTAINERS
}

// LoadConfig reads test infrastructure settings from environment variables.
func LoadConfig() Config {
	return Config{
		PGImage:        str("PG_IMAGE", "postgres:18.1-alpine"),
		RedisImage:     str("REDIS_IMAGE", "redis:8.4.0-alpine"),
		PGDSN:          str("PG_DSN", ""),
		RedisAddr:      str("REDIS_ADDR", ""),
		StartupTimeout: parsed("STARTUP_TIMEOUT", 90*time.Second, parseSeconds),
		KeepContainers: parsed("KEEP_CONTAINERS", false, strconv.ParseBool),
	}
}

func str(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

// parsed reads key with parse, falling back to def when unset or malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	raw := str(key, "")
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testkit: invalid value %q for %s%s, using default %v\n", raw, envPrefix, key, def)
		return def
	}
	return v
}

func parseSeconds(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
