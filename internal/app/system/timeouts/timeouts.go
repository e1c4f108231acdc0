// Package timeouts provides centralized timeout values for handler and
// background operations.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks (Mongo ping)
//   - Short: single-document Mongo writes such as audit events
//   - API: one call to the backend REST API
//   - Fetch: a list fetch detached from its request (debounced search)
//   - Long: background jobs such as audit pruning
//
// Values start at the defaults below and may be overridden once at startup
// with Configure or ConfigureFromEnv.
package timeouts

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values.
const (
	DefaultPing  = 2 * time.Second
	DefaultShort = 5 * time.Second
	DefaultAPI   = 10 * time.Second
	DefaultFetch = 15 * time.Second
	DefaultLong  = 60 * time.Second
)

// Config holds timeout values. Zero values are ignored.
type Config struct {
	Ping  time.Duration
	Short time.Duration
	API   time.Duration
	Fetch time.Duration
	Long  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:  DefaultPing,
		Short: DefaultShort,
		API:   DefaultAPI,
		Fetch: DefaultFetch,
		Long:  DefaultLong,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single small writes.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// API returns the per-call timeout for the backend REST API.
func API() time.Duration { return get(func(c Config) time.Duration { return c.API }) }

// Fetch returns the timeout for list fetches that outlive their request.
func Fetch() time.Duration { return get(func(c Config) time.Duration { return c.Fetch }) }

// Long returns the timeout for background jobs.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Configure overrides the non-zero values of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	apply(&cur.Ping, cfg.Ping)
	apply(&cur.Short, cfg.Short)
	apply(&cur.API, cfg.API)
	apply(&cur.Fetch, cfg.Fetch)
	apply(&cur.Long, cfg.Long)
}

func apply(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads VISITDESK_TIMEOUT_{PING,SHORT,API,FETCH,LONG}
// (Go duration strings). Invalid values are logged and skipped. It returns
// how many values were applied.
func ConfigureFromEnv(logger *zap.Logger) int {
	mu.Lock()
	defer mu.Unlock()

	vars := []struct {
		name string
		dst  *time.Duration
	}{
		{"VISITDESK_TIMEOUT_PING", &cur.Ping},
		{"VISITDESK_TIMEOUT_SHORT", &cur.Short},
		{"VISITDESK_TIMEOUT_API", &cur.API},
		{"VISITDESK_TIMEOUT_FETCH", &cur.Fetch},
		{"VISITDESK_TIMEOUT_LONG", &cur.Long},
	}

	n := 0
	for _, v := range vars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			logger.Warn("ignoring invalid timeout", zap.String("var", v.name), zap.String("value", raw))
			continue
		}
		*v.dst = d
		n++
	}
	return n
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}
