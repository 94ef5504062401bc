// Package timeouts provides centralized timeout values for handler operations
// and outbound gateway calls.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultStore    = 5 * time.Second
	DefaultGeocode  = 10 * time.Second
	DefaultIdentity = 10 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

// Configurable timeout values.
var (
	ping     = DefaultPing
	store    = DefaultStore
	geocode  = DefaultGeocode
	identity = DefaultIdentity
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Store returns the timeout for a single MongoDB operation.
func Store() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// Geocode returns the timeout for one geocoding lookup.
func Geocode() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return geocode
}

// Identity returns the timeout for one identity-provider lookup.
func Identity() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return identity
}

// Config holds timeout configuration values. Zero fields are ignored.
type Config struct {
	Ping     time.Duration
	Store    time.Duration
	Geocode  time.Duration
	Identity time.Duration
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Store > 0 {
		store = cfg.Store
	}
	if cfg.Geocode > 0 {
		geocode = cfg.Geocode
	}
	if cfg.Identity > 0 {
		identity = cfg.Identity
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	store = DefaultStore
	geocode = DefaultGeocode
	identity = DefaultIdentity
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:     ping,
		Store:    store,
		Geocode:  geocode,
		Identity: identity,
	}
}

// WithTimeout creates a context with timeout and logs when the deadline is hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
