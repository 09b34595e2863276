// Package internal holds small cross-cutting helpers shared by the SDK
// packages that should not be part of any public API surface.
package internal

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ThrottlingLogger wraps a zap.Logger and rate-limits repeated warnings,
// mirroring the Java SDK's ThrottlingLogger (used there to stop a
// misbehaving exporter from flooding logs once per export failure).
type ThrottlingLogger struct {
	logger *zap.Logger
	period time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewThrottlingLogger wraps base (or a no-op zap.Logger if base is nil,
// so an SDK component stays silent until a caller explicitly injects a
// logger) with a default one-warning-per-minute-per-key throttle.
func NewThrottlingLogger(base *zap.Logger) *ThrottlingLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ThrottlingLogger{
		logger: base,
		period: time.Minute,
		seen:   make(map[string]time.Time),
	}
}

// Warn logs at most once per throttle period for a given key; subsequent
// calls with the same key inside the window are dropped silently.
func (t *ThrottlingLogger) Warn(key, msg string, fields ...zap.Field) {
	t.mu.Lock()
	last, ok := t.seen[key]
	now := time.Now()
	if ok && now.Sub(last) < t.period {
		t.mu.Unlock()
		return
	}
	t.seen[key] = now
	t.mu.Unlock()

	t.logger.Warn(msg, fields...)
}

// Error always logs; errors are not throttled.
func (t *ThrottlingLogger) Error(msg string, fields ...zap.Field) {
	t.logger.Error(msg, fields...)
}

// Sync flushes the underlying zap.Logger.
func (t *ThrottlingLogger) Sync() error {
	return t.logger.Sync()
}
