// Package timeutil provides a testable abstraction over time operations
// and the timestamp formatting used in exported rows.
package timeutil

import (
	"sync"
	"time"
)

// SessionTimeFormat is the layout for timestamps in exported rows:
// RFC3339 with millisecond precision, always UTC.
const SessionTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Clock provides an abstraction over time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// FakeClock implements Clock with a manually advanced time. Frame-driven
// recording tests use it to produce deterministic movement times.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the fake duration since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// FormatSessionTime renders t in the canonical row timestamp format.
func FormatSessionTime(t time.Time) string {
	return t.UTC().Format(SessionTimeFormat)
}

// DurationMs converts a duration to fractional milliseconds.
func DurationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
