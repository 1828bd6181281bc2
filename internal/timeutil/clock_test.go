package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	got := c.Now()
	if got.Before(before) {
		t.Errorf("RealClock.Now() = %v, before %v", got, before)
	}
	if c.Since(before) < 0 {
		t.Error("RealClock.Since returned negative duration")
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(250 * time.Millisecond)
	if got := c.Since(start); got != 250*time.Millisecond {
		t.Errorf("Since = %v, want 250ms", got)
	}

	pinned := start.Add(time.Hour)
	c.Set(pinned)
	if !c.Now().Equal(pinned) {
		t.Errorf("Now() after Set = %v, want %v", c.Now(), pinned)
	}
}

func TestFormatSessionTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 10, 10, 30, 15, 123_000_000, loc)

	got := FormatSessionTime(ts)
	want := "2026-03-10T09:30:15.123Z"
	if got != want {
		t.Errorf("FormatSessionTime = %q, want %q", got, want)
	}

	// Round-trips through the same layout.
	parsed, err := time.Parse(SessionTimeFormat, got)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("round-trip = %v, want %v", parsed, ts)
	}
}

func TestDurationMs(t *testing.T) {
	if got := DurationMs(1500 * time.Millisecond); got != 1500 {
		t.Errorf("DurationMs = %v, want 1500", got)
	}
	if got := DurationMs(250 * time.Microsecond); got != 0.25 {
		t.Errorf("DurationMs = %v, want 0.25", got)
	}
}
