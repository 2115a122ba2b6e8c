package application

import "time"

// Clock abstraction supaya gampang ditest; the expiry engine in particular
// must never read wall-clock time directly.
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant, for deterministic reports.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
