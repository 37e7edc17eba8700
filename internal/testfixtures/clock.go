package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Services take a now func, so a
// Clock lets tests pin every timestamp a session or repository records.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock returns a clock pinned to start. The zero value pins it to the
// shared ReferenceTime so fixtures and clocks agree on the baseline day.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// NowFunc adapts the clock to the now-func shape the constructors accept.
// A nil clock degrades to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set repins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
