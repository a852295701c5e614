package service

import (
	"sync"
	"time"
)

// Cooldown enforces the global minimum interval between reply attempts.
// A success or a failure both start a new interval
type Cooldown struct {
	mu          sync.Mutex
	interval    time.Duration
	lastReply   time.Time
	lastFailure time.Time
}

// NewCooldown returns a scheduler with the given interval; negative means zero
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: max(interval, 0)}
}

// Interval returns the configured interval
func (c *Cooldown) Interval() time.Duration { return c.interval }

// Earliest returns the first instant another attempt is allowed
func (c *Cooldown) Earliest() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last time.Time
	if c.lastReply.After(c.lastFailure) {
		last = c.lastReply
	} else {
		last = c.lastFailure
	}
	if last.IsZero() {
		return time.Time{}
	}
	return last.Add(c.interval)
}

// Until returns how long to wait from now; zero or negative means go
func (c *Cooldown) Until(now time.Time) time.Duration {
	e := c.Earliest()
	if e.IsZero() {
		return 0
	}
	return e.Sub(now)
}

// MarkSuccess records a reply that started at t
func (c *Cooldown) MarkSuccess(t time.Time) {
	c.mu.Lock()
	c.lastReply = t
	c.mu.Unlock()
}

// MarkFailure records a failed attempt that started at t
func (c *Cooldown) MarkFailure(t time.Time) {
	c.mu.Lock()
	c.lastFailure = t
	c.mu.Unlock()
}

// Last returns the last success and failure timestamps
func (c *Cooldown) Last() (reply, failure time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply, c.lastFailure
}
