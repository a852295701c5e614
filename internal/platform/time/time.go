// Package time contains time related helpers and the clock seam used by the
// cooldown scheduler
package time

import (
	"sync"
	"time"
)

// Clock is the time source for anything that waits
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// System is the wall clock
type System struct{}

// Now returns time.Now
func (System) Now() time.Time { return time.Now() }

// After returns time.After
func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Manual is a clock that only moves when told to. Safe for concurrent use
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
	changed chan struct{}
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

// NewManual returns a Manual clock set to start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, changed: make(chan struct{})}
}

// Now returns the current manual time
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After registers a waiter that fires once the clock reaches now+d.
// d <= 0 fires immediately
func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- m.now
		return ch
	}
	m.waiters = append(m.waiters, waiter{at: m.now.Add(d), ch: ch})
	m.notify()
	return ch
}

// Advance moves the clock forward and fires every waiter that is due
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
	kept := m.waiters[:0]
	for _, w := range m.waiters {
		if !w.at.After(m.now) {
			w.ch <- m.now
			continue
		}
		kept = append(kept, w)
	}
	m.waiters = kept
	m.notify()
}

// Waiters returns the number of pending After calls
func (m *Manual) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// BlockUntil waits until at least n After calls are pending
func (m *Manual) BlockUntil(n int) {
	for {
		m.mu.Lock()
		if len(m.waiters) >= n {
			m.mu.Unlock()
			return
		}
		ch := m.changed
		m.mu.Unlock()
		<-ch
	}
}

// notify wakes BlockUntil callers; m.mu must be held
func (m *Manual) notify() {
	close(m.changed)
	m.changed = make(chan struct{})
}
