package time

import (
	"testing"
	"time"
)

func TestSystemClock(t *testing.T) {
	var c Clock = System{}
	before := time.Now()
	if c.Now().Before(before) {
		t.Fatalf("System.Now went backwards")
	}
	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatalf("System.After never fired")
	}
}

func TestManualAfterFiresOnlyWhenDue(t *testing.T) {
	start := time.Date(2024, 6, 4, 17, 0, 0, 0, time.UTC)
	m := NewManual(start)

	ch := m.After(10 * time.Second)
	if m.Waiters() != 1 {
		t.Fatalf("Waiters = %d, want 1", m.Waiters())
	}

	m.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatalf("fired before deadline")
	default:
	}

	m.Advance(time.Second)
	select {
	case got := <-ch:
		if !got.Equal(start.Add(10 * time.Second)) {
			t.Fatalf("fired with %v", got)
		}
	default:
		t.Fatalf("did not fire at deadline")
	}
	if m.Waiters() != 0 {
		t.Fatalf("waiter not removed")
	}
}

func TestManualAfterNonPositiveFiresImmediately(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	select {
	case <-m.After(0):
	default:
		t.Fatalf("After(0) should fire immediately")
	}
	if m.Waiters() != 0 {
		t.Fatalf("After(0) should not register a waiter")
	}
}

func TestManualBlockUntil(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	done := make(chan struct{})
	go func() {
		m.BlockUntil(2)
		close(done)
	}()

	_ = m.After(time.Second)
	select {
	case <-done:
		t.Fatalf("BlockUntil returned with one waiter")
	case <-time.After(20 * time.Millisecond):
	}

	_ = m.After(2 * time.Second)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("BlockUntil did not return")
	}
}
