package kvstore

import (
	"sync"
	"time"
)

// Clock is the injected time source. It tracks an offset from wall-clock
// time so tests (and the admin control plane) can advance simulated time
// without sleeping. Expiry decisions must always go through Clock.Now.
type Clock struct {
	mu     sync.RWMutex
	offset time.Duration
}

// NewClock creates a Clock with zero offset.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset)
}

// Advance moves simulated time forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Offset returns the current offset from wall-clock time.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Reset zeroes the offset.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}
