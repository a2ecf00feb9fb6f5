// Package clock provides the millisecond uptime source used for interval checks.
package clock

import (
	"sync"
	"time"
)

// Clock reports milliseconds elapsed since boot. The value wraps at 2^32.
type Clock interface {
	Millis() uint32
}

// Uptime measures milliseconds since it was created, using the monotonic clock.
type Uptime struct {
	boot time.Time
}

// NewUptime returns a Clock whose zero is the moment of the call.
func NewUptime() *Uptime {
	return &Uptime{boot: time.Now()}
}

// Millis returns the elapsed milliseconds truncated to 32 bits.
func (u *Uptime) Millis() uint32 {
	return uint32(time.Since(u.boot).Milliseconds())
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now uint32
}

// NewManual returns a Manual clock reading start.
func NewManual(start uint32) *Manual {
	return &Manual{now: start}
}

// Millis returns the current reading.
func (m *Manual) Millis() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to ms.
func (m *Manual) Set(ms uint32) {
	m.mu.Lock()
	m.now = ms
	m.mu.Unlock()
}

// Advance moves the clock forward by d, wrapping like the hardware counter would.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += uint32(d.Milliseconds())
	m.mu.Unlock()
}
