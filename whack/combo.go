package whack

import (
	"arcade/clock"
	"arcade/domain"
	"sync"
	"time"
)

const (
	ComboCadence = 1500 * time.Millisecond
	ComboDecay   = 2000 * time.Millisecond
)

// Multiplier maps a combo count to its score multiplier.
func Multiplier(count int) float64 {
	switch {
	case count >= 10:
		return 3.0
	case count >= 5:
		return 2.0
	case count >= 3:
		return 1.5
	default:
		return 1.0
	}
}

// ComboTracker turns the cadence of recent hits into a score multiplier.
// Its decay timer belongs to the owning session's timer group.
type ComboTracker struct {
	mu      sync.Mutex
	timers  *clock.Group
	onDecay func()
	count   int
	lastHit time.Time
	decay   clock.Handle
	gen     uint64
}

func NewComboTracker(timers *clock.Group, onDecay func()) *ComboTracker {
	return &ComboTracker{timers: timers, onDecay: onDecay}
}

// Hit records an accepted hit at the given time and returns the updated count
// and multiplier.
func (c *ComboTracker) Hit(category domain.Category, at time.Time) (int, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopDecayLocked()

	if category == domain.CategoryPenalty {
		c.count = 0
		c.lastHit = at
		return c.count, Multiplier(c.count)
	}

	if !c.lastHit.IsZero() && at.Sub(c.lastHit) < ComboCadence {
		c.count++
	} else {
		c.count = 1
	}
	c.lastHit = at

	gen := c.gen
	c.decay = c.timers.After(ComboDecay, func() { c.decayFired(gen) })

	return c.count, Multiplier(c.count)
}

func (c *ComboTracker) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *ComboTracker) Multiplier() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Multiplier(c.count)
}

// Reset clears the combo and cancels a pending decay.
func (c *ComboTracker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDecayLocked()
	c.count = 0
	c.lastHit = time.Time{}
}

// stopDecayLocked cancels the live decay timer. Bumping gen turns a decay
// callback that already escaped Stop into a no-op.
func (c *ComboTracker) stopDecayLocked() {
	c.gen++
	if c.decay != nil {
		c.decay.Stop()
		c.decay = nil
	}
}

func (c *ComboTracker) decayFired(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.decay = nil
	changed := c.count != 0
	c.count = 0
	c.mu.Unlock()

	if changed && c.onDecay != nil {
		c.onDecay()
	}
}
