package clock

import (
	"sync"
	"time"
)

// Handle is a timer owned by a Group.
type Handle interface {
	Stop() bool
}

// Group owns every timer a session starts. StopAll cancels all of them at once,
// which is what every exit path of a session calls.
type Group struct {
	clock  Clock
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]Handle
}

func NewGroup(c Clock) *Group {
	return &Group{clock: c, live: make(map[uint64]Handle)}
}

func (g *Group) Now() time.Time {
	return g.clock.Now()
}

// After schedules f to run once after d.
func (g *Group) After(d time.Duration, f func()) Handle {
	o := &oneShot{group: g, f: f}
	g.track(o, func(id uint64) { o.id = id })

	o.mu.Lock()
	o.timer = g.clock.AfterFunc(d, o.fire)
	o.mu.Unlock()
	return o
}

// Every schedules f to run every d until the handle is stopped. The next run
// is armed before f is called, so f may stop its own handle.
func (g *Group) Every(d time.Duration, f func()) Handle {
	r := &repeating{group: g, period: d, f: f}
	g.track(r, func(id uint64) { r.id = id })

	r.mu.Lock()
	r.arm()
	r.mu.Unlock()
	return r
}

// StopAll cancels every live timer of the group.
func (g *Group) StopAll() {
	g.mu.Lock()
	handles := make([]Handle, 0, len(g.live))
	for _, h := range g.live {
		handles = append(handles, h)
	}
	g.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

// Len returns the number of live timers.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

func (g *Group) track(h Handle, setID func(uint64)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	setID(g.nextID)
	g.live[g.nextID] = h
}

func (g *Group) forget(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.live, id)
}

type oneShot struct {
	group *Group
	id    uint64
	f     func()
	mu    sync.Mutex
	timer Timer
	done  bool
}

func (o *oneShot) fire() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.mu.Unlock()

	o.group.forget(o.id)
	o.f()
}

func (o *oneShot) Stop() bool {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return false
	}
	o.done = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.mu.Unlock()

	o.group.forget(o.id)
	return true
}

type repeating struct {
	group   *Group
	id      uint64
	period  time.Duration
	f       func()
	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// arm must be called with r.mu held.
func (r *repeating) arm() {
	r.timer = r.group.clock.AfterFunc(r.period, r.fire)
}

func (r *repeating) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.arm()
	r.mu.Unlock()

	r.f()
}

func (r *repeating) Stop() bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()

	r.group.forget(r.id)
	return true
}
