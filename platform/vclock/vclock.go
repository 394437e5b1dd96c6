// Package vclock is a deterministic TimerService driven by an explicit tick
// counter. Callbacks run synchronously inside Advance, ordered by deadline and
// then by arm order, which makes gesture sequences replayable in tests.
//
// A Clock is not safe for concurrent use; edges and Advance must come from the
// same goroutine.
package vclock

import "indicator-go/platform"

var _ platform.TimerService = (*Clock)(nil)

type Clock struct {
	now    uint64
	seq    uint64
	timers []*timer
}

type timer struct {
	c        *Clock
	mode     platform.TimerMode
	fn       func()
	period   uint32
	deadline uint64
	seq      uint64
	armed    bool
}

func New() *Clock { return &Clock{} }

// Now returns the current tick.
func (c *Clock) Now() uint64 { return c.now }

func (c *Clock) NewTimer(mode platform.TimerMode, fn func()) platform.Timer {
	t := &timer{c: c, mode: mode, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *timer) Start(ticks uint32) {
	if ticks == 0 {
		ticks = 1
	}
	t.c.seq++
	t.period = ticks
	t.deadline = t.c.now + uint64(ticks)
	t.seq = t.c.seq
	t.armed = true
}

func (t *timer) Stop() { t.armed = false }

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if t.armed {
			n++
		}
	}
	return n
}

// Advance moves time forward by ticks, firing every timer that falls due on
// the way, including timers armed by callbacks during the advance.
func (c *Clock) Advance(ticks uint32) {
	target := c.now + uint64(ticks)
	for {
		t := c.next(target)
		if t == nil {
			break
		}
		c.now = t.deadline
		if t.mode == platform.Repeated {
			t.deadline += uint64(t.period)
		} else {
			t.armed = false
		}
		t.fn()
	}
	c.now = target
}

// AdvanceTo moves time forward to an absolute tick. Earlier ticks are ignored.
func (c *Clock) AdvanceTo(tick uint64) {
	if tick > c.now {
		c.Advance(uint32(tick - c.now))
	}
}

func (c *Clock) next(limit uint64) *timer {
	var best *timer
	for _, t := range c.timers {
		if !t.armed || t.deadline > limit {
			continue
		}
		if best == nil || t.deadline < best.deadline ||
			(t.deadline == best.deadline && t.seq < best.seq) {
			best = t
		}
	}
	return best
}
