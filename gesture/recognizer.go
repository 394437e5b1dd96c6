// Package gesture turns raw button edges into single-click, double-click and
// long-press events.
//
// Execution model: OnEdge runs in interrupt context; the four expiry handlers
// run from the TimerService, one at a time. An edge may interrupt a timer
// callback, so every field touched by both sides is an atomic word and every
// decision re-samples the line instead of trusting earlier events. The
// recognizer takes no locks and does not allocate after New.
package gesture

import (
	"sync/atomic"

	"indicator-go/platform"
)

type State uint32

const (
	Idle State = iota
	Debouncing
	AwaitingSecondClick
	LongPressActive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case AwaitingSecondClick:
		return "awaiting_second_click"
	case LongPressActive:
		return "long_press_active"
	default:
		return "unknown"
	}
}

type Recognizer struct {
	line platform.Line
	cb   slots

	debounce  platform.Timer
	window    platform.Timer
	longPress platform.Timer
	repeat    platform.Timer

	// Window lengths in ticks.
	tDebounce, tWindow, tLong, tRepeat atomic.Uint32

	clicks     atomic.Uint32
	debouncing atomic.Bool
	longActive atomic.Bool
}

type Option func(*Recognizer)

// WithTimings replaces DefaultTimings. Invalid timings make New fail.
func WithTimings(t Timings) Option {
	return func(r *Recognizer) { r.store(t) }
}

// New binds the recognizer to a line and creates its four timers on ts.
// h may implement any of SingleClicker, DoubleClicker and LongPresser.
func New(line platform.Line, ts platform.TimerService, h any, opts ...Option) (*Recognizer, error) {
	r := &Recognizer{line: line, cb: resolve(h)}
	r.store(DefaultTimings)
	for _, o := range opts {
		o(r)
	}
	if err := r.Timings().Validate(); err != nil {
		return nil, err
	}
	r.debounce = ts.NewTimer(platform.SingleShot, r.onDebounceExpire)
	r.window = ts.NewTimer(platform.SingleShot, r.onWindowExpire)
	r.longPress = ts.NewTimer(platform.SingleShot, r.onLongPressExpire)
	r.repeat = ts.NewTimer(platform.Repeated, r.onLongPressRepeat)
	return r, nil
}

// OnEdge is the edge notification for both polarities. It only arms the
// debounce timer when the line currently reads pressed.
func (r *Recognizer) OnEdge() {
	if !r.line.Pressed() {
		return
	}
	r.debouncing.Store(true)
	r.debounce.Start(r.tDebounce.Load())
}

func (r *Recognizer) onDebounceExpire() {
	r.debouncing.Store(false)
	if !r.line.Pressed() {
		r.longPress.Stop()
		r.repeat.Stop()
		r.longActive.Store(false)
		return
	}
	if !r.longActive.Load() {
		r.longPress.Start(r.tLong.Load())
	}
	r.click()
}

func (r *Recognizer) click() {
	n := r.clicks.Add(1)
	r.window.Start(r.tWindow.Load())
	switch n {
	case 1:
		if r.cb.single != nil {
			r.cb.single()
		}
	case 2:
		if r.cb.double != nil {
			r.cb.double()
		}
	}
}

func (r *Recognizer) onWindowExpire() {
	r.clicks.Store(0)
}

func (r *Recognizer) onLongPressExpire() {
	if !r.line.Pressed() {
		return
	}
	r.longActive.Store(true)
	if r.cb.long != nil {
		r.cb.long()
	}
	r.repeat.Start(r.tRepeat.Load())
}

func (r *Recognizer) onLongPressRepeat() {
	if !r.line.Pressed() {
		r.repeat.Stop()
		r.longActive.Store(false)
		return
	}
	if r.cb.long != nil {
		r.cb.long()
	}
}

// State reports the current state. AwaitingSecondClick is the double-click
// window overlapping Idle; LongPressActive wins over everything else.
func (r *Recognizer) State() State {
	switch {
	case r.longActive.Load():
		return LongPressActive
	case r.debouncing.Load():
		return Debouncing
	case r.clicks.Load() > 0:
		return AwaitingSecondClick
	default:
		return Idle
	}
}

// Clicks returns the confirmed presses in the current double-click window.
func (r *Recognizer) Clicks() uint32 { return r.clicks.Load() }

func (r *Recognizer) Timings() Timings {
	return Timings{
		Debounce:        r.tDebounce.Load(),
		DoubleClick:     r.tWindow.Load(),
		LongPressDelay:  r.tLong.Load(),
		LongPressRepeat: r.tRepeat.Load(),
	}
}

// SetTimings swaps the windows. Running timers keep their current deadline;
// the new values apply from the next arm.
func (r *Recognizer) SetTimings(t Timings) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.store(t)
	return nil
}

// Close stops every timer and returns the recognizer to Idle.
func (r *Recognizer) Close() {
	r.debounce.Stop()
	r.window.Stop()
	r.longPress.Stop()
	r.repeat.Stop()
	r.debouncing.Store(false)
	r.longActive.Store(false)
	r.clicks.Store(0)
}

func (r *Recognizer) store(t Timings) {
	r.tDebounce.Store(t.Debounce)
	r.tWindow.Store(t.DoubleClick)
	r.tLong.Store(t.LongPressDelay)
	r.tRepeat.Store(t.LongPressRepeat)
}
