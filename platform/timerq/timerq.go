// Package timerq is a real-time TimerService. Arm/stop requests and timer
// expiries are handled by a single dispatcher goroutine, so callbacks never
// overlap.
//
// Start and Stop only store atomics and do a non-blocking send on a
// one-slot wake channel; they are safe to call from an interrupt handler.
// Requests on one timer coalesce: the dispatcher applies the latest one, so
// a burst of Start calls can never lose the final arm.
package timerq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"indicator-go/platform"
	"indicator-go/x/timex"
)

var _ platform.TimerService = (*Service)(nil)

// expiry is posted by a time.AfterFunc goroutine.
type expiry struct {
	t   *timer
	gen uint32
}

type Service struct {
	wake  chan struct{}
	fires chan expiry
	done  chan struct{}
	stop  sync.Once
	tick  time.Duration

	mu     sync.Mutex
	timers []*timer

	fired atomic.Uint32
}

type Option func(*Service)

// WithTick overrides the tick length (default timex.Tick).
func WithTick(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tick = d
		}
	}
}

// New returns a Service whose expiry queue holds qLen entries. A full
// queue delays expiries, it never drops them.
func New(qLen int, opts ...Option) *Service {
	if qLen <= 0 {
		qLen = 32
	}
	s := &Service{
		wake:  make(chan struct{}, 1),
		fires: make(chan expiry, qLen),
		done:  make(chan struct{}),
		tick:  timex.Tick,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) NewTimer(mode platform.TimerMode, fn func()) platform.Timer {
	t := &timer{s: s, mode: mode, fn: fn}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// Run dispatches until ctx is cancelled. Pending expiries are abandoned.
func (s *Service) Run(ctx context.Context) {
	defer s.stop.Do(func() { close(s.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.applyRequests()
		case ev := <-s.fires:
			// Requests made before this expiry was taken may have stopped
			// or re-armed its timer.
			s.applyRequests()
			s.expire(ev)
		}
	}
}

// Fired reports dispatched callbacks.
func (s *Service) Fired() uint32 { return s.fired.Load() }

func (s *Service) kick() {
	select {
	case s.wake <- struct{}{}:
	default: // a wake is already pending
	}
}

func (s *Service) applyRequests() {
	s.mu.Lock()
	timers := s.timers
	s.mu.Unlock()
	for _, t := range timers {
		if t.dirty.Swap(false) {
			t.apply()
		}
	}
}

func (s *Service) expire(ev expiry) {
	t := ev.t
	if ev.gen != t.applied || t.hw == nil {
		return
	}
	if t.mode == platform.Repeated {
		t.arm()
	} else {
		t.hw = nil
	}
	s.fired.Add(1)
	t.fn()
}

type timer struct {
	s    *Service
	mode platform.TimerMode
	fn   func()

	// Written by Start/Stop from any context.
	gen    atomic.Uint32
	ticks  atomic.Uint32
	active atomic.Bool
	dirty  atomic.Bool

	// Owned by the dispatcher goroutine.
	applied uint32
	hw      *time.Timer
	period  time.Duration
}

func (t *timer) Start(ticks uint32) {
	t.ticks.Store(ticks)
	t.active.Store(true)
	t.request()
}

func (t *timer) Stop() {
	t.active.Store(false)
	t.request()
}

// request publishes gen last, so a dispatcher that sees the new gen also
// sees the ticks and active flag stored before it.
func (t *timer) request() {
	t.gen.Add(1)
	t.dirty.Store(true)
	t.s.kick()
}

func (t *timer) apply() {
	g := t.gen.Load()
	if g == t.applied {
		return
	}
	t.applied = g
	t.halt()
	if !t.active.Load() {
		return
	}
	ticks := t.ticks.Load()
	if ticks == 0 {
		ticks = 1
	}
	t.period = time.Duration(ticks) * t.s.tick
	t.arm()
}

func (t *timer) arm() {
	gen := t.applied
	t.hw = time.AfterFunc(t.period, func() {
		select {
		case t.s.fires <- expiry{t: t, gen: gen}:
		case <-t.s.done:
		}
	})
}

func (t *timer) halt() {
	if t.hw != nil {
		t.hw.Stop()
		t.hw = nil
	}
}
