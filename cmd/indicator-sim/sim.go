//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"indicator-go/bus"
	"indicator-go/color"
	"indicator-go/config"
	"indicator-go/gesture"
	"indicator-go/internal/telemetry"
	"indicator-go/nvstore"
	"indicator-go/platform"
	"indicator-go/platform/memflash"
	"indicator-go/platform/timerq"
	"indicator-go/services/console"
	"indicator-go/services/heartbeat"
	"indicator-go/services/indicator"
	"indicator-go/types"
)

// ledOutput records what the firmware would drive onto the LEDs.
type ledOutput struct {
	mu     sync.Mutex
	rgb    color.RGB
	status uint8
}

var _ platform.Output = (*ledOutput)(nil)

func (o *ledOutput) SetRGB(r, g, b uint8) {
	o.mu.Lock()
	o.rgb = color.RGB{R: r, G: g, B: b}
	o.mu.Unlock()
}

func (o *ledOutput) SetStatus(level uint8) {
	o.mu.Lock()
	o.status = level
	o.mu.Unlock()
}

func (o *ledOutput) snapshot() (color.RGB, uint8) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rgb, o.status
}

type sim struct {
	cfg config.Config
	log *slog.Logger

	bus     *bus.Bus
	out     *ledOutput
	page    *memflash.Page
	store   *nvstore.Store
	svc     *indicator.Service
	timers  *timerq.Service
	rec     *gesture.Recognizer
	console *console.Service
	port    console.Port
	query   *bus.Connection

	pressed atomic.Bool

	mu    sync.Mutex
	state types.ColorState

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// newSim builds the same object graph as the firmware, with host stand-ins
// for the button, LEDs, flash and timers.
func newSim(cfg config.Config, flashPath string, log *slog.Logger) (*sim, error) {
	page, err := memflash.Open(flashPath, cfg.Store.PageSize)
	if err != nil {
		return nil, err
	}
	store := nvstore.New(page,
		nvstore.WithLogger(log),
		nvstore.WithPollTimeout(cfg.Store.PollTimeout()),
	)
	if err := store.Initialize(color.RecordSize); err != nil {
		return nil, err
	}

	s := &sim{
		cfg:    cfg,
		log:    log,
		bus:    bus.NewBus(8),
		out:    &ledOutput{},
		page:   page,
		store:  store,
		timers: timerq.New(32),
	}
	s.svc = indicator.New(s.bus.NewConnection("indicator"), store, s.out,
		indicator.WithLogger(log),
		indicator.WithRefresh(cfg.Refresh()),
		indicator.WithSettings(cfg.Color),
	)
	s.rec, err = gesture.New(platform.LineFunc(s.pressed.Load), s.timers, s.svc.Handler(),
		gesture.WithTimings(cfg.Gesture))
	if err != nil {
		return nil, err
	}
	s.svc.AttachTimings(s.rec)
	s.console = console.New(nil, s.bus.NewConnection("console"), console.WithLogger(log))
	s.query = s.bus.NewConnection("sim")
	return s, nil
}

// attachConsole runs the text console on port once started.
func (s *sim) attachConsole(port console.Port) {
	s.port = port
	s.console = console.New(port, s.bus.NewConnection("console-port"), console.WithLogger(s.log))
}

// start boots the indicator and launches every service goroutine. It
// returns once the first colour state has been published.
func (s *sim) start(parent context.Context, updates <-chan config.Config) error {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	telemetry.Bridge(ctx, s.bus.NewConnection("telemetry"))
	states := s.query.Subscribe(bus.T(types.TokColor, types.TokState))

	s.svc.Boot()
	s.spawn(func() { s.timers.Run(ctx) })
	s.spawn(func() { _ = s.svc.Run(ctx) })
	config.NewService(s.log).Start(ctx, s.bus.NewConnection("config"), s.cfg, updates)
	if err := heartbeat.New(s.out, heartbeat.WithLogger(s.log), heartbeat.WithPeriod(s.cfg.Refresh())).
		Start(ctx, s.bus.NewConnection("heartbeat")); err != nil {
		cancel()
		return err
	}
	if s.port != nil {
		s.spawn(func() { _ = s.console.Run(ctx) })
	}

	select {
	case m := <-states.Channel():
		s.setState(m)
	case <-ctx.Done():
		return ctx.Err()
	}
	s.spawn(func() {
		defer s.query.Unsubscribe(states)
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-states.Channel():
				s.setState(m)
			}
		}
	})
	return nil
}

func (s *sim) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *sim) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.rec.Close()
}

func (s *sim) setState(m *bus.Message) {
	if st, ok := m.Payload.(types.ColorState); ok {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	}
}

// ---- actuator ----

func (s *sim) press() {
	if s.pressed.Swap(true) {
		return
	}
	s.rec.OnEdge()
}

func (s *sim) release() {
	if !s.pressed.Swap(false) {
		return
	}
	s.rec.OnEdge()
}

func (s *sim) isPressed() bool { return s.pressed.Load() }

func (s *sim) exec(line string) string { return s.console.Exec(line) }

// ---- view ----

type snapshot struct {
	State   types.ColorState
	LED     color.RGB
	Status  uint8
	Gesture gesture.State
	Pressed bool
}

func (s *sim) snapshot() snapshot {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	rgb, level := s.out.snapshot()
	return snapshot{
		State:   st,
		LED:     rgb,
		Status:  level,
		Gesture: s.rec.State(),
		Pressed: s.pressed.Load(),
	}
}

// stats asks the indicator for store counters over the bus.
func (s *sim) stats(ctx context.Context) (types.StoreStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	msg := s.query.NewMessage(bus.T(types.TokStore, types.TokStats, types.TokGet), nil, false)
	reply, err := s.query.RequestWait(ctx, msg)
	if err != nil {
		return types.StoreStats{}, err
	}
	st, _ := reply.Payload.(types.StoreStats)
	return st, nil
}

// report prints the final state for headless runs.
func (s *sim) report(ctx context.Context, w io.Writer) error {
	// Let the last render and any flush land.
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(2 * s.cfg.Refresh()):
	}
	v := s.snapshot()
	st, err := s.stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "mode=%s hue=%d sat=%d bri=%d rgb=#%02x%02x%02x\n",
		v.State.Mode, v.State.Hue, v.State.Saturation, v.State.Brightness, v.LED.R, v.LED.G, v.LED.B)
	fmt.Fprintf(w, "store cursor=%d writes=%d erases=%d recoveries=%d failures=%d erase_needed=%t\n",
		st.Cursor, st.Writes, st.Erases, st.Recoveries, st.Failures, st.EraseNeeded)
	return nil
}
