// Package indicator owns the colour state. Gestures and console commands
// mutate it, a refresh ticker renders it, and returning to idle mode
// persists it.
package indicator

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"indicator-go/bus"
	"indicator-go/color"
	"indicator-go/errcode"
	"indicator-go/gesture"
	"indicator-go/nvstore"
	"indicator-go/types"
	"indicator-go/x/timex"
)

// Store is the persistence the service writes through; *nvstore.Store
// satisfies it.
type Store interface {
	ReadLast(buf []uint32) (int, error)
	Write(ctx context.Context, data []uint32) error
	Cursor() uint32
	EraseNeeded() bool
	Stats() nvstore.Stats
}

// RGBSetter is the colour half of platform.Output.
type RGBSetter interface {
	SetRGB(r, g, b uint8)
}

// TimingSetter receives gesture timings from config/gesture;
// *gesture.Recognizer satisfies it.
type TimingSetter interface {
	SetTimings(gesture.Timings) error
}

var (
	topicColorState = bus.T(types.TokColor, types.TokState)
	topicColorSet   = bus.T(types.TokColor, types.TokSet)
	topicStoreEvent = bus.T(types.TokStore, types.TokEvent)
	topicStatsGet   = bus.T(types.TokStore, types.TokStats, types.TokGet)
	topicConfigAll  = bus.T(types.TokConfig, bus.Single)
)

func gestureTopic(k types.GestureKind) bus.Topic {
	return bus.T(types.TokGesture, string(k))
}

const defaultQueueLen = 16

type Service struct {
	conn    *bus.Connection
	store   Store
	out     RGBSetter
	log     *slog.Logger
	timings TimingSetter

	state   *color.State
	refresh time.Duration

	// Gesture callbacks run in timer context; they only enqueue.
	intents chan types.GestureKind
	drops   atomic.Uint32

	dirty bool
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRefresh(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithSettings sets the fallback colour and the saturation/brightness step.
func WithSettings(c color.Settings) Option {
	return func(s *Service) { s.state = color.NewState(c.Initial, c.Step) }
}

// WithQueue sizes the gesture intent queue.
func WithQueue(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.intents = make(chan types.GestureKind, n)
		}
	}
}

func New(conn *bus.Connection, store Store, out RGBSetter, opts ...Option) *Service {
	s := &Service{
		conn:    conn,
		store:   store,
		out:     out,
		log:     slog.Default(),
		state:   color.NewState(color.Default, color.DefaultStep),
		refresh: 30 * time.Millisecond,
		intents: make(chan types.GestureKind, defaultQueueLen),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AttachTimings routes config/gesture updates to t.
func (s *Service) AttachTimings(t TimingSetter) { s.timings = t }

// State returns the current colour and mode. Only meaningful when Run is
// not active, e.g. right after Boot.
func (s *Service) State() (color.HSB, color.Mode) { return s.state.HSB(), s.state.Mode() }

// Drops counts gestures lost to a full intent queue.
func (s *Service) Drops() uint32 { return s.drops.Load() }

// ---- Boot ----

// Boot restores the last persisted colour. An empty page, a record of the
// wrong size or a record with out-of-range words all leave the fallback
// colour in place.
func (s *Service) Boot() {
	var buf [color.RecordWords]uint32
	_, err := s.store.ReadLast(buf[:])
	if err == nil {
		c, derr := color.FromRecord(buf[:])
		if derr != nil {
			err = derr
		} else {
			s.state.Set(c)
		}
	}

	switch {
	case err == nil:
		s.log.Info("colour restored", "hue", s.state.HSB().H, "cursor", s.store.Cursor())
	case nvstore.IsAbsent(err):
		s.log.Info("no stored colour, using default", "reason", string(errcode.Of(err)))
	default:
		s.log.Warn("stored colour unusable, using default", "err", err)
	}
	s.publishStore(types.StoreRestore, err)
	s.dirty = true
}

// ---- Gesture intake ----

type handler struct{ s *Service }

func (h handler) SingleClick() { h.s.post(types.GestureSingle) }
func (h handler) DoubleClick() { h.s.post(types.GestureDouble) }
func (h handler) LongPress()   { h.s.post(types.GestureLong) }

// Handler returns the gesture handler to pass to gesture.New. It never
// blocks.
func (s *Service) Handler() any { return handler{s} }

func (s *Service) post(k types.GestureKind) {
	select {
	case s.intents <- k:
	default:
		s.drops.Add(1)
	}
}

// ---- Run loop ----

func (s *Service) Run(ctx context.Context) error {
	setSub := s.conn.Subscribe(topicColorSet)
	cfgSub := s.conn.Subscribe(topicConfigAll)
	statsSub := s.conn.Subscribe(topicStatsGet)
	defer s.conn.Unsubscribe(setSub)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(statsSub)

	tick := time.NewTicker(s.refresh)
	defer tick.Stop()

	s.render()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("indicator service stopping")
			return nil

		case k := <-s.intents:
			s.onGesture(ctx, k)

		case <-tick.C:
			s.render()

		case msg := <-setSub.Channel():
			cs, ok := msg.Payload.(types.ColorSet)
			if !ok {
				s.log.Warn("color/set: wrong payload type")
				continue
			}
			s.applySet(cs)

		case msg := <-cfgSub.Channel():
			if d, changed := s.applyConfig(msg); changed {
				tick.Reset(d)
			}

		case msg := <-statsSub.Channel():
			s.conn.Reply(msg, s.stats(), false)
		}
	}
}

func (s *Service) onGesture(ctx context.Context, k types.GestureKind) {
	s.conn.Publish(s.conn.NewMessage(gestureTopic(k), types.GestureEvent{Kind: k, TS: timex.NowMs()}, false))

	switch k {
	case types.GestureDouble:
		m := s.state.Cycle()
		s.dirty = true
		s.log.Debug("mode changed", "mode", m.String())
		if m == color.Idle {
			s.flush(ctx)
		}
	case types.GestureLong:
		if s.state.Adjust() {
			s.dirty = true
		}
	}
}

// flush persists the colour. Failures are reported, not retried: the
// store schedules an erase and the next return to idle tries again.
func (s *Service) flush(ctx context.Context) {
	rec := s.state.Record()
	err := s.store.Write(ctx, rec[:])
	if err != nil {
		s.log.Error("colour not saved", "err", err)
	} else {
		s.log.Debug("colour saved", "cursor", s.store.Cursor())
	}
	s.publishStore(types.StoreFlush, err)
}

func (s *Service) applySet(cs types.ColorSet) {
	v := cs.Values
	switch cs.Model {
	case types.ModelRGB:
		s.state.Set(color.FromRGB(uint8(min(v[0], color.Max)), uint8(min(v[1], color.Max)), uint8(min(v[2], color.Max))))
	case types.ModelHSV:
		s.state.Set(color.FromHSV(v[0], v[1], v[2]))
	default:
		s.log.Warn("color/set: unknown model", "model", string(cs.Model))
		return
	}
	s.dirty = true
	s.render()
}

// applyConfig handles one config/<section> message and returns a new
// refresh period when that section changed it.
func (s *Service) applyConfig(msg *bus.Message) (time.Duration, bool) {
	if len(msg.Topic) < 2 {
		return 0, false
	}
	switch p := msg.Payload.(type) {
	case gesture.Timings:
		if s.timings == nil {
			return 0, false
		}
		if err := s.timings.SetTimings(p); err != nil {
			s.log.Warn("gesture timings rejected", "err", err)
			return 0, false
		}
		s.log.Info("gesture timings applied", "double_click_ms", p.DoubleClick)
	case color.Settings:
		s.state.SetStep(p.Step)
	case uint32:
		if msg.Topic[1] == types.SectionRefresh && p > 0 {
			s.refresh = timex.Duration(p)
			return s.refresh, true
		}
	}
	return 0, false
}

func (s *Service) render() {
	rgb := s.state.RGB()
	s.out.SetRGB(rgb.R, rgb.G, rgb.B)
	if !s.dirty {
		return
	}
	s.dirty = false
	c := s.state.HSB()
	s.conn.Publish(s.conn.NewMessage(topicColorState, types.ColorState{
		Hue:        c.H,
		Saturation: c.S,
		Brightness: c.B,
		Mode:       s.state.Mode().String(),
		R:          rgb.R,
		G:          rgb.G,
		B:          rgb.B,
		TS:         timex.NowMs(),
	}, true))
}

func (s *Service) publishStore(op types.StoreOp, err error) {
	s.conn.Publish(s.conn.NewMessage(topicStoreEvent, types.StoreEvent{
		Op:     op,
		Code:   string(errcode.Of(err)),
		Cursor: s.store.Cursor(),
		TS:     timex.NowMs(),
	}, false))
}

func (s *Service) stats() types.StoreStats {
	st := s.store.Stats()
	return types.StoreStats{
		Writes:      st.Writes,
		Erases:      st.Erases,
		Recoveries:  st.Recoveries,
		Failures:    st.Failures,
		Cursor:      s.store.Cursor(),
		EraseNeeded: s.store.EraseNeeded(),
	}
}
