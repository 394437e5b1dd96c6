// Package heartbeat drives the status LED: its pattern tells the user which
// component a long press will adjust.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"indicator-go/bus"
	"indicator-go/color"
	"indicator-go/types"
	"indicator-go/x/timex"
)

var (
	topicColorState    = bus.T(types.TokColor, types.TokState)
	topicConfigRefresh = bus.T(types.TokConfig, types.SectionRefresh)
)

// StatusSetter is the part of platform.Output the heartbeat needs.
type StatusSetter interface {
	SetStatus(level uint8)
}

type Service struct {
	out    StatusSetter
	log    *slog.Logger
	period time.Duration
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPeriod sets the initial step period; config/refresh overrides it.
func WithPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.period = d
		}
	}
}

func New(out StatusSetter, opts ...Option) *Service {
	s := &Service{out: out, log: slog.Default(), period: 30 * time.Millisecond}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	stateSub := conn.Subscribe(topicColorState)
	defer conn.Unsubscribe(stateSub)
	cfgSub := conn.Subscribe(topicConfigRefresh)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.period)
	defer tick.Stop()

	mode := color.Idle
	var level uint8

	// loop until context is cancelled, respond to tick, mode and config changes
	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat service stopping")
			return
		case <-tick.C:
			level = color.NextStatus(mode, level)
			s.out.SetStatus(level)
		case msg := <-stateSub.Channel():
			st, ok := msg.Payload.(types.ColorState)
			if !ok {
				continue
			}
			if m, ok := color.ParseMode(st.Mode); ok && m != mode {
				mode = m
				s.log.Debug("heartbeat pattern", "mode", m.String())
			}
		case msg := <-cfgSub.Channel():
			if ms, ok := msg.Payload.(uint32); ok && ms > 0 {
				s.period = timex.Duration(ms)
				tick.Reset(s.period)
				s.log.Info("heartbeat period set", "period", s.period)
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
