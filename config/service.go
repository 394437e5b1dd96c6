package config

import (
	"context"
	"log/slog"

	"indicator-go/bus"
	"indicator-go/types"
)

// Service publishes each configuration section retained on
// config/<section> and republishes on every update.
type Service struct {
	log *slog.Logger
}

func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log}
}

// Topic returns config/<section>.
func Topic(section string) bus.Topic { return bus.T(types.TokConfig, section) }

// Publish validates c and publishes its sections. An invalid config is
// logged and not published, so subscribers keep the last good one.
func (s *Service) Publish(conn *bus.Connection, c Config) error {
	if err := c.Validate(); err != nil {
		s.log.Warn("config rejected", "device", c.Device, "err", err)
		return err
	}
	sections := []struct {
		name    string
		payload any
	}{
		{types.SectionDevice, c.Device},
		{types.SectionGesture, c.Gesture},
		{types.SectionColor, c.Color},
		{types.SectionStore, c.Store},
		{types.SectionRefresh, c.RefreshMs},
	}
	for _, sec := range sections {
		conn.Publish(conn.NewMessage(Topic(sec.name), sec.payload, true))
	}
	s.log.Debug("config published", "device", c.Device)
	return nil
}

// Start publishes initial and then every config received on updates until
// ctx ends or updates is closed.
func (s *Service) Start(ctx context.Context, conn *bus.Connection, initial Config, updates <-chan Config) {
	_ = s.Publish(conn, initial)
	if updates == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-updates:
				if !ok {
					return
				}
				_ = s.Publish(conn, c)
			}
		}
	}()
}
