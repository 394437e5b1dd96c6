// Package config holds the typed device configuration. Boards carry an
// embedded default per device name; host builds can also load YAML from
// disk and watch it for edits.
package config

import (
	"time"

	"indicator-go/color"
	"indicator-go/errcode"
	"indicator-go/gesture"
	"indicator-go/x/timex"
)

// Config is the whole device configuration. Each top-level section is
// published retained on config/<section>.
type Config struct {
	Device    string          `yaml:"device"`
	Gesture   gesture.Timings `yaml:"gesture"` // long_press_repeat_ms <= debounce_ms
	Color     color.Settings  `yaml:"color"`
	Store     Store           `yaml:"store"`
	RefreshMs uint32          `yaml:"refresh_ms"`
}

// Store tunes the flash log. The record size is fixed by the colour
// record and is not configurable.
type Store struct {
	PageSize      uint32 `yaml:"page_size"`
	PollTimeoutMs uint32 `yaml:"poll_timeout_ms"`
}

const (
	DefaultDevice    = "pico-indicator"
	DefaultRefreshMs = 30
	DefaultPageSize  = 4096
)

// Default returns the configuration for DefaultDevice.
func Default() Config {
	c, _ := Lookup(DefaultDevice)
	return c
}

// Lookup returns the embedded configuration for a device name.
func Lookup(device string) (Config, bool) {
	c, ok := embeddedConfigs[device]
	return c, ok
}

// Devices lists the names with an embedded configuration.
func Devices() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	return out
}

// Refresh is the output refresh period.
func (c Config) Refresh() time.Duration { return timex.Duration(c.RefreshMs) }

// PollTimeout bounds each flash completion wait.
func (s Store) PollTimeout() time.Duration { return timex.Duration(s.PollTimeoutMs) }

func (c Config) Validate() error {
	if c.Device == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "device is empty"}
	}
	if err := c.Gesture.Validate(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.gesture", Err: err}
	}
	if err := c.Color.Validate(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.color", Err: err}
	}
	if c.Store.PageSize == 0 || c.Store.PageSize%4 != 0 || c.Store.PageSize < 4+color.RecordSize {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.store", Msg: "page size must be a word multiple that fits one record"}
	}
	if c.Store.PollTimeoutMs == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.store", Msg: "poll timeout must be non-zero"}
	}
	if c.RefreshMs == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "refresh_ms must be non-zero"}
	}
	return nil
}
