package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/bus"
	"indicator-go/color"
	"indicator-go/errcode"
	"indicator-go/gesture"
	"indicator-go/types"
)

func TestEmbeddedConfigsValidate(t *testing.T) {
	for _, dev := range Devices() {
		c, ok := Lookup(dev)
		require.True(t, ok)
		assert.Equal(t, dev, c.Device)
		assert.NoError(t, c.Validate(), dev)
	}
	assert.Equal(t, DefaultDevice, Default().Device)
	assert.Equal(t, 30*time.Millisecond, Default().Refresh())
}

func TestParseOverridesDeviceDefaults(t *testing.T) {
	raw := []byte(`
device: pico-ws2812
refresh_ms: 20
gesture:
  debounce_ms: 40
  double_click_ms: 400
  long_press_delay_ms: 800
  long_press_repeat_ms: 25
`)
	c, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "pico-ws2812", c.Device)
	assert.Equal(t, uint32(20), c.RefreshMs)
	assert.Equal(t, gesture.Timings{Debounce: 40, DoubleClick: 400, LongPressDelay: 800, LongPressRepeat: 25}, c.Gesture)
	assert.Equal(t, color.DefaultSettings, c.Color)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`
gesture:
  debounce_ms: 1000
  double_click_ms: 500
  long_press_delay_ms: 1000
  long_press_repeat_ms: 30
`))
	assert.ErrorIs(t, err, errcode.InvalidParams)

	_, err = Parse([]byte(`
gesture:
  debounce_ms: 20
  double_click_ms: 500
  long_press_delay_ms: 1000
  long_press_repeat_ms: 30
`))
	assert.ErrorIs(t, err, errcode.InvalidParams, "repeat longer than debounce")

	_, err = Parse([]byte("store: [1, 2"))
	assert.ErrorIs(t, err, errcode.InvalidPayload)

	_, err = Parse([]byte("store:\n  page_size: 8\n"))
	assert.ErrorIs(t, err, errcode.InvalidParams)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, errcode.NotFound)
}

func TestWatchEmitsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh_ms: 30\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("refresh_ms: 45\n"), 0o644))

	// Truncate and write may arrive as separate events; wait for the final content.
	deadline := time.After(2 * time.Second)
	for got := false; !got; {
		select {
		case c := <-ch:
			got = c.RefreshMs == 45
		case <-deadline:
			t.Fatal("no config after write")
		}
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestServicePublishesRetainedSections(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("config")
	svc := NewService(nil)

	require.NoError(t, svc.Publish(conn, Default()))

	sub := conn.Subscribe(Topic(types.SectionGesture))
	select {
	case m := <-sub.Channel():
		assert.Equal(t, gesture.DefaultTimings, m.Payload)
	case <-time.After(time.Second):
		t.Fatal("no retained gesture section")
	}

	bad := Default()
	bad.RefreshMs = 0
	assert.Error(t, svc.Publish(conn, bad))

	ref := conn.Subscribe(Topic(types.SectionRefresh))
	select {
	case m := <-ref.Channel():
		assert.Equal(t, uint32(DefaultRefreshMs), m.Payload)
	case <-time.After(time.Second):
		t.Fatal("no retained refresh section")
	}
}
