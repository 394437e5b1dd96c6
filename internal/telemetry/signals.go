//go:build !(rp2040 || rp2350)

// Package telemetry mirrors indicator bus traffic onto capitan signals so
// host tools can hook them; LogHooks writes them to slog.
package telemetry

import "github.com/zoobzio/capitan"

var (
	GestureDetected = capitan.NewSignal(
		"indicator.gesture.detected",
		"Button gesture recognised",
	)

	ColorChanged = capitan.NewSignal(
		"indicator.color.changed",
		"Colour or editing mode changed",
	)

	StoreRestored = capitan.NewSignal(
		"indicator.store.restored",
		"Boot-time record restore finished",
	)

	StoreFlushed = capitan.NewSignal(
		"indicator.store.flushed",
		"Colour record written to flash",
	)

	StoreFailed = capitan.NewSignal(
		"indicator.store.failed",
		"Flash store operation failed",
	)
)

var (
	KeyKind   = capitan.NewStringKey("kind")
	KeyMode   = capitan.NewStringKey("mode")
	KeyHue    = capitan.NewIntKey("hue")
	KeySat    = capitan.NewIntKey("saturation")
	KeyBri    = capitan.NewIntKey("brightness")
	KeyOp     = capitan.NewStringKey("op")
	KeyCode   = capitan.NewStringKey("code")
	KeyCursor = capitan.NewIntKey("cursor")
)
