//go:build rp2040

package rp2

import (
	"machine"

	"indicator-go/platform"
)

var _ platform.Line = (*Button)(nil)

// Button is the push-button input with polarity applied.
type Button struct {
	pin       machine.Pin
	activeLow bool
}

// NewButton configures pin with a pull towards the released level.
func NewButton(pin machine.Pin, activeLow bool) *Button {
	mode := machine.PinInputPulldown
	if activeLow {
		mode = machine.PinInputPullup
	}
	pin.Configure(machine.PinConfig{Mode: mode})
	return &Button{pin: pin, activeLow: activeLow}
}

// Pressed is safe in interrupt context.
func (b *Button) Pressed() bool { return b.pin.Get() != b.activeLow }

// OnEdge calls fn from the GPIO interrupt on every level change. fn must
// not block.
func (b *Button) OnEdge(fn func()) error {
	return b.pin.SetInterrupt(machine.PinToggle, func(machine.Pin) { fn() })
}
