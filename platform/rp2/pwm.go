//go:build rp2040

package rp2

import (
	"machine"
	"sync"

	"indicator-go/color"
	"indicator-go/errcode"
	"indicator-go/platform"
)

var _ platform.Output = (*PWMOutput)(nil)

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetInverting(channel uint8, inverting bool)
	Top() uint32
	Set(channel uint8, value uint32)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type pwmPin struct {
	ctrl pwmCtrl
	ch   uint8
	top  uint32
}

// set scales an 8-bit level to the slice resolution.
func (p *pwmPin) set(level uint8) {
	p.ctrl.Set(p.ch, uint32(level)*p.top/color.Max)
}

func newPWMPin(pin machine.Pin, periodNs uint64, inverted bool, configured map[uint8]bool) (*pwmPin, error) {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "rp2.pwm", Msg: "pin has no PWM slice", Err: err}
	}
	ctrl := pwmGroupBySlice(slice)
	if !configured[slice] {
		if err := ctrl.Configure(machine.PWMConfig{Period: periodNs}); err != nil {
			return nil, &errcode.E{C: errcode.Error, Op: "rp2.pwm", Err: err}
		}
		configured[slice] = true
	}
	ch, err := ctrl.Channel(pin)
	if err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "rp2.pwm", Err: err}
	}
	ctrl.SetInverting(ch, inverted)
	return &pwmPin{ctrl: ctrl, ch: ch, top: ctrl.Top()}, nil
}

// PWMOutput drives a common-anode RGB LED and a status LED. The RGB
// channels are inverted so a level of 255 is full on.
type PWMOutput struct {
	mu         sync.Mutex
	r, g, b, s *pwmPin
}

func NewPWMOutput(bd Board) (*PWMOutput, error) {
	freq := bd.PWMFreqHz
	if freq == 0 {
		freq = 1000
	}
	period := uint64(1e9) / freq
	seen := map[uint8]bool{}

	o := &PWMOutput{}
	var err error
	if o.r, err = newPWMPin(bd.LEDR, period, true, seen); err != nil {
		return nil, err
	}
	if o.g, err = newPWMPin(bd.LEDG, period, true, seen); err != nil {
		return nil, err
	}
	if o.b, err = newPWMPin(bd.LEDB, period, true, seen); err != nil {
		return nil, err
	}
	if o.s, err = newPWMPin(bd.LEDStatus, period, false, seen); err != nil {
		return nil, err
	}
	o.SetRGB(0, 0, 0)
	o.SetStatus(0)
	return o, nil
}

func (o *PWMOutput) SetRGB(r, g, b uint8) {
	o.mu.Lock()
	o.r.set(r)
	o.g.set(g)
	o.b.set(b)
	o.mu.Unlock()
}

func (o *PWMOutput) SetStatus(level uint8) {
	o.mu.Lock()
	o.s.set(level)
	o.mu.Unlock()
}
