//go:build rp2040

package rp2

import (
	"image/color"
	"log/slog"
	"machine"
	"sync"

	"tinygo.org/x/drivers/ws2812"

	"indicator-go/platform"
)

var _ platform.Output = (*PixelOutput)(nil)

// PixelOutput drives two WS2812 pixels: colour on the first, the status
// level as white on the second.
type PixelOutput struct {
	mu    sync.Mutex
	dev   ws2812.Device
	buf   [2]color.RGBA
	log   *slog.Logger
	fault faultLatch
}

func NewPixelOutput(pin machine.Pin, log *slog.Logger) *PixelOutput {
	if log == nil {
		log = slog.Default()
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	o := &PixelOutput{dev: ws2812.New(pin), log: log, fault: faultLatch{what: "ws2812 write"}}
	o.flush()
	return o
}

func (o *PixelOutput) SetRGB(r, g, b uint8) {
	o.mu.Lock()
	o.buf[0] = color.RGBA{R: r, G: g, B: b, A: 255}
	o.flush()
	o.mu.Unlock()
}

func (o *PixelOutput) SetStatus(level uint8) {
	o.mu.Lock()
	// Quarter brightness: the status pixel sits next to the colour pixel.
	l := level / 4
	o.buf[1] = color.RGBA{R: l, G: l, B: l, A: 255}
	o.flush()
	o.mu.Unlock()
}

// flush runs on every refresh. Caller holds lock.
func (o *PixelOutput) flush() {
	o.fault.report(o.log, o.dev.WriteColors(o.buf[:]))
}
