//go:build !(rp2040 || rp2350)

// Package hostserial adapts a go.bug.st/serial port to the console's
// byte-stream shape (Write plus a cancellable receive).
package hostserial

import (
	"context"
	"time"

	"go.bug.st/serial"

	"indicator-go/errcode"
)

// pollInterval bounds each blocking Read so cancellation is noticed.
const pollInterval = 100 * time.Millisecond

type rawPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

type Port struct {
	name string
	raw  rawPort
}

// Open opens name at baud, 8N1.
func Open(name string, baud int) (*Port, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, &errcode.E{C: errcode.NotFound, Op: "hostserial.Open", Msg: name, Err: err}
	}
	return wrap(name, p)
}

func wrap(name string, raw rawPort) (*Port, error) {
	if err := raw.SetReadTimeout(pollInterval); err != nil {
		raw.Close()
		return nil, &errcode.E{C: errcode.Unsupported, Op: "hostserial.Open", Msg: name, Err: err}
	}
	return &Port{name: name, raw: raw}, nil
}

// List returns the serial ports present on this host.
func List() ([]string, error) { return serial.GetPortsList() }

func (p *Port) Name() string                { return p.name }
func (p *Port) Write(b []byte) (int, error) { return p.raw.Write(b) }
func (p *Port) Close() error                { return p.raw.Close() }

// RecvSomeContext blocks until at least one byte arrives, the port fails,
// or ctx ends.
func (p *Port) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.raw.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

// ReadUntilIdle collects bytes until nothing arrives for idle or ctx ends.
func (p *Port) ReadUntilIdle(ctx context.Context, idle time.Duration) ([]byte, error) {
	var out []byte
	buf := make([]byte, 128)
	last := time.Now()
	for time.Since(last) < idle {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n, err := p.raw.Read(buf)
		if err != nil {
			return out, err
		}
		if n > 0 {
			out = append(out, buf[:n]...)
			last = time.Now()
		}
	}
	return out, nil
}
