// Package console is the text command interface on the serial port: a
// minimal echoing line editor and the HELP / RGB / HSV commands.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"indicator-go/bus"
	"indicator-go/types"
)

// Port is a byte stream with a cancellable receive, the shape of a uartx
// UART and of the host serial adaptor.
type Port interface {
	io.Writer
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// MaxLine is the line buffer size including the terminator slot, so a
// line holds at most MaxLine-1 bytes.
const MaxLine = 64

const helpText = "\r\n" +
	"Commands:\r\n" +
	"RGB <r> <g> <b> - r - red [0..255], g - green [0..255], b - blue [0..255]\r\n" +
	"HSV <h> <s> <v> - h - hue [0..360], s - saturation [0..100], v - value/brightness [0..100]\r\n" +
	"help - show this message\r\n"

var topicColorSet = bus.T(types.TokColor, types.TokSet)

type Service struct {
	port Port
	conn *bus.Connection
	log  *slog.Logger

	line []byte
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func New(port Port, conn *bus.Connection, opts ...Option) *Service {
	s := &Service{
		port: port,
		conn: conn,
		log:  slog.Default(),
		line: make([]byte, 0, MaxLine),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run reads the port until ctx ends or the port reports EOF.
func (s *Service) Run(ctx context.Context) error {
	buf := make([]byte, 32)
	for {
		n, err := s.port.RecvSomeContext(ctx, buf)
		for i := 0; i < n; i++ {
			s.Feed(buf[i])
		}
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			s.log.Info("console port closed")
			return nil
		case err != nil && !errors.Is(err, context.DeadlineExceeded):
			s.log.Warn("console read failed", "err", err)
			// Back off so a dead port does not spin.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
		}
	}
}

// Feed runs one received byte through the line editor.
func (s *Service) Feed(b byte) {
	if b == '\r' || b == '\n' {
		if len(s.line) > 0 {
			cmd := string(s.line)
			s.line = s.line[:0]
			s.log.Info("console command", "line", cmd)
			s.write(s.Exec(cmd))
		}
		s.write("\r\n")
		return
	}
	if len(s.line) >= MaxLine-1 {
		s.log.Warn("console line overflow, discarded")
		s.line = s.line[:0]
		return
	}
	s.line = append(s.line, b)
	s.write(string(b))
}

func (s *Service) write(str string) {
	if _, err := io.WriteString(s.port, str); err != nil {
		s.log.Error("console write failed", "err", err)
	}
}

// Exec interprets one command line and returns the response text.
// Accepted colour commands are published on color/set.
func (s *Service) Exec(line string) string {
	args, err := shlex.Split(line)
	if err != nil || len(args) == 0 {
		s.log.Warn("console: empty command")
		return "\r\nUnknown command\r\n"
	}
	verb := args[0]
	switch strings.ToUpper(verb) {
	case "HELP":
		return helpText
	case "RGB":
		return s.rgb(args[1:])
	case "HSV":
		return s.hsv(args[1:])
	default:
		s.log.Warn("console: unknown command", "verb", verb)
		return fmt.Sprintf("\r\nUnknown command: %s\r\n", verb)
	}
}

func (s *Service) rgb(args []string) string {
	if len(args) < 3 {
		return "\r\nInvalid RGB command format\r\n"
	}
	v, ok := parse3(args, 255, 255, 255)
	if !ok {
		s.log.Warn("console: invalid RGB values", "args", args[:3])
		return "\r\nInvalid RGB values (each should be 0-255)\r\n"
	}
	s.publish(types.ModelRGB, v)
	return fmt.Sprintf("\r\nColor set to R=%d G=%d B=%d\r\n", v[0], v[1], v[2])
}

func (s *Service) hsv(args []string) string {
	if len(args) < 3 {
		return "\r\nInvalid HSV command format\r\n"
	}
	v, ok := parse3(args, 360, 100, 100)
	if !ok {
		s.log.Warn("console: invalid HSV values", "args", args[:3])
		return "\r\nInvalid HSV values (H:0-360, S/V:0-100)\r\n"
	}
	s.publish(types.ModelHSV, v)
	return fmt.Sprintf("\r\nColor set to H=%d S=%d V=%d\r\n", v[0], v[1], v[2])
}

func (s *Service) publish(m types.ColorModel, v [3]uint32) {
	s.conn.Publish(s.conn.NewMessage(topicColorSet, types.ColorSet{Model: m, Values: v}, false))
}

// parse3 parses three unsigned decimals against per-position maxima.
func parse3(args []string, max0, max1, max2 uint32) ([3]uint32, bool) {
	var out [3]uint32
	limits := [3]uint32{max0, max1, max2}
	for i := range out {
		n, err := strconv.ParseUint(args[i], 10, 32)
		if err != nil || uint32(n) > limits[i] {
			return out, false
		}
		out[i] = uint32(n)
	}
	return out, true
}
