package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/bus"
	"indicator-go/types"
)

type fakePort struct {
	mu  sync.Mutex
	out bytes.Buffer
	in  chan []byte
}

func newFakePort() *fakePort { return &fakePort{in: make(chan []byte, 8)} }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case b, ok := <-p.in:
		if !ok {
			return 0, io.EOF
		}
		return copy(buf, b), nil
	}
}

func (p *fakePort) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func newConsole(t *testing.T) (*Service, *fakePort, *bus.Subscription) {
	t.Helper()
	b := bus.NewBus(8)
	conn := b.NewConnection("console")
	sets := conn.Subscribe(topicColorSet)
	port := newFakePort()
	return New(port, conn), port, sets
}

func feed(s *Service, str string) {
	for i := 0; i < len(str); i++ {
		s.Feed(str[i])
	}
}

func TestEchoAndCRLF(t *testing.T) {
	s, port, _ := newConsole(t)
	feed(s, "he")
	assert.Equal(t, "he", port.output())
	feed(s, "\r")
	assert.Equal(t, "he\r\nUnknown command: he\r\n\r\n", port.output())
}

func TestBlankLineOnlyNewline(t *testing.T) {
	s, port, _ := newConsole(t)
	feed(s, "\r\n")
	assert.Equal(t, "\r\n\r\n", port.output())
}

func TestHelpIsCaseInsensitive(t *testing.T) {
	s, _, _ := newConsole(t)
	assert.Equal(t, helpText, s.Exec("help"))
	assert.Equal(t, helpText, s.Exec("HeLp extra"))
}

func TestRGBCommand(t *testing.T) {
	s, _, sets := newConsole(t)
	assert.Equal(t, "\r\nColor set to R=255 G=0 B=12\r\n", s.Exec("rgb 255 0 12"))

	select {
	case m := <-sets.Channel():
		assert.Equal(t, types.ColorSet{Model: types.ModelRGB, Values: [3]uint32{255, 0, 12}}, m.Payload)
	case <-time.After(time.Second):
		t.Fatal("no color/set published")
	}

	assert.Equal(t, "\r\nInvalid RGB values (each should be 0-255)\r\n", s.Exec("RGB 256 0 0"))
	assert.Equal(t, "\r\nInvalid RGB values (each should be 0-255)\r\n", s.Exec("RGB -1 0 0"))
	assert.Equal(t, "\r\nInvalid RGB values (each should be 0-255)\r\n", s.Exec("RGB red 0 0"))
	assert.Equal(t, "\r\nInvalid RGB command format\r\n", s.Exec("RGB 1 2"))

	select {
	case m := <-sets.Channel():
		t.Fatalf("rejected command published %v", m.Payload)
	default:
	}
}

func TestHSVCommand(t *testing.T) {
	s, _, sets := newConsole(t)
	assert.Equal(t, "\r\nColor set to H=360 S=100 V=0\r\n", s.Exec("HSV 360 100 0"))
	m := <-sets.Channel()
	assert.Equal(t, types.ColorSet{Model: types.ModelHSV, Values: [3]uint32{360, 100, 0}}, m.Payload)

	assert.Equal(t, "\r\nInvalid HSV values (H:0-360, S/V:0-100)\r\n", s.Exec("HSV 361 0 0"))
	assert.Equal(t, "\r\nInvalid HSV values (H:0-360, S/V:0-100)\r\n", s.Exec("HSV 0 101 0"))
	assert.Equal(t, "\r\nInvalid HSV command format\r\n", s.Exec("HSV"))
}

func TestUnknownAndEmpty(t *testing.T) {
	s, _, _ := newConsole(t)
	assert.Equal(t, "\r\nUnknown command: blink\r\n", s.Exec("blink 3"))
	assert.Equal(t, "\r\nUnknown command\r\n", s.Exec("   "))
	assert.Equal(t, "\r\nUnknown command\r\n", s.Exec(`rgb "1 2 3`))
}

func TestOverflowDiscardsLine(t *testing.T) {
	s, port, sets := newConsole(t)
	long := strings.Repeat("x", MaxLine-1)
	feed(s, long)
	assert.Equal(t, long, port.output())

	// The next byte overflows: the line is dropped, nothing echoed.
	feed(s, "y")
	assert.Equal(t, long, port.output())

	feed(s, "rgb 1 2 3\r")
	assert.True(t, strings.HasSuffix(port.output(), "rgb 1 2 3\r\nColor set to R=1 G=2 B=3\r\n\r\n"))
	<-sets.Channel()
}

func TestRunReadsUntilEOF(t *testing.T) {
	s, port, sets := newConsole(t)
	port.in <- []byte("HSV 120 50 ")
	port.in <- []byte("50\n")
	close(port.in)

	require.NoError(t, s.Run(context.Background()))
	m := <-sets.Channel()
	assert.Equal(t, types.ColorSet{Model: types.ModelHSV, Values: [3]uint32{120, 50, 50}}, m.Payload)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _, _ := newConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
