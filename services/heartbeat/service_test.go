package heartbeat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"indicator-go/bus"
	"indicator-go/types"
)

type fakeStatus struct {
	mu     sync.Mutex
	levels []uint8
}

func (f *fakeStatus) SetStatus(l uint8) {
	f.mu.Lock()
	f.levels = append(f.levels, l)
	f.mu.Unlock()
}

func (f *fakeStatus) last() (uint8, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.levels) == 0 {
		return 0, 0
	}
	return f.levels[len(f.levels)-1], len(f.levels)
}

func TestPatternFollowsMode(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	out := &fakeStatus{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = New(out, WithPeriod(time.Millisecond)).Start(ctx, conn)

	// Idle: dark.
	assert.Eventually(t, func() bool { l, n := out.last(); return n > 3 && l == 0 }, time.Second, time.Millisecond)

	conn.Publish(conn.NewMessage(topicColorState, types.ColorState{Mode: "brightness"}, true))
	assert.Eventually(t, func() bool { l, _ := out.last(); return l == 255 }, time.Second, time.Millisecond)

	conn.Publish(conn.NewMessage(topicColorState, types.ColorState{Mode: "hue"}, true))
	assert.Eventually(t, func() bool {
		out.mu.Lock()
		defer out.mu.Unlock()
		n := len(out.levels)
		if n < 2 {
			return false
		}
		a, b := out.levels[n-2], out.levels[n-1]
		return b == uint8((uint32(a)+3)%255)
	}, time.Second, time.Millisecond)
}

func TestRefreshConfigChangesPeriod(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	out := &fakeStatus{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = New(out, WithPeriod(time.Hour)).Start(ctx, conn)

	time.Sleep(20 * time.Millisecond)
	_, n := out.last()
	assert.Zero(t, n)

	conn.Publish(conn.NewMessage(topicConfigRefresh, uint32(1), true))
	assert.Eventually(t, func() bool { _, n := out.last(); return n > 0 }, time.Second, time.Millisecond)
}
