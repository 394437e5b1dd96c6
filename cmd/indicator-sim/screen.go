//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"indicator-go/types"
)

const (
	frameTime  = time.Second / 30
	statsEvery = 15 // frames

	swatchW = 24
	swatchH = 8
)

var (
	styleText  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleDim   = styleText.Foreground(tcell.ColorGray)
	styleTitle = styleText.Bold(true)
)

type screen struct {
	tc  tcell.Screen
	sim *sim

	holding bool
	typing  bool
	input   []rune
	reply   string

	stats    types.StoreStats
	statsErr error
}

// runScreen drives the terminal preview until ctx ends or the user quits.
func runScreen(ctx context.Context, s *sim) error {
	tc, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := tc.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer tc.Fini()
	tc.SetStyle(styleText)
	tc.Clear()

	v := &screen{tc: tc, sim: s}
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		for tc.HasPendingEvent() {
			switch ev := tc.PollEvent().(type) {
			case *tcell.EventKey:
				if v.key(ctx, ev) {
					return nil
				}
			case *tcell.EventResize:
				tc.Sync()
			}
		}
		if frame%statsEvery == 0 {
			v.stats, v.statsErr = s.stats(ctx)
		}
		v.draw()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// key handles one key press and reports whether to quit.
func (v *screen) key(ctx context.Context, ev *tcell.EventKey) bool {
	if v.typing {
		v.edit(ev)
		return false
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}
	switch ev.Rune() {
	case 'q':
		return true
	case ' ':
		v.click(ctx)
	case 'l':
		v.holding = !v.holding
		if v.holding {
			v.sim.press()
		} else {
			v.sim.release()
		}
	case ':':
		v.typing = true
		v.input = v.input[:0]
	}
	return false
}

// click presses now and releases after clickHold, off the UI loop.
func (v *screen) click(ctx context.Context) {
	if v.holding {
		return
	}
	v.sim.press()
	go func() {
		_ = sleepCtx(ctx, clickHold)
		v.sim.release()
	}()
}

func (v *screen) edit(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.typing = false
	case tcell.KeyEnter:
		v.typing = false
		if line := strings.TrimSpace(string(v.input)); line != "" {
			v.reply = strings.TrimSpace(strings.ReplaceAll(v.sim.exec(line), "\r\n", " "))
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(v.input); n > 0 {
			v.input = v.input[:n-1]
		}
	case tcell.KeyRune:
		v.input = append(v.input, ev.Rune())
	}
}

func (v *screen) draw() {
	snap := v.sim.snapshot()
	v.tc.Clear()

	v.text(1, 0, styleTitle, "RGB indicator simulator")

	led := tcell.NewRGBColor(int32(snap.LED.R), int32(snap.LED.G), int32(snap.LED.B))
	v.fill(1, 2, swatchW, swatchH, tcell.StyleDefault.Background(led))

	lvl := int32(snap.Status)
	v.fill(swatchW+3, 2, 4, 2, tcell.StyleDefault.Background(tcell.NewRGBColor(lvl, lvl, lvl)))
	v.text(swatchW+3, 4, styleDim, "status")

	x := swatchW + 10
	st := snap.State
	v.text(x, 2, styleText, fmt.Sprintf("mode        %s", st.Mode))
	v.text(x, 3, styleText, fmt.Sprintf("hue         %d", st.Hue))
	v.text(x, 4, styleText, fmt.Sprintf("saturation  %d", st.Saturation))
	v.text(x, 5, styleText, fmt.Sprintf("brightness  %d", st.Brightness))
	v.text(x, 6, styleText, fmt.Sprintf("led         #%02x%02x%02x  status %3d", snap.LED.R, snap.LED.G, snap.LED.B, snap.Status))
	btn := "released"
	if snap.Pressed {
		btn = "pressed"
	}
	v.text(x, 7, styleText, fmt.Sprintf("button      %s (%s)", btn, snap.Gesture))

	row := swatchH + 3
	if v.statsErr != nil {
		v.text(1, row, styleDim, "store: "+v.statsErr.Error())
	} else {
		s := v.stats
		v.text(1, row, styleDim, fmt.Sprintf("store: cursor %d  writes %d  erases %d  recoveries %d  failures %d  erase-needed %t",
			s.Cursor, s.Writes, s.Erases, s.Recoveries, s.Failures, s.EraseNeeded))
	}

	row += 2
	switch {
	case v.typing:
		v.text(1, row, styleText, ": "+string(v.input)+"_")
	case v.reply != "":
		v.text(1, row, styleText, v.reply)
	}
	v.text(1, row+2, styleDim, "space click   l hold/release   : console command   q quit")
	v.tc.Show()
}

func (v *screen) text(x, y int, style tcell.Style, s string) {
	for i, r := range []rune(s) {
		v.tc.SetContent(x+i, y, r, nil, style)
	}
}

func (v *screen) fill(x, y, w, h int, style tcell.Style) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			v.tc.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}
