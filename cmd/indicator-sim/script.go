//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"indicator-go/errcode"
)

// Click timing used by the click and double steps: long enough to clear the
// default debounce, short enough that two clicks fit the double-click window.
const (
	clickHold = 80 * time.Millisecond
	clickGap  = 120 * time.Millisecond
)

type stepKind uint8

const (
	stepPress stepKind = iota
	stepRelease
	stepWait
	stepCommand
)

type step struct {
	kind stepKind
	d    time.Duration
	line string
}

// parseScript turns a whitespace separated script into steps:
//
//	press | release      raw button edges
//	click                press, hold 80ms, release, pause 120ms
//	double               two clicks
//	hold=<ms>            press, wait, release
//	wait=<ms>            pause
//	'cmd=<console line>' run a console command
func parseScript(src string) ([]step, error) {
	words, err := shlex.Split(src)
	if err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "script", Err: err}
	}
	var steps []step
	click := []step{{kind: stepPress}, {kind: stepWait, d: clickHold}, {kind: stepRelease}, {kind: stepWait, d: clickGap}}
	for _, w := range words {
		key, val, hasVal := strings.Cut(w, "=")
		key = strings.ToLower(key)
		switch key {
		case "press":
			steps = append(steps, step{kind: stepPress})
		case "release":
			steps = append(steps, step{kind: stepRelease})
		case "click":
			steps = append(steps, click...)
		case "double":
			steps = append(steps, click...)
			steps = append(steps, click...)
		case "hold", "wait":
			if !hasVal {
				return nil, badStep(w, "missing duration")
			}
			ms, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, badStep(w, "duration must be milliseconds")
			}
			d := time.Duration(ms) * time.Millisecond
			if key == "wait" {
				steps = append(steps, step{kind: stepWait, d: d})
				continue
			}
			steps = append(steps, step{kind: stepPress}, step{kind: stepWait, d: d}, step{kind: stepRelease})
		case "cmd":
			if strings.TrimSpace(val) == "" {
				return nil, badStep(w, "empty command")
			}
			steps = append(steps, step{kind: stepCommand, line: val})
		default:
			return nil, badStep(w, "unknown step")
		}
	}
	return steps, nil
}

func badStep(word, msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "script", Msg: fmt.Sprintf("%q: %s", word, msg)}
}

type actuator interface {
	press()
	release()
	exec(line string) string
}

// runScript plays steps against a, printing console responses to w.
func runScript(ctx context.Context, a actuator, steps []step, sleep func(context.Context, time.Duration) error, w io.Writer) error {
	for _, st := range steps {
		switch st.kind {
		case stepPress:
			a.press()
		case stepRelease:
			a.release()
		case stepWait:
			if err := sleep(ctx, st.d); err != nil {
				return err
			}
		case stepCommand:
			fmt.Fprintf(w, "> %s%s", st.line, a.exec(st.line))
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
