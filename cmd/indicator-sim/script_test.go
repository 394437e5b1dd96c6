package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/errcode"
)

func TestParseScript(t *testing.T) {
	steps, err := parseScript("click hold=1200 wait=600 'cmd=RGB 1 2 3'")
	require.NoError(t, err)
	require.Len(t, steps, 4+3+1+1)

	assert.Equal(t, stepPress, steps[0].kind)
	assert.Equal(t, clickHold, steps[1].d)
	assert.Equal(t, stepRelease, steps[2].kind)
	assert.Equal(t, clickGap, steps[3].d)

	assert.Equal(t, step{kind: stepWait, d: 1200 * time.Millisecond}, steps[5])
	assert.Equal(t, step{kind: stepWait, d: 600 * time.Millisecond}, steps[7])
	assert.Equal(t, step{kind: stepCommand, line: "RGB 1 2 3"}, steps[8])
}

func TestParseScriptDoubleIsTwoClicks(t *testing.T) {
	double, err := parseScript("double")
	require.NoError(t, err)
	clicks, err := parseScript("click click")
	require.NoError(t, err)
	assert.Equal(t, clicks, double)
}

func TestParseScriptRejects(t *testing.T) {
	for _, src := range []string{"hold", "wait=abc", "wait=-5", "cmd=", "jump", "'unterminated"} {
		_, err := parseScript(src)
		assert.ErrorIs(t, err, errcode.InvalidParams, src)
	}
}

type recorder struct{ log []string }

func (r *recorder) press()   { r.log = append(r.log, "press") }
func (r *recorder) release() { r.log = append(r.log, "release") }
func (r *recorder) exec(line string) string {
	r.log = append(r.log, "exec "+line)
	return "\r\nok\r\n"
}

func TestRunScript(t *testing.T) {
	steps, err := parseScript("hold=700 'cmd=HSV 10 20 30'")
	require.NoError(t, err)

	var slept []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	var out bytes.Buffer
	rec := &recorder{}
	require.NoError(t, runScript(context.Background(), rec, steps, sleep, &out))

	assert.Equal(t, []string{"press", "release", "exec HSV 10 20 30"}, rec.log)
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, slept)
	assert.True(t, strings.HasPrefix(out.String(), "> HSV 10 20 30\r\nok"))
}

func TestRunScriptStopsOnCancel(t *testing.T) {
	steps, err := parseScript("wait=10000 click")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	err = runScript(ctx, rec, steps, sleepCtx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.log)
}
