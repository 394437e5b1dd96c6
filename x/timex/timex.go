package timex

import "time"

// Tick is the unit every timer in the firmware counts in.
const Tick = time.Millisecond

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ticks converts d to whole ticks, rounding up so a non-zero duration
// never becomes a zero-length timer.
func Ticks(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32((d + Tick - 1) / Tick)
}

// Duration converts a tick count back to a time.Duration.
func Duration(ticks uint32) time.Duration { return time.Duration(ticks) * Tick }
