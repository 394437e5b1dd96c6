package gesture

import (
	"indicator-go/errcode"
)

// Timings holds the four windows in timer ticks (1 tick = 1 ms).
//
// Releases are not edge-driven: a held long press notices the release on
// its next repeat tick. LongPressRepeat must therefore not exceed Debounce,
// so repeats stop within one debounce interval of the release.
type Timings struct {
	Debounce        uint32 `yaml:"debounce_ms" json:"debounce_ms"`
	DoubleClick     uint32 `yaml:"double_click_ms" json:"double_click_ms"`
	LongPressDelay  uint32 `yaml:"long_press_delay_ms" json:"long_press_delay_ms"`
	LongPressRepeat uint32 `yaml:"long_press_repeat_ms" json:"long_press_repeat_ms"`
}

// DefaultTimings are the firmware defaults. DoubleClick has shipped as both
// 250 and 500; it is a tunable, not a contract.
var DefaultTimings = Timings{
	Debounce:        50,
	DoubleClick:     500,
	LongPressDelay:  1000,
	LongPressRepeat: 30,
}

// Validate checks every window is set, that a press is confirmed before it
// can become a long press, and that the repeat period is no longer than the
// debounce interval.
func (t Timings) Validate() error {
	if t.Debounce == 0 || t.DoubleClick == 0 || t.LongPressDelay == 0 || t.LongPressRepeat == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "gesture.Timings", Msg: "all windows must be non-zero"}
	}
	if t.Debounce >= t.LongPressDelay {
		return &errcode.E{C: errcode.InvalidParams, Op: "gesture.Timings", Msg: "debounce must be shorter than the long press delay"}
	}
	if t.LongPressRepeat > t.Debounce {
		return &errcode.E{C: errcode.InvalidParams, Op: "gesture.Timings", Msg: "long press repeat must not exceed debounce"}
	}
	return nil
}
