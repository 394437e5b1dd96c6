package color

import (
	"indicator-go/errcode"
)

// Mode selects what a long press adjusts. A double click advances it.
type Mode uint8

const (
	Idle Mode = iota
	Hue
	Saturation
	Brightness
	numModes
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Hue:
		return "hue"
	case Saturation:
		return "saturation"
	case Brightness:
		return "brightness"
	default:
		return "unknown"
	}
}

func (m Mode) Next() Mode { return (m + 1) % numModes }

// ParseMode is the inverse of String.
func ParseMode(s string) (Mode, bool) {
	for m := Idle; m < numModes; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Idle, false
}

// Record layout: one word per component.
const (
	RecordWords = 3
	RecordSize  = RecordWords * 4
)

const DefaultStep = 5

// State is the owned colour plus the editing mode. Not safe for concurrent
// use; the indicator run loop is its only writer.
type State struct {
	hsb  HSB
	mode Mode
	step uint32

	satUp bool
	briUp bool
}

func NewState(initial HSB, step uint32) *State {
	if step == 0 {
		step = DefaultStep
	}
	if !initial.Valid() {
		initial = Default
	}
	return &State{hsb: initial, step: step}
}

func (s *State) HSB() HSB     { return s.hsb }
func (s *State) Mode() Mode   { return s.mode }
func (s *State) RGB() RGB     { return s.hsb.RGB() }
func (s *State) Step() uint32 { return s.step }

func (s *State) SetStep(step uint32) {
	if step > 0 {
		s.step = step
	}
}

// Set replaces the colour; out-of-range components are clamped.
func (s *State) Set(c HSB) {
	c.H %= HueRange
	if c.S > Max {
		c.S = Max
	}
	if c.B > Max {
		c.B = Max
	}
	s.hsb = c
}

// Cycle advances the mode and returns the new one.
func (s *State) Cycle() Mode {
	s.mode = s.mode.Next()
	return s.mode
}

// Adjust applies one long-press step to the component selected by the
// mode. Hue wraps; saturation and brightness sweep between 0 and Max and
// reverse at either end. It reports whether the colour changed.
func (s *State) Adjust() bool {
	switch s.mode {
	case Hue:
		s.hsb.H = (s.hsb.H + 1) % HueRange
	case Saturation:
		pingPong(&s.hsb.S, &s.satUp, s.step)
	case Brightness:
		pingPong(&s.hsb.B, &s.briUp, s.step)
	default:
		return false
	}
	return true
}

func pingPong(v *uint32, up *bool, step uint32) {
	if *up {
		if *v+step >= Max {
			*v, *up = Max, false
			return
		}
		*v += step
		return
	}
	if *v <= step {
		*v, *up = 0, true
		return
	}
	*v -= step
}

// Record encodes the colour as the persisted payload.
func (s *State) Record() [RecordWords]uint32 {
	return [RecordWords]uint32{s.hsb.H, s.hsb.S, s.hsb.B}
}

// FromRecord decodes a persisted payload. Out-of-range words mean the
// record was written by something else and are rejected.
func FromRecord(words []uint32) (HSB, error) {
	if len(words) < RecordWords {
		return HSB{}, &errcode.E{C: errcode.InvalidPayload, Op: "color.FromRecord", Msg: "short record"}
	}
	c := HSB{H: words[0], S: words[1], B: words[2]}
	if !c.Valid() {
		return HSB{}, &errcode.E{C: errcode.InvalidPayload, Op: "color.FromRecord", Msg: "component out of range"}
	}
	return c, nil
}

// Settings is the colour section of the device configuration.
type Settings struct {
	Initial HSB    `yaml:"initial" json:"initial"`
	Step    uint32 `yaml:"step" json:"step"`
}

var DefaultSettings = Settings{Initial: Default, Step: DefaultStep}

func (c Settings) Validate() error {
	if !c.Initial.Valid() {
		return &errcode.E{C: errcode.InvalidParams, Op: "color.Settings", Msg: "initial colour out of range"}
	}
	if c.Step == 0 || c.Step > Max {
		return &errcode.E{C: errcode.InvalidParams, Op: "color.Settings", Msg: "step must be 1..255"}
	}
	return nil
}
