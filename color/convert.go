package color

import "indicator-go/x/mathx"

const (
	HueRange = 360 // hue is 0..HueRange-1
	Max      = 255 // saturation, brightness and RGB channels
)

// HSB is hue in degrees, saturation and brightness on 0..Max.
type HSB struct {
	H uint32 `yaml:"hue" json:"hue"`
	S uint32 `yaml:"saturation" json:"saturation"`
	B uint32 `yaml:"brightness" json:"brightness"`
}

type RGB struct{ R, G, B uint8 }

// Default is the colour used when nothing has been persisted yet.
var Default = HSB{H: 306, S: Max, B: Max}

// Valid reports whether every component is in range.
func (c HSB) Valid() bool { return c.H < HueRange && c.S <= Max && c.B <= Max }

// RGB converts with integer arithmetic, sector by sector.
func (c HSB) RGB() RGB {
	h := c.H % HueRange
	s := mathx.Min(c.S, Max)
	v := mathx.Min(c.B, Max)

	chroma := mathx.RoundDiv(v*s, Max)
	sector, rem := h/60, h%60
	if sector%2 == 1 {
		rem = 60 - rem
	}
	x := mathx.RoundDiv(chroma*rem, 60)
	m := v - chroma

	var r, g, b uint32
	switch sector {
	case 0:
		r, g, b = chroma, x, 0
	case 1:
		r, g, b = x, chroma, 0
	case 2:
		r, g, b = 0, chroma, x
	case 3:
		r, g, b = 0, x, chroma
	case 4:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return RGB{R: uint8(r + m), G: uint8(g + m), B: uint8(b + m)}
}

// FromRGB converts an 8-bit triple to HSB.
func FromRGB(r, g, b uint8) HSB {
	ri, gi, bi := int(r), int(g), int(b)
	hi := mathx.Max(ri, mathx.Max(gi, bi))
	lo := mathx.Min(ri, mathx.Min(gi, bi))
	delta := hi - lo

	var h int
	switch {
	case delta == 0:
		h = 0
	case hi == ri:
		h = divRound(60*(gi-bi), delta)
	case hi == gi:
		h = divRound(60*(bi-ri), delta) + 120
	default:
		h = divRound(60*(ri-gi), delta) + 240
	}
	if h < 0 {
		h += HueRange
	}

	var s uint32
	if hi > 0 {
		s = mathx.RoundDiv(uint32(delta)*Max, uint32(hi))
	}
	return HSB{H: uint32(h) % HueRange, S: s, B: uint32(hi)}
}

// FromHSV takes hue in degrees (360 wraps to 0) and saturation/value in
// percent; percentages above 100 clamp.
func FromHSV(h, sPct, vPct uint32) HSB {
	return HSB{
		H: h % HueRange,
		S: mathx.MapU32(sPct, 0, 100, 0, Max),
		B: mathx.MapU32(vPct, 0, 100, 0, Max),
	}
}

func divRound(a, b int) int {
	if a < 0 {
		return -((-a + b/2) / b)
	}
	return (a + b/2) / b
}
