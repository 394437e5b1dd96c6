package types

// ------------------------
// Colour
// ------------------------

// ColorState is the retained snapshot on color/state.
type ColorState struct {
	Hue        uint32 `json:"hue"`        // 0..359
	Saturation uint32 `json:"saturation"` // 0..255
	Brightness uint32 `json:"brightness"` // 0..255
	Mode       string `json:"mode"`
	R          uint8  `json:"r"`
	G          uint8  `json:"g"`
	B          uint8  `json:"b"`
	TS         int64  `json:"ts_ms"`
}

type ColorModel string

const (
	ModelRGB ColorModel = "rgb" // values 0..255 each
	ModelHSV ColorModel = "hsv" // hue 0..360, s/v percent 0..100
)

// ColorSet is a command on color/set. Values are range-checked by the
// sender; the receiver clamps.
type ColorSet struct {
	Model  ColorModel `json:"model"`
	Values [3]uint32  `json:"values"`
}

// ------------------------
// Gestures
// ------------------------

type GestureKind string

const (
	GestureSingle GestureKind = "single"
	GestureDouble GestureKind = "double"
	GestureLong   GestureKind = "long"
)

type GestureEvent struct {
	Kind GestureKind `json:"kind"`
	TS   int64       `json:"ts_ms"`
}

// ------------------------
// Store
// ------------------------

type StoreOp string

const (
	StoreRestore StoreOp = "restore" // boot-time ReadLast
	StoreFlush   StoreOp = "flush"   // record written on return to idle
)

// StoreEvent reports the outcome of one store operation. Code is the
// errcode string ("ok" on success).
type StoreEvent struct {
	Op     StoreOp `json:"op"`
	Code   string  `json:"code"`
	Cursor uint32  `json:"cursor"`
	TS     int64   `json:"ts_ms"`
}

// StoreStats answers a request on store/stats/get.
type StoreStats struct {
	Writes      uint32 `json:"writes"`
	Erases      uint32 `json:"erases"`
	Recoveries  uint32 `json:"recoveries"`
	Failures    uint32 `json:"failures"`
	Cursor      uint32 `json:"cursor"`
	EraseNeeded bool   `json:"erase_needed"`
}
