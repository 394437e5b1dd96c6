// Package platform declares the hardware collaborators the firmware core runs
// against. Board packages (platform/rp2) and host stand-ins (vclock, timerq,
// memflash) implement them.
package platform

// ---- Timers ----

type TimerMode uint8

const (
	SingleShot TimerMode = iota
	Repeated
)

func (m TimerMode) String() string {
	if m == Repeated {
		return "repeated"
	}
	return "single_shot"
}

// Timer is one handle bound to a callback at creation.
//
// Start (re)arms the timer to fire after ticks; a running timer is restarted.
// Stop is idempotent. Callbacks of all timers created by the same
// TimerService run to completion one after another, never concurrently.
type Timer interface {
	Start(ticks uint32)
	Stop()
}

type TimerService interface {
	NewTimer(mode TimerMode, fn func()) Timer
}

// ---- Button line ----

// Line reports the logical state of the button, polarity already applied.
// Pressed must be safe to call from interrupt context.
type Line interface {
	Pressed() bool
}

// LineFunc adapts a function to Line.
type LineFunc func() bool

func (f LineFunc) Pressed() bool { return f() }

// ---- Flash ----

// WordSize is the flash programming unit in bytes.
const WordSize = 4

// Erased is the value of every word after a page erase.
const Erased uint32 = 0xFFFFFFFF

// FlashRegion is one erasable page, addressed by byte offset from its start.
// Offsets passed to ReadWord and WriteWord are word aligned and < Size().
// A ReadWord error means the word's value is unknown, not that it is erased.
type FlashRegion interface {
	Size() uint32
	ReadWord(off uint32) (uint32, error)
	WriteWord(off uint32, v uint32) error
	ErasePage() error
	// WriteDone reports whether the most recent write or erase has completed.
	WriteDone() bool
}

// ---- Outputs ----

// Output receives the rendered colour and the status LED level.
type Output interface {
	SetRGB(r, g, b uint8)
	SetStatus(level uint8)
}
