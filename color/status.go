package color

// Status LED pattern per mode: dark when idle, a slow ramp while editing
// hue, a faster ramp for saturation, solid for brightness.
const (
	statusHueStep = 3
	statusSatStep = 10
)

// NextStatus returns the status LED level following level in mode m.
func NextStatus(m Mode, level uint8) uint8 {
	switch m {
	case Hue:
		return uint8((uint32(level) + statusHueStep) % Max)
	case Saturation:
		return uint8((uint32(level) + statusSatStep) % Max)
	case Brightness:
		return Max
	default:
		return 0
	}
}
