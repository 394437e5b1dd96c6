package mathx

// MapU32 maps x in [inMin,inMax] to [outMin,outMax] with 64-bit intermediates,
// rounding to nearest. Clamps to the out range if x is outside the in range.
func MapU32(x, inMin, inMax, outMin, outMax uint32) uint32 {
	if inMax == inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	num := uint64(x-inMin) * uint64(outMax-outMin)
	den := uint64(inMax - inMin)
	return outMin + uint32(RoundDiv(num, den))
}
