package dds

import "math"

// Quantize returns the tuning word for freqHz on a phase accumulator of the
// given width running from clockHz trimmed by calibration:
//
//	word = trunc(freqHz * 2^bits / (clockHz - clockHz*calibration))
//
// The result is truncated toward zero and wrapped to bits, the same as an
// unsigned cast to that width. Frequencies at or above the effective clock
// wrap silently.
//
// Precondition: calibration < 1.0. At or above 1.0 the effective clock is
// not positive and the result is undefined. bits is 28 or 32.
func Quantize(freqHz, clockHz uint32, calibration float64, bits uint8) uint32 {
	w := math.Trunc(math.Ldexp(float64(freqHz), int(bits)) / effectiveClock(clockHz, calibration))
	return uint32(math.Mod(w, math.Ldexp(1, int(bits))))
}

// OutputHz is the inverse of Quantize: the frequency a chip produces for word.
func OutputHz(word, clockHz uint32, calibration float64, bits uint8) float64 {
	return math.Ldexp(float64(word)*effectiveClock(clockHz, calibration), -int(bits))
}

// Resolution is the output frequency step of one tuning word LSB.
func Resolution(clockHz uint32, calibration float64, bits uint8) float64 {
	return OutputHz(1, clockHz, calibration, bits)
}

func effectiveClock(clockHz uint32, calibration float64) float64 {
	clk := float64(clockHz)
	return clk - clk*calibration
}
