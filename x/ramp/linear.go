package ramp

import (
	"time"

	"ddsgen-go/x/mathx"
)

// Step applies the next value of a ramp.
type Step func(v uint32)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear runs a synchronous (caller-driven) integer ramp from 'from' to 'to'
// in 'steps' equal increments. 'from' is applied immediately; tick(dwell) is
// called before every following step. steps==0 snaps to 'to'.
// It reports whether the ramp reached 'to'.
func Linear(from, to, steps uint32, dwell time.Duration, tick Tick, set Step) bool {
	if steps == 0 {
		set(to)
		return true
	}
	set(from)
	for i := uint32(1); i <= steps; i++ {
		if !tick(dwell) {
			return false
		}
		set(mathx.LerpU32(from, to, i, steps))
	}
	return true
}
