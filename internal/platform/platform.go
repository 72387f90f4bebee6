// Package platform supplies the GPIO and SPI resources a board program binds
// a synthesizer to. Host builds get inert fakes and a bus sniffer; RP2
// builds map GP numbers onto machine pins.
package platform

import "tinygo.org/x/drivers"

// Pin is an output-capable GPIO.
type Pin interface {
	Number() int
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// PinFactory resolves logical pin numbers.
type PinFactory interface {
	ByNumber(n int) (Pin, bool)
}

// SPIFactory resolves SPI buses by id ("spi0", "spi1").
type SPIFactory interface {
	ByID(id string) (drivers.SPI, bool)
}

// Edge is a level transition seen on a pin.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

func edgeFrom(old, new bool) Edge {
	switch {
	case !old && new:
		return EdgeRising
	case old && !new:
		return EdgeFalling
	default:
		return EdgeNone
	}
}
