package dds

import (
	"time"

	"tinygo.org/x/drivers"

	"ddsgen-go/errcode"
	"ddsgen-go/x/mathx"
)

// BitOrder selects which end of a frame is shifted first.
type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

// transmitter shifts frames onto the serial bus. The load line frames and
// commits them; a rising load edge latches what has been shifted.
type transmitter interface {
	sendFrame(word uint64, n uint8, order BitOrder) error
	setLoad(level bool)
}

// ---------------- Bit-banged 3-wire bus ----------------

type bitBanger struct {
	data, clock, load Pin

	settle time.Duration // held after every clock pulse; 0 = none
	sleep  func(time.Duration)
}

// configure sets up all three lines as outputs. Load idles at loadIdle,
// clock and data idle low.
func (b *bitBanger) configure(loadIdle bool) error {
	if err := b.load.ConfigureOutput(loadIdle); err != nil {
		return errcode.Wrap(errcode.BusError, "configure load", err)
	}
	if err := b.clock.ConfigureOutput(false); err != nil {
		return errcode.Wrap(errcode.BusError, "configure clock", err)
	}
	if err := b.data.ConfigureOutput(false); err != nil {
		return errcode.Wrap(errcode.BusError, "configure data", err)
	}
	return nil
}

// sendBit puts v on the data line and clocks it in.
func (b *bitBanger) sendBit(v bool) {
	b.data.Set(v)
	b.pulse()
	if b.settle > 0 {
		b.sleep(b.settle)
	}
}

// pulse strobes the clock high then low without touching data.
func (b *bitBanger) pulse() {
	b.clock.Set(true)
	b.clock.Set(false)
}

// shift clocks out the low n bits of word. GPIO writes cannot fail.
func (b *bitBanger) shift(word uint64, n uint8, order BitOrder) {
	for k := uint(0); k < uint(n); k++ {
		i := k
		if order == MSBFirst {
			i = uint(n) - 1 - k
		}
		b.sendBit(mathx.Bit(word, i))
	}
}

func (b *bitBanger) sendFrame(word uint64, n uint8, order BitOrder) error {
	b.shift(word, n, order)
	return nil
}

func (b *bitBanger) setLoad(level bool) { b.load.Set(level) }

// ---------------- Hardware SPI ----------------

// spiBus shifts byte-aligned, MSB-first frames through an SPI peripheral,
// with a GPIO as the frame/load line.
type spiBus struct {
	bus  drivers.SPI
	load Pin
	buf  [8]byte
}

func (s *spiBus) sendFrame(word uint64, n uint8, order BitOrder) error {
	if order != MSBFirst || n == 0 || n%8 != 0 || n > 64 {
		return &errcode.E{C: errcode.UnsupportedBus, Op: "spi frame", Msg: "frames must be whole bytes, MSB first"}
	}
	nb := int(n / 8)
	for i := 0; i < nb; i++ {
		s.buf[i] = byte(word >> (8 * uint(nb-1-i)))
	}
	return errcode.Wrap(errcode.BusError, "spi tx", s.bus.Tx(s.buf[:nb], nil))
}

func (s *spiBus) setLoad(level bool) { s.load.Set(level) }
