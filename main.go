package main

import (
	"time"

	"ddsgen-go/drivers/dds"
	"ddsgen-go/internal/platform"
	"ddsgen-go/x/conv"
)

// ---------- Configuration ----------

const (
	chip        = dds.AD9851
	clockHz     = 180_000_000 // 30 MHz TCXO with the 6x multiplier
	calibration = 0.00005

	// useSPI drives the chip from spi0 with pinLoad as FSYNC. AD9834 only.
	useSPI = false
	spiBus = "spi0"

	pinData  = 8
	pinLoad  = 6
	pinClock = 7

	dwell = 5 * time.Second
)

// WSPR dial frequencies, cycled forever.
var bandPlan = []uint32{
	7_038_600,
	10_138_700,
	14_095_600,
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	pf := platform.DefaultPinFactory()
	pin := func(n int) platform.Pin {
		p, ok := pf.ByNumber(n)
		if !ok {
			panic("no such pin")
		}
		return p
	}

	d, err := newDevice(pin)
	if err != nil {
		println("dds:", err.Error())
		return
	}
	d.SetClockMultiplier(true)
	d.Calibrate(calibration)
	if err := d.Initialize(); err != nil {
		println("dds init:", err.Error())
		return
	}

	tick := time.NewTicker(dwell)
	defer tick.Stop()

	var hex [10]byte
	for i := 0; ; i++ {
		f := bandPlan[i%len(bandPlan)]
		if err := d.SetFrequency(f); err != nil {
			println("dds set:", err.Error())
		}
		println(time.Now().Format("15:04:05"), "tx", f, "word", string(conv.Word(hex[:], d.TuningWord(f), d.Bits())))
		<-tick.C
	}
}

func newDevice(pin func(int) platform.Pin) (*dds.Device, error) {
	cfg := dds.Config{Chip: chip, Load: pin(pinLoad), ClockHz: clockHz}
	if useSPI {
		bus, ok := platform.DefaultSPIFactory().ByID(spiBus)
		if !ok {
			panic("no such spi bus")
		}
		return dds.NewSPI(bus, cfg)
	}
	cfg.Data, cfg.Clock = pin(pinData), pin(pinClock)
	return dds.New(cfg)
}
