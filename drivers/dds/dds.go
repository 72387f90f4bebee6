// Package dds provides a driver for AD9850, AD9851 and AD9834 direct digital
// synthesizers on a 3-wire write-only serial bus (data, clock, load).
//
//	d, err := dds.New(dds.Config{Chip: dds.AD9851, Data: data, Clock: clk, Load: fqud, ClockHz: 180_000_000})
//	d.SetClockMultiplier(true)
//	d.Calibrate(0.00005)
//	d.Initialize()
//	d.SetFrequency(7_000_000)
//
// Design notes (datasheet references):
// • AD9850/51: 32-bit accumulator; serial load is 40 bits, W0 first (tuning
// word LSB first, then a control byte), latched by one FQ_UD pulse.
// • AD9834: 28-bit accumulator; 16-bit words DB15 first framed by FSYNC; the
// frequency register takes two writes of 14 bits each.
// • The bus has no readback. Nothing the chip does is reported, so the only
// errors are construction errors and hardware SPI failures.
// • Tuning words are truncated toward zero and wrap at the accumulator width.
package dds

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"tinygo.org/x/drivers"

	"ddsgen-go/errcode"
	"ddsgen-go/x/ramp"
)

// ---------------- Types and configuration ----------------

type Chip uint8

const (
	ChipUnknown Chip = iota
	AD9850           // 32-bit, 125 MHz class
	AD9851           // 32-bit, optional 6x REFCLK multiplier
	AD9834           // 28-bit, sine/triangle
)

func (c Chip) String() string {
	switch c {
	case AD9850:
		return "ad9850"
	case AD9851:
		return "ad9851"
	case AD9834:
		return "ad9834"
	default:
		return "unknown"
	}
}

// ParseChip maps "ad9850", "ad9851" or "ad9834" (any case) to a Chip.
func ParseChip(s string) (Chip, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ad9850":
		return AD9850, nil
	case "ad9851":
		return AD9851, nil
	case "ad9834":
		return AD9834, nil
	}
	return ChipUnknown, &errcode.E{C: errcode.UnknownChip, Op: "parse chip", Msg: s}
}

// Waveform selects the AD9834 output shape. Other chips ignore it.
type Waveform uint8

const (
	Sine Waveform = iota
	Triangle
)

func (w Waveform) String() string {
	if w == Triangle {
		return "triangle"
	}
	return "sine"
}

// ParseWaveform maps "sine" or "triangle" (any case) to a Waveform.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sine":
		return Sine, nil
	case "triangle":
		return Triangle, nil
	}
	return Sine, &errcode.E{C: errcode.InvalidParams, Op: "parse waveform", Msg: s}
}

// Pin is a digital output line.
type Pin interface {
	ConfigureOutput(initial bool) error
	Set(level bool)
}

// Config is fixed for the lifetime of a Device.
type Config struct {
	Chip Chip

	// Bus lines. NewSPI only uses Load (FSYNC).
	Data, Clock, Load Pin

	// ClockHz is the reference clock seen by the phase accumulator, after
	// any on-chip multiplier (an AD9851 on 30 MHz with 6x enabled is 180 MHz).
	ClockHz uint32

	// Sleep blocks for d. Defaults to time.Sleep.
	Sleep func(d time.Duration)

	// Logger receives debug traces of tuning words and frames. Nil disables logging.
	Logger *zerolog.Logger
}

// options are consumed lazily by the next register load.
type options struct {
	multiplier bool
	waveform   Waveform
}

// variant sequences register loads for one chip family.
type variant interface {
	width() uint8
	initialize(o options) error
	program(word uint32, o options) error
}

// Device owns one chip and its bus lines.
type Device struct {
	mu sync.Mutex

	chip    Chip
	clockHz uint32
	cal     float64
	opts    options
	ready   bool

	v     variant
	sleep func(time.Duration)
	log   *zerolog.Logger
}

// New binds a Device to three bit-banged lines and configures them as
// outputs: load idles high for the AD9834 (FSYNC) and low otherwise; clock
// and data idle low. The chip itself is not touched until Initialize.
func New(cfg Config) (*Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Data == nil || cfg.Clock == nil || cfg.Load == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "new", Msg: "data, clock and load pins are required"}
	}
	d := newDevice(cfg)
	bb := &bitBanger{data: cfg.Data, clock: cfg.Clock, load: cfg.Load, sleep: d.sleep}

	switch cfg.Chip {
	case AD9834:
		bb.settle = bitSettleAD9834
		d.v = &ad9834{tx: bb, log: d.log}
	default:
		d.v = &ad985x{tx: bb, log: d.log, mult: cfg.Chip == AD9851}
	}
	if err := bb.configure(cfg.Chip == AD9834); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI binds an AD9834 to a hardware SPI bus, with cfg.Load as FSYNC.
// The bus must be configured for mode 2 (clock idle high, sample on the
// falling edge). Other chips need W_CLK strobes an SPI peripheral cannot
// produce and are rejected with errcode.UnsupportedBus.
func NewSPI(bus drivers.SPI, cfg Config) (*Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Chip != AD9834 {
		return nil, &errcode.E{C: errcode.UnsupportedBus, Op: "new spi", Msg: cfg.Chip.String()}
	}
	if bus == nil || cfg.Load == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "new spi", Msg: "spi bus and load pin are required"}
	}
	d := newDevice(cfg)
	d.v = &ad9834{tx: &spiBus{bus: bus, load: cfg.Load}, log: d.log}
	if err := cfg.Load.ConfigureOutput(true); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "configure load", err)
	}
	return d, nil
}

func (cfg *Config) validate() error {
	switch cfg.Chip {
	case AD9850, AD9851, AD9834:
	default:
		return &errcode.E{C: errcode.UnknownChip, Op: "new", Msg: cfg.Chip.String()}
	}
	if cfg.ClockHz == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "new", Msg: "reference clock must be > 0"}
	}
	return nil
}

func newDevice(cfg Config) *Device {
	d := &Device{
		chip:    cfg.Chip,
		clockHz: cfg.ClockHz,
		sleep:   cfg.Sleep,
		log:     cfg.Logger,
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if d.log == nil {
		nop := zerolog.Nop()
		d.log = &nop
	}
	l := d.log.With().Str("chip", cfg.Chip.String()).Logger()
	d.log = &l
	return d
}

// ---------------- Accessors ----------------

func (d *Device) Chip() Chip      { return d.chip }
func (d *Device) ClockHz() uint32 { return d.clockHz }

// Bits is the phase accumulator width: 32 or 28.
func (d *Device) Bits() uint8 { return d.v.width() }

func (d *Device) Calibration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// Initialized reports whether Initialize has run.
func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// ---------------- Options ----------------

// Calibrate sets the reference clock trim used by later frequency requests:
// the effective clock is ClockHz*(1-offset). offset must be < 1.0; this is
// not checked.
func (d *Device) Calibrate(offset float64) {
	d.mu.Lock()
	d.cal = offset
	d.mu.Unlock()
}

// SetClockMultiplier enables the AD9851 6x REFCLK multiplier from the next
// SetFrequency. Ignored by other chips.
func (d *Device) SetClockMultiplier(on bool) {
	d.mu.Lock()
	d.opts.multiplier = on
	d.mu.Unlock()
}

// SetWaveform selects the AD9834 output shape from the next SetFrequency.
// Ignored by other chips.
func (d *Device) SetWaveform(w Waveform) {
	d.mu.Lock()
	d.opts.waveform = w
	d.mu.Unlock()
}

// ---------------- Programming ----------------

// Initialize runs the chip's fixed power-on register sequence. Calling it
// again replays the same sequence.
func (d *Device) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.v.initialize(d.opts); err != nil {
		return err
	}
	d.ready = true
	return nil
}

// TuningWord returns the word SetFrequency would send for freqHz.
func (d *Device) TuningWord(freqHz uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tuningWord(freqHz)
}

func (d *Device) tuningWord(freqHz uint32) uint32 {
	return Quantize(freqHz, d.clockHz, d.cal, d.v.width())
}

// SetFrequency quantizes freqHz and loads it. The output changes when the
// final frame is latched; nothing confirms it. Bit-banged buses never fail;
// an SPI bus may return a BusError.
func (d *Device) SetFrequency(freqHz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		d.log.Warn().Uint32("freq_hz", freqHz).Msg("set frequency before initialize")
	}
	w := d.tuningWord(freqHz)
	d.log.Debug().
		Uint32("freq_hz", freqHz).
		Uint32("clock_hz", d.clockHz).
		Float64("calibration", d.cal).
		Uint32("word", w).
		Msg("tuning word")
	return d.v.program(w, d.opts)
}

// Sweep programs from, then steps evenly to 'to' in 'steps' increments,
// calling tick(dwell) before each step. A nil tick sleeps for dwell. It
// reports whether 'to' was reached; a tick returning false or a bus error
// stops the sweep between frequencies, never inside one.
func (d *Device) Sweep(from, to, steps uint32, dwell time.Duration, tick ramp.Tick) (bool, error) {
	if tick == nil {
		tick = func(dw time.Duration) bool { d.sleep(dw); return true }
	}
	var err error
	done := ramp.Linear(from, to, steps, dwell,
		func(dw time.Duration) bool { return err == nil && tick(dw) },
		func(hz uint32) {
			if err == nil {
				err = d.SetFrequency(hz)
			}
		})
	return done && err == nil, err
}
