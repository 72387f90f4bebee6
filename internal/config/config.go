// Package config loads a synthesizer board profile from TOML.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"ddsgen-go/drivers/dds"
	"ddsgen-go/errcode"
	"ddsgen-go/internal/platform"
)

// Pins are GPIO numbers of the three bus lines.
type Pins struct {
	Data  int
	Load  int
	Clock int
}

// Transport selects how the chip's serial port is driven.
type Transport string

const (
	TransportGPIO Transport = "gpio" // bit-banged data, clock and load lines
	TransportSPI  Transport = "spi"  // hardware SPI with load as FSYNC (AD9834 only)
)

// Step is one entry of the profile's frequency plan.
type Step struct {
	FreqHz uint32
	Dwell  time.Duration
}

// Profile describes one board: which chip, how it is clocked and wired, and
// an optional frequency plan.
type Profile struct {
	Chip            dds.Chip
	ClockHz         uint32
	Calibration     float64
	ClockMultiplier bool
	Waveform        dds.Waveform
	SimulateDelays  bool
	Transport       Transport
	SPIBus          string
	Pins            Pins
	Steps           []Step
}

// Default is the AD9850 breakout most modules ship as.
func Default() Profile {
	return Profile{
		Chip:      dds.AD9850,
		ClockHz:   125_000_000,
		Waveform:  dds.Sine,
		Transport: TransportGPIO,
		SPIBus:    "spi0",
		Pins:      Pins{Data: 8, Load: 6, Clock: 7},
	}
}

// board.toml key mapping.
type fileConfig struct {
	Chip            string     `toml:"chip"`
	ClockHz         int64      `toml:"clock_hz"`
	Calibration     float64    `toml:"calibration"`
	ClockMultiplier bool       `toml:"clock_multiplier"`
	Waveform        string     `toml:"waveform"`
	SimulateDelays  bool       `toml:"simulate_delays"`
	Transport       string     `toml:"transport"`
	SPI             string     `toml:"spi"`
	Pins            filePins   `toml:"pins"`
	Steps           []fileStep `toml:"step"`
}

type filePins struct {
	Data  int `toml:"data"`
	Load  int `toml:"load"`
	Clock int `toml:"clock"`
}

type fileStep struct {
	FreqHz int64  `toml:"freq_hz"`
	Dwell  string `toml:"dwell"`
}

// Load reads path over Default and validates the result. Keys missing from
// the file keep their default.
func Load(path string) (Profile, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Profile{}, errcode.Wrap(errcode.ConfigError, "load profile", err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Profile{}, &errcode.E{C: errcode.ConfigError, Op: "load profile", Msg: fmt.Sprintf("unknown key %q", undec[0].String())}
	}

	p := Default()
	if meta.IsDefined("chip") {
		if p.Chip, err = dds.ParseChip(raw.Chip); err != nil {
			return Profile{}, err
		}
	}
	if meta.IsDefined("clock_hz") {
		if raw.ClockHz <= 0 || raw.ClockHz > int64(^uint32(0)) {
			return Profile{}, invalid("clock_hz %d out of range", raw.ClockHz)
		}
		p.ClockHz = uint32(raw.ClockHz)
	}
	if meta.IsDefined("calibration") {
		p.Calibration = raw.Calibration
	}
	if meta.IsDefined("clock_multiplier") {
		p.ClockMultiplier = raw.ClockMultiplier
	}
	if meta.IsDefined("waveform") {
		if p.Waveform, err = dds.ParseWaveform(raw.Waveform); err != nil {
			return Profile{}, err
		}
	}
	if meta.IsDefined("simulate_delays") {
		p.SimulateDelays = raw.SimulateDelays
	}
	if meta.IsDefined("transport") {
		p.Transport = Transport(strings.ToLower(strings.TrimSpace(raw.Transport)))
	}
	if meta.IsDefined("spi") {
		p.SPIBus = strings.TrimSpace(raw.SPI)
	}
	if meta.IsDefined("pins", "data") {
		p.Pins.Data = raw.Pins.Data
	}
	if meta.IsDefined("pins", "load") {
		p.Pins.Load = raw.Pins.Load
	}
	if meta.IsDefined("pins", "clock") {
		p.Pins.Clock = raw.Pins.Clock
	}
	for i, s := range raw.Steps {
		if s.FreqHz <= 0 || s.FreqHz > int64(^uint32(0)) {
			return Profile{}, invalid("step %d: freq_hz %d out of range", i, s.FreqHz)
		}
		st := Step{FreqHz: uint32(s.FreqHz)}
		if d := strings.TrimSpace(s.Dwell); d != "" {
			if st.Dwell, err = time.ParseDuration(d); err != nil {
				return Profile{}, invalid("step %d: dwell: %v", i, err)
			}
		}
		p.Steps = append(p.Steps, st)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile as a whole. It is stricter than the driver:
// calibration at or above 1.0 is rejected here rather than left undefined.
func (p Profile) Validate() error {
	switch p.Chip {
	case dds.AD9850, dds.AD9851, dds.AD9834:
	default:
		return &errcode.E{C: errcode.UnknownChip, Op: "validate profile", Msg: p.Chip.String()}
	}
	if p.ClockHz == 0 {
		return invalid("clock_hz must be > 0")
	}
	if math.IsNaN(p.Calibration) || math.IsInf(p.Calibration, 0) {
		return invalid("calibration %g must be finite", p.Calibration)
	}
	if p.Calibration >= 1.0 {
		return invalid("calibration %g must be < 1.0", p.Calibration)
	}
	switch p.Transport {
	case TransportGPIO:
	case TransportSPI:
		if p.Chip != dds.AD9834 {
			return &errcode.E{C: errcode.UnsupportedBus, Op: "validate profile", Msg: p.Chip.String() + " needs transport = \"gpio\""}
		}
		if p.SPIBus == "" {
			return invalid("spi bus id required for transport = \"spi\"")
		}
	default:
		return invalid("unknown transport %q", p.Transport)
	}
	if p.Pins.Data < 0 || p.Pins.Load < 0 || p.Pins.Clock < 0 {
		return invalid("pin numbers must be >= 0")
	}
	if p.Pins.Data == p.Pins.Load || p.Pins.Data == p.Pins.Clock || p.Pins.Load == p.Pins.Clock {
		return invalid("pins must be distinct (data=%d load=%d clock=%d)", p.Pins.Data, p.Pins.Load, p.Pins.Clock)
	}
	for i, s := range p.Steps {
		if s.FreqHz == 0 {
			return invalid("step %d: freq_hz must be > 0", i)
		}
		if s.Dwell < 0 {
			return invalid("step %d: negative dwell", i)
		}
	}
	return nil
}

// DeviceConfig resolves the profile's pins through pf.
func (p Profile) DeviceConfig(pf platform.PinFactory, sleep func(time.Duration), log *zerolog.Logger) (dds.Config, error) {
	resolve := func(name string, n int) (platform.Pin, error) {
		pin, ok := pf.ByNumber(n)
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "resolve pins", Msg: fmt.Sprintf("%s=%d", name, n)}
		}
		return pin, nil
	}
	data, err := resolve("data", p.Pins.Data)
	if err != nil {
		return dds.Config{}, err
	}
	clock, err := resolve("clock", p.Pins.Clock)
	if err != nil {
		return dds.Config{}, err
	}
	load, err := resolve("load", p.Pins.Load)
	if err != nil {
		return dds.Config{}, err
	}
	return dds.Config{
		Chip:    p.Chip,
		Data:    data,
		Clock:   clock,
		Load:    load,
		ClockHz: p.ClockHz,
		Sleep:   sleep,
		Logger:  log,
	}, nil
}

// Open builds the Device for the profile's transport. sf is consulted only
// for transport = "spi" and may be nil otherwise.
func (p Profile) Open(pf platform.PinFactory, sf platform.SPIFactory, sleep func(time.Duration), log *zerolog.Logger) (*dds.Device, error) {
	if p.Transport != TransportSPI {
		cfg, err := p.DeviceConfig(pf, sleep, log)
		if err != nil {
			return nil, err
		}
		return dds.New(cfg)
	}
	load, ok := pf.ByNumber(p.Pins.Load)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "resolve pins", Msg: fmt.Sprintf("load=%d", p.Pins.Load)}
	}
	if sf == nil {
		return nil, &errcode.E{C: errcode.UnsupportedBus, Op: "open spi", Msg: "no spi buses on this platform"}
	}
	bus, ok := sf.ByID(p.SPIBus)
	if !ok {
		return nil, &errcode.E{C: errcode.UnsupportedBus, Op: "open spi", Msg: "unknown bus " + p.SPIBus}
	}
	return dds.NewSPI(bus, dds.Config{
		Chip:    p.Chip,
		Load:    load,
		ClockHz: p.ClockHz,
		Sleep:   sleep,
		Logger:  log,
	})
}

// Apply pushes the profile's per-request options onto d.
func (p Profile) Apply(d *dds.Device) {
	d.Calibrate(p.Calibration)
	d.SetClockMultiplier(p.ClockMultiplier)
	d.SetWaveform(p.Waveform)
}

func invalid(format string, args ...any) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "validate profile", Msg: fmt.Sprintf(format, args...)}
}
