package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ddsgen-go/drivers/dds"
	"ddsgen-go/errcode"
	"ddsgen-go/internal/platform"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeProfile(t, `
chip = "ad9851"
clock_hz = 180000000
calibration = 0.00005
clock_multiplier = true
simulate_delays = true

[pins]
load = 5

[[step]]
freq_hz = 7000000
dwell = "2s"

[[step]]
freq_hz = 14070000
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	want := Profile{
		Chip:            dds.AD9851,
		ClockHz:         180_000_000,
		Calibration:     0.00005,
		ClockMultiplier: true,
		Waveform:        dds.Sine,
		SimulateDelays:  true,
		Transport:       TransportGPIO,
		SPIBus:          "spi0",
		Pins:            Pins{Data: 8, Load: 5, Clock: 7},
		Steps: []Step{
			{FreqHz: 7_000_000, Dwell: 2 * time.Second},
			{FreqHz: 14_070_000},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("profile (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFileIsDefault(t *testing.T) {
	p, err := Load(writeProfile(t, ""))
	if err != nil {
		t.Fatalf("load empty profile: %v", err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Fatalf("empty profile differs from default:\n%s", diff)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    errcode.Code
	}{
		{"syntax", `chip = `, errcode.ConfigError},
		{"unknown key", `chips = "ad9850"`, errcode.ConfigError},
		{"unknown chip", `chip = "ad9910"`, errcode.UnknownChip},
		{"bad waveform", `waveform = "square"`, errcode.InvalidParams},
		{"zero clock", `clock_hz = 0`, errcode.InvalidParams},
		{"clock overflow", `clock_hz = 5000000000`, errcode.InvalidParams},
		{"calibration", `calibration = 1.0`, errcode.InvalidParams},
		{"nan calibration", `calibration = nan`, errcode.InvalidParams},
		{"infinite calibration", `calibration = -inf`, errcode.InvalidParams},
		{"unknown transport", `transport = "i2c"`, errcode.InvalidParams},
		{"spi for ad985x", "chip = \"ad9851\"\ntransport = \"spi\"", errcode.UnsupportedBus},
		{"empty spi id", "chip = \"ad9834\"\ntransport = \"spi\"\nspi = \"\"", errcode.InvalidParams},
		{"shared pin", "[pins]\ndata = 7", errcode.InvalidParams},
		{"negative pin", "[pins]\nclock = -1", errcode.InvalidParams},
		{"zero step", "[[step]]\nfreq_hz = 0", errcode.InvalidParams},
		{"bad dwell", "[[step]]\nfreq_hz = 1000\ndwell = \"soon\"", errcode.InvalidParams},
	}
	for _, tc := range tests {
		_, err := Load(writeProfile(t, tc.content))
		if got := errcode.Of(err); got != tc.want {
			t.Fatalf("%s: code=%q want %q (err=%v)", tc.name, got, tc.want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if errcode.Of(err) != errcode.ConfigError {
		t.Fatalf("missing file err=%v", err)
	}
}

func TestDeviceConfigResolvesPins(t *testing.T) {
	p := Default()
	s := platform.NewSniffer(p.Pins.Data, p.Pins.Clock, p.Pins.Load)
	cfg, err := p.DeviceConfig(s, func(time.Duration) {}, nil)
	if err != nil {
		t.Fatalf("DeviceConfig: %v", err)
	}
	if cfg.Data != dds.Pin(s.Data()) || cfg.Clock != dds.Pin(s.Clock()) || cfg.Load != dds.Pin(s.Load()) {
		t.Fatalf("pins resolved to the wrong lines")
	}
	if cfg.Chip != dds.AD9850 || cfg.ClockHz != 125_000_000 {
		t.Fatalf("chip=%v clock=%d", cfg.Chip, cfg.ClockHz)
	}

	p.Pins.Load = 3
	if _, err := p.DeviceConfig(s, nil, nil); errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("unresolvable pin err=%v", err)
	}
}

func TestApply(t *testing.T) {
	p := Default()
	p.Chip = dds.AD9834
	p.ClockHz = 25_000_000
	p.Calibration = 0.001
	p.Waveform = dds.Triangle

	s := platform.NewSniffer(p.Pins.Data, p.Pins.Clock, p.Pins.Load)
	cfg, err := p.DeviceConfig(s, func(time.Duration) {}, nil)
	if err != nil {
		t.Fatalf("DeviceConfig: %v", err)
	}
	d, err := dds.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Apply(d)
	if d.Calibration() != 0.001 {
		t.Fatalf("calibration not applied")
	}
	_ = d.SetFrequency(1_000_000)
	if got := s.Frames()[0].MSB(); got != 0x2102 {
		t.Fatalf("control frame=%#x want triangle 0x2102", got)
	}
}

func TestOpenSPI(t *testing.T) {
	p, err := Load(writeProfile(t, `
chip = "ad9834"
clock_hz = 25000000
transport = "SPI"
spi = "spi1"
`))
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Transport != TransportSPI || p.SPIBus != "spi1" {
		t.Fatalf("transport=%q spi=%q", p.Transport, p.SPIBus)
	}

	pins := platform.DefaultPinFactory()
	buses := platform.DefaultSPIFactory()
	d, err := p.Open(pins, buses, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.SetFrequency(1_000_000); err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	bus, _ := buses.ByID("spi1")
	want := [][]byte{{0x21, 0x00}, {0x57, 0x0A}, {0x42, 0x8F}, {0xC0, 0x00}, {0x20, 0x00}}
	if diff := cmp.Diff(want, bus.(*platform.HostSPI).Writes()); diff != "" {
		t.Fatalf("spi writes (-want +got):\n%s", diff)
	}
	other, _ := buses.ByID("spi0")
	if n := len(other.(*platform.HostSPI).Writes()); n != 0 {
		t.Fatalf("spi0 saw %d writes", n)
	}

	if _, err := p.Open(pins, nil, nil, nil); errcode.Of(err) != errcode.UnsupportedBus {
		t.Fatalf("Open without spi factory err=%v", err)
	}
	p.SPIBus = "spi7"
	if _, err := p.Open(pins, buses, nil, nil); errcode.Of(err) != errcode.UnsupportedBus {
		t.Fatalf("Open unknown bus err=%v", err)
	}
}

func TestOpenGPIO(t *testing.T) {
	p := Default()
	s := platform.NewSniffer(p.Pins.Data, p.Pins.Clock, p.Pins.Load)
	d, err := p.Open(s, nil, func(time.Duration) {}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = d.SetFrequency(10_000_000)
	if got := s.Frames()[0].Slice(0, 32).LSB(); got != 0x147AE147 {
		t.Fatalf("word=%#x", got)
	}
}
