// internal/platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"tinygo.org/x/drivers"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements Pin for host-side runs and tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	sets    int
	onEdge  func(Edge)

	// ConfigureErr, when set, is returned by ConfigureOutput.
	ConfigureErr error
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ConfigureErr != nil {
		return p.ConfigureErr
	}
	p.modeOut = true
	p.level = initial
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	p.sets++
	hook := p.onEdge
	p.mu.Unlock()
	if e := edgeFrom(old, level); e != EdgeNone && hook != nil {
		hook(e)
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// IsOutput reports whether ConfigureOutput has succeeded.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// Sets counts Set calls, including ones that did not change the level.
func (p *FakePin) Sets() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sets
}

func (p *FakePin) Number() int { return p.number }

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (Pin, bool) {
	if n < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests.
func (f *HostPinFactory) Get(n int) (*FakePin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}

// DefaultPinFactory provides a host GPIO factory.
func DefaultPinFactory() PinFactory {
	return &HostPinFactory{pins: make(map[int]*FakePin)}
}

// ----------------------------- SPI (host) ------------------------------------

// HostSPI implements tinygo drivers.SPI and records every write.
type HostSPI struct {
	mu     sync.Mutex
	writes [][]byte

	// Fail, when set, is returned by Tx and Transfer.
	Fail error
}

var _ drivers.SPI = (*HostSPI)(nil)

func (h *HostSPI) Tx(w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Fail != nil {
		return h.Fail
	}
	h.writes = append(h.writes, append([]byte(nil), w...))
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (h *HostSPI) Transfer(b byte) (byte, error) {
	if err := h.Tx([]byte{b}, nil); err != nil {
		return 0, err
	}
	return 0, nil
}

// Writes returns a copy of every buffer written so far.
func (h *HostSPI) Writes() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.writes))
	copy(out, h.writes)
	return out
}

// Reset forgets recorded writes.
func (h *HostSPI) Reset() {
	h.mu.Lock()
	h.writes = nil
	h.mu.Unlock()
}

type hostSPIFactory struct {
	buses map[string]drivers.SPI
}

func (f *hostSPIFactory) ByID(id string) (drivers.SPI, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultSPIFactory creates recording host SPI buses "spi0" and "spi1".
func DefaultSPIFactory() SPIFactory {
	return &hostSPIFactory{
		buses: map[string]drivers.SPI{
			"spi0": &HostSPI{},
			"spi1": &HostSPI{},
		},
	}
}
