//go:build !rp2040 && !rp2350

package platform

import (
	"strings"
	"sync"
)

// Frame is what was shifted between two rising edges of the load line, in
// wire order.
type Frame struct {
	Bits []bool
}

func (f Frame) Len() int { return len(f.Bits) }

// MSB reads the frame with the first bit on the wire as the most significant.
func (f Frame) MSB() uint64 {
	var v uint64
	for _, b := range f.Bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// LSB reads the frame with the first bit on the wire as bit 0.
func (f Frame) LSB() uint64 {
	var v uint64
	for i, b := range f.Bits {
		if b && i < 64 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Slice returns bits [i, j) as a new frame.
func (f Frame) Slice(i, j int) Frame {
	return Frame{Bits: append([]bool(nil), f.Bits[i:j]...)}
}

// String renders the bits in groups of four, sixteen to a line.
func (f Frame) String() string {
	var sb strings.Builder
	for i, b := range f.Bits {
		if i > 0 {
			switch {
			case i%16 == 0:
				sb.WriteByte('\n')
			case i%4 == 0:
				sb.WriteByte(' ')
			}
		}
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Sniffer owns the three fake lines of a 3-wire serial bus and decodes
// what a driver puts on them: data is sampled on every rising clock edge,
// and a rising load edge commits the bits shifted so far as one Frame.
type Sniffer struct {
	mu     sync.Mutex
	data   *FakePin
	clock  *FakePin
	load   *FakePin
	cur    []bool
	frames []Frame
	pulses int
}

// NewSniffer returns a sniffer whose pins report the given numbers.
func NewSniffer(dataN, clockN, loadN int) *Sniffer {
	s := &Sniffer{
		data:  &FakePin{number: dataN},
		clock: &FakePin{number: clockN},
		load:  &FakePin{number: loadN},
	}
	s.clock.onEdge = s.onClock
	s.load.onEdge = s.onLoad
	return s
}

func (s *Sniffer) Data() *FakePin  { return s.data }
func (s *Sniffer) Clock() *FakePin { return s.clock }
func (s *Sniffer) Load() *FakePin  { return s.load }

// ByNumber resolves the sniffer's own lines by pin number, so a Sniffer can
// stand in for a PinFactory.
func (s *Sniffer) ByNumber(n int) (Pin, bool) {
	for _, p := range []*FakePin{s.data, s.clock, s.load} {
		if p.number == n {
			return p, true
		}
	}
	return nil, false
}

func (s *Sniffer) onClock(e Edge) {
	if e != EdgeRising {
		return
	}
	bit := s.data.Get()
	s.mu.Lock()
	s.cur = append(s.cur, bit)
	s.pulses++
	s.mu.Unlock()
}

func (s *Sniffer) onLoad(e Edge) {
	if e != EdgeRising {
		return
	}
	s.mu.Lock()
	s.frames = append(s.frames, Frame{Bits: s.cur})
	s.cur = nil
	s.mu.Unlock()
}

// Frames returns the committed frames in order.
func (s *Sniffer) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Pending returns bits shifted since the last commit.
func (s *Sniffer) Pending() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.cur...)
}

// Pulses counts rising clock edges since creation or the last Reset.
func (s *Sniffer) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}

// Reset forgets decoded traffic. Line levels are kept.
func (s *Sniffer) Reset() {
	s.mu.Lock()
	s.cur = nil
	s.frames = nil
	s.pulses = 0
	s.mu.Unlock()
}
