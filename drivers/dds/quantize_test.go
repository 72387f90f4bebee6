package dds

import (
	"math"
	"testing"
)

func TestQuantize_ExactPowerOfTwo(t *testing.T) {
	for _, clk := range []uint32{125_000_000, 180_000_000, 100_000_000} {
		if got := Quantize(clk/4, clk, 0, 32); got != 1<<30 {
			t.Fatalf("Quantize(clk/4, %d, 0, 32)=%d want %d", clk, got, 1<<30)
		}
		if got := Quantize(clk/4, clk, 0, 28); got != 1<<26 {
			t.Fatalf("Quantize(clk/4, %d, 0, 28)=%d want %d", clk, got, 1<<26)
		}
	}
}

func TestQuantize_KnownWords(t *testing.T) {
	tests := []struct {
		name        string
		freq, clock uint32
		cal         float64
		bits        uint8
		want        uint32
	}{
		{"ad9850 10MHz", 10_000_000, 125_000_000, 0, 32, 0x147AE147},
		{"ad9834 1MHz", 1_000_000, 25_000_000, 0, 28, 0x00A3D70A},
		{"ad9834 preset 100Hz", 100, 25_000_000, 0, 28, 0x0431},
		{"ad9834 preset 200Hz", 200, 25_000_000, 0, 28, 0x0863},
		{"zero", 0, 125_000_000, 0, 32, 0},
		{"truncates toward zero", 1, 3, 0, 32, 1431655765},
	}
	for _, tc := range tests {
		if got := Quantize(tc.freq, tc.clock, tc.cal, tc.bits); got != tc.want {
			t.Fatalf("%s: Quantize=%#x want %#x", tc.name, got, tc.want)
		}
	}
}

func TestQuantize_MonotonicInFrequency(t *testing.T) {
	const clk = 125_000_000
	for _, cal := range []float64{0, 0.00005, -0.001} {
		prev := uint32(0)
		for f := uint32(0); f < clk/2; f += 99_991 {
			w := Quantize(f, clk, cal, 32)
			if w < prev {
				t.Fatalf("cal=%g: word decreased at f=%d: %d < %d", cal, f, w, prev)
			}
			prev = w
		}
	}
}

func TestQuantize_CalibrationRaisesWord(t *testing.T) {
	const clk = 125_000_000
	for _, f := range []uint32{1_000, 7_000_000, 14_070_000, 40_000_000} {
		base := Quantize(f, clk, 0, 32)
		for _, cal := range []float64{0.00005, 0.001, 0.1} {
			if got := Quantize(f, clk, cal, 32); got <= base {
				t.Fatalf("f=%d cal=%g: word %d not above uncalibrated %d", f, cal, got, base)
			}
		}
	}
}

func TestQuantize_WidthBound(t *testing.T) {
	const clk = 25_000_000
	for f := uint32(0); f < clk; f += 123_457 {
		if w := Quantize(f, clk, 0, 28); w >= 1<<28 {
			t.Fatalf("28-bit word out of range at f=%d: %#x", f, w)
		}
	}
	// At or above the clock the word wraps like an unsigned cast.
	if got := Quantize(clk, clk, 0, 28); got != 0 {
		t.Fatalf("Quantize(clk)=%#x want wrap to 0", got)
	}
	if got := Quantize(clk+clk/4, clk, 0, 28); got != 1<<26 {
		t.Fatalf("Quantize(1.25*clk)=%#x want %#x", got, 1<<26)
	}
}

func TestQuantize_WrapsBeyondUint64(t *testing.T) {
	// 4e9 Hz on a 0.75 Hz effective clock is about 2^64.3 before wrapping.
	// The ratio is 5333333333.33, so the wrapped word is near 2^32/3.
	got := Quantize(4_000_000_000, 3, 0.75, 32)
	const want = 0x55555555
	d := int64(got) - want
	if d < 0 {
		d = -d
	}
	if d > 1<<13 {
		t.Fatalf("Quantize=%#x want within 2^13 of %#x", got, want)
	}
	if got := Quantize(4_000_000_000, 3, 0.75, 28); got >= 1<<28 {
		t.Fatalf("28-bit word out of range: %#x", got)
	}
}

func TestOutputHz_InvertsQuantize(t *testing.T) {
	const clk = 180_000_000
	const cal = 0.00005
	for _, f := range []uint32{1_838_100, 7_040_100, 14_097_100, 28_126_100} {
		w := Quantize(f, clk, cal, 32)
		out := OutputHz(w, clk, cal, 32)
		step := Resolution(clk, cal, 32)
		if out > float64(f)+1e-6 || float64(f)-out >= step {
			t.Fatalf("f=%d: output %.6f not within one step (%.6f) below", f, out, step)
		}
	}
	if got, want := Resolution(125_000_000, 0, 32), 125e6/math.Exp2(32); got != want {
		t.Fatalf("Resolution=%g want %g", got, want)
	}
}
