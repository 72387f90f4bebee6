package dds

import "time"

const (
	// Phase accumulator widths.
	bitsAD985x = 32
	bitsAD9834 = 28

	// --- AD9850/AD9851: 40-bit serial load, W0 first ---
	//
	// W0..W31 tuning word (LSB first), W32..W39 control byte.
	streamWordBits = 32
	streamCtrlBits = 8

	ctrlMultiplier = 0x01 // W32: AD9851 6x REFCLK multiplier enable (AD9850: factory test bit, keep 0)

	// Serial-mode entry: 32 zero clocks flush the input register, then the
	// mode byte is shifted MSB first.
	serialFlushPulses = 32
	serialModeByte    = 0x01
	serialEntryWait   = 2 * time.Millisecond // before the flush and after every flush clock

	// --- AD9834: 16-bit words, DB15 first ---
	frameBits = 16

	// Control register (DB15..DB14 = 00).
	ctrlB28   = 0x2000 // DB13: 28-bit word loaded in two consecutive writes, 14 LSBs first
	ctrlReset = 0x0100 // DB8: internal registers reset, output at midscale
	ctrlMode  = 0x0002 // DB1: triangle output (needs OPBITEN = 0)

	// Register select prefixes.
	regFreq0  = 0x4000 // DB15..DB14 = 01
	regFreq1  = 0x8000 // DB15..DB14 = 10
	regPhase0 = 0xC000 // DB15..DB13 = 110
	regPhase1 = 0xE000 // DB15..DB13 = 111

	freqHalfBits = 14 // FREQx payload per write

	// Power-on frequency presets: 100 Hz and 200 Hz at a 25 MHz MCLK.
	freq0Preset = 0x0431
	freq1Preset = 0x0863

	// The AD9834 samples SDATA on the falling SCLK edge; bit-banged clocks
	// are held for this long after each pulse.
	bitSettleAD9834 = 1 * time.Millisecond
)

// ad9834InitFrames is the power-on register load: reset to midscale, both
// frequency registers preset, both phase registers zeroed, sine output.
var ad9834InitFrames = [...]uint16{
	ctrlB28 | ctrlReset,
	regFreq0 | freq0Preset, // 14 LSBs
	regFreq0,               // 14 MSBs
	regFreq1 | freq1Preset,
	regFreq1,
	regPhase0,
	regPhase1,
	ctrlB28,
}
