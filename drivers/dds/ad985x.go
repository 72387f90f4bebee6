package dds

import "github.com/rs/zerolog"

// ad985x drives the AD9850 and AD9851: one 40-bit LSB-first load per
// frequency, committed by a single FQ_UD pulse.
type ad985x struct {
	tx   *bitBanger
	log  *zerolog.Logger
	mult bool // chip has the 6x REFCLK multiplier (AD9851)
}

func (v *ad985x) width() uint8 { return bitsAD985x }

// initialize enters serial mode on the AD9851. The W_CLK strobe moves the
// strapped D0..D2 bits into the input register and FQ_UD moves them to the
// control register; 32 zero clocks then clear the input register before the
// mode byte. Load is left high.
//
// The AD9850 gets no traffic: its W32..W39 are control and phase bits, and
// the mode byte would latch a non-zero phase until the first SetFrequency.
func (v *ad985x) initialize(_ options) error {
	if !v.mult {
		v.log.Debug().Msg("no serial entry sequence")
		return nil
	}
	tx := v.tx
	tx.pulse()
	tx.setLoad(true)

	tx.sleep(serialEntryWait)
	tx.setLoad(false)
	tx.data.Set(false)
	for i := 0; i < serialFlushPulses; i++ {
		tx.pulse()
		tx.sleep(serialEntryWait)
	}
	tx.shift(serialModeByte, streamCtrlBits, MSBFirst)
	tx.setLoad(true)

	v.log.Debug().Uint8("mode", serialModeByte).Int("flush", serialFlushPulses).Msg("serial mode entered")
	return nil
}

func (v *ad985x) program(word uint32, o options) error {
	ctrl := v.control(o)
	tx := v.tx
	tx.setLoad(false)
	tx.shift(uint64(word), streamWordBits, LSBFirst)
	tx.shift(uint64(ctrl), streamCtrlBits, LSBFirst)
	tx.setLoad(true)
	tx.setLoad(false)

	v.log.Debug().Uint32("word", word).Uint8("control", ctrl).Msg("frame")
	return nil
}

// control builds W32..W39. Only the AD9851 honours the multiplier bit.
func (v *ad985x) control(o options) uint8 {
	var c uint8
	if v.mult && o.multiplier {
		c |= ctrlMultiplier
	}
	return c
}
