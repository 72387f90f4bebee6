package dds

import (
	"github.com/rs/zerolog"

	"ddsgen-go/x/mathx"
)

// ad9834 drives the AD9834: 16-bit MSB-first words, each framed by FSYNC
// low and latched when FSYNC returns high.
type ad9834 struct {
	tx  transmitter
	log *zerolog.Logger
}

func (v *ad9834) width() uint8 { return bitsAD9834 }

func (v *ad9834) initialize(_ options) error {
	return v.send(ad9834InitFrames[:]...)
}

// program loads FREQ0 with the 28-bit word in two writes (14 LSBs, then 14
// MSBs), zeroes PHASE0 and releases reset.
func (v *ad9834) program(word uint32, o options) error {
	ctrl := uint16(ctrlB28 | ctrlReset)
	if o.waveform == Triangle {
		ctrl |= ctrlMode
	}
	return v.send(
		ctrl,
		regFreq0|uint16(mathx.Truncate(word, freqHalfBits)),
		regFreq0|uint16(mathx.Truncate(word>>freqHalfBits, freqHalfBits)),
		regPhase0,
		ctrlB28,
	)
}

// send writes each frame in its own FSYNC window. It stops at the first
// bus error; FSYNC is always returned high.
func (v *ad9834) send(frames ...uint16) error {
	for _, f := range frames {
		v.tx.setLoad(false)
		err := v.tx.sendFrame(uint64(f), frameBits, MSBFirst)
		v.tx.setLoad(true)
		if err != nil {
			v.log.Error().Err(err).Uint16("frame", f).Msg("frame not sent")
			return err
		}
		v.log.Debug().Uint16("frame", f).Msg("frame")
	}
	return nil
}
