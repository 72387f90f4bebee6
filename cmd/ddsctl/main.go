// ddsctl programs a synthesizer profile against a simulated bus and shows
// what the chip would receive.
//
//	ddsctl -config board.toml -freq 7000000 -freq 14070000 -trace
//	ddsctl -config board.toml -sweep 1000000:2000000:10 -dwell 50ms
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"ddsgen-go/drivers/dds"
	"ddsgen-go/errcode"
	"ddsgen-go/internal/config"
	"ddsgen-go/internal/logging"
	"ddsgen-go/internal/platform"
	"ddsgen-go/x/conv"
	"ddsgen-go/x/mathx"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "ddsctl: %v\n", err)
		os.Exit(1)
	}
}

// freqList collects repeated -freq flags.
type freqList []uint32

func (f *freqList) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ",")
}

func (f *freqList) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || v == 0 {
		return fmt.Errorf("frequency %q: want a positive integer in Hz", s)
	}
	*f = append(*f, uint32(v))
	return nil
}

type sweepSpec struct {
	from, to, steps uint32
}

// at is the i-th frequency of the sweep, matching Device.Sweep.
func (sw sweepSpec) at(i uint32) uint32 {
	if sw.steps == 0 {
		return sw.to
	}
	return mathx.LerpU32(sw.from, sw.to, i, sw.steps)
}

// parseSweep reads "from:to:steps".
func parseSweep(s string) (sweepSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return sweepSpec{}, &errcode.E{C: errcode.InvalidParams, Op: "parse sweep", Msg: "want from:to:steps"}
	}
	var v [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return sweepSpec{}, errcode.Wrap(errcode.InvalidParams, "parse sweep", err)
		}
		v[i] = uint32(n)
	}
	return sweepSpec{from: v[0], to: v[1], steps: v[2]}, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ddsctl", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path := fs.String("config", "", "board profile (TOML); defaults to an AD9850 at 125 MHz")
	var freqs freqList
	fs.Var(&freqs, "freq", "frequency in Hz to program (repeatable)")
	sweep := fs.String("sweep", "", "sweep from:to:steps in Hz")
	dwell := fs.Duration("dwell", 100*time.Millisecond, "dwell per sweep step")
	trace := fs.Bool("trace", false, "print every committed bus frame")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return errcode.Wrap(errcode.InvalidParams, "parse flags", err)
	}

	lc := logging.DefaultConfig(*verbose)
	logging.ApplyEnv(&lc, os.Getenv)
	log := logging.New(stderr, "ddsctl", lc)

	prof := config.Default()
	if *path != "" {
		var err error
		if prof, err = config.Load(*path); err != nil {
			return err
		}
	}

	bus := platform.NewSniffer(prof.Pins.Data, prof.Pins.Clock, prof.Pins.Load)
	var elapsed time.Duration
	sleep := func(d time.Duration) { elapsed += d }
	if prof.SimulateDelays {
		sleep = func(d time.Duration) { elapsed += d; time.Sleep(d) }
	}

	// On the SPI transport the sniffer only sees FSYNC; frames are read
	// back from the recording bus instead.
	var buses platform.SPIFactory
	flush := func(label string) { flushLines(stdout, bus, label, *trace) }
	if prof.Transport == config.TransportSPI {
		buses = platform.DefaultSPIFactory()
		if b, ok := buses.ByID(prof.SPIBus); ok {
			if hs, ok := b.(*platform.HostSPI); ok {
				flush = func(label string) {
					bus.Reset()
					flushSPI(stdout, hs, label, *trace)
				}
			}
		}
	}

	dev, err := prof.Open(bus, buses, sleep, &log)
	if err != nil {
		return err
	}
	prof.Apply(dev)

	log.Info().
		Str("chip", prof.Chip.String()).
		Str("transport", string(prof.Transport)).
		Uint32("clock_hz", prof.ClockHz).
		Float64("calibration", prof.Calibration).
		Uint8("bits", dev.Bits()).
		Float64("resolution_hz", dds.Resolution(prof.ClockHz, prof.Calibration, dev.Bits())).
		Msg("device ready")

	if err := dev.Initialize(); err != nil {
		return err
	}
	flush("initialize")

	// report logs what was just programmed and prints its frames.
	report := func(hz uint32) {
		w := dev.TuningWord(hz)
		var hex [10]byte
		out := dds.OutputHz(w, prof.ClockHz, prof.Calibration, dev.Bits())
		log.Info().
			Uint32("freq_hz", hz).
			Bytes("word", conv.Word(hex[:], w, dev.Bits())).
			Float64("output_hz", out).
			Float64("error_hz", out-float64(hz)).
			Msg("programmed")
		flush(fmt.Sprintf("set %d Hz", hz))
	}
	program := func(hz uint32) error {
		if err := dev.SetFrequency(hz); err != nil {
			return err
		}
		report(hz)
		return nil
	}

	switch {
	case *sweep != "":
		sw, err := parseSweep(*sweep)
		if err != nil {
			return err
		}
		// Sweep calls tick after each step has been loaded, so the tick
		// reports step i before waiting.
		i := uint32(0)
		tick := func(d time.Duration) bool {
			report(sw.at(i))
			i++
			sleep(d)
			return true
		}
		done, err := dev.Sweep(sw.from, sw.to, sw.steps, *dwell, tick)
		if err != nil {
			return err
		}
		report(sw.at(i))
		log.Info().Bool("completed", done).Dur("simulated", elapsed).Msg("sweep finished")
	case len(freqs) > 0:
		for _, hz := range freqs {
			if err := program(hz); err != nil {
				return err
			}
		}
	default:
		for _, st := range prof.Steps {
			if err := program(st.FreqHz); err != nil {
				return err
			}
			sleep(st.Dwell)
		}
	}
	log.Debug().Dur("simulated", elapsed).Msg("done")
	return nil
}

// flushLines prints frames committed on the sniffed lines since the last
// call and forgets them.
func flushLines(w io.Writer, bus *platform.Sniffer, label string, trace bool) {
	frames := bus.Frames()
	bus.Reset()
	if !trace {
		return
	}
	fmt.Fprintf(w, "# %s: %d frame(s)\n", label, len(frames))
	for i, f := range frames {
		fmt.Fprintf(w, "[%d] %d bits msb=0x%X lsb=0x%X\n%s\n", i, f.Len(), f.MSB(), f.LSB(), f)
	}
}

// flushSPI is flushLines for the SPI transport: one frame per Tx.
func flushSPI(w io.Writer, bus *platform.HostSPI, label string, trace bool) {
	writes := bus.Writes()
	bus.Reset()
	if !trace {
		return
	}
	fmt.Fprintf(w, "# %s: %d frame(s)\n", label, len(writes))
	for i, b := range writes {
		var v uint64
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		fmt.Fprintf(w, "[%d] %d bits spi msb=0x%X\n", i, 8*len(b), v)
	}
}
