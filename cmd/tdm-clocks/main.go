// Command tdm-clocks prints the clock plan for a TDM configuration and
// whether its bit and frame clocks stay phase locked.
//
// Usage:
//
//	tdm-clocks                              # default 48 kHz, 32-bit, 8 slots
//	tdm-clocks -rate 44100 -depth 24
//	tdm-clocks -sweep                       # sync verdict for common formats
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tdm "github.com/tphakala/go-tdm-out"
)

// Formats checked by -sweep.
var (
	sweepRates  = []float64{32000, 44100, 48000, 88200, 96000}
	sweepDepths = []int{16, 24, 32}
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("tdm-clocks", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML configuration file")
	reference := fs.Float64("reference", 0, "Reference clock in Hz (overrides config)")
	rate := fs.Float64("rate", 0, "Frame rate in Hz (overrides config)")
	depth := fs.Int("depth", 0, "Bit depth (overrides config)")
	channels := fs.Int("channels", 0, "Slots per frame (overrides config)")
	mult := fs.Int("mult", 0, "Master clock multiplier (overrides config)")
	sweep := fs.Bool("sweep", false, "Check every common rate and depth")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := tdm.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = tdm.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *reference > 0 {
		cfg.ReferenceHz = *reference
	}
	if *rate > 0 {
		cfg.FrameRateHz = *rate
	}
	if *depth > 0 {
		cfg.BitDepth = *depth
	}
	if *channels > 0 {
		cfg.Channels = *channels
	}
	if *mult > 0 {
		cfg.BitClockMultiplier = *mult
	}

	if *sweep {
		return printSweep(w, cfg)
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}
	printPlan(w, plan)
	return nil
}

func printPlan(w io.Writer, p tdm.Plan) {
	_, _ = fmt.Fprintf(w, "=== Clock Plan (reference %.0f Hz) ===\n\n", p.ReferenceHz)
	_, _ = fmt.Fprintf(w, "Requested frame rate: %.3f Hz\n", p.Request.FrameRateHz)
	_, _ = fmt.Fprintf(w, "Attained frame rate:  %.6f Hz\n\n", p.AttainedRateHz)

	_, _ = fmt.Fprintf(w, "Frame clock: %.3f Hz (program %.3f Hz, divider %s)\n",
		p.AttainedFrameHz, p.FrameProgramHz, p.FrameDivider)
	_, _ = fmt.Fprintf(w, "Bit clock:   %.3f Hz (program %.3f Hz, divider %s)\n\n",
		p.AttainedBitHz, p.BitProgramHz, p.BitDivider)

	verdict := "SYNCED"
	if !p.ValidateSync() {
		verdict = "DRIFTING"
	}
	_, _ = fmt.Fprintf(w, "Bit/frame ratio: %.9f  %s\n", p.Ratio(), verdict)
	_, _ = fmt.Fprintf(w, "Half period for 16 frames: %.1f us\n", p.HalfPeriodSeconds(16)*1e6)
}

func printSweep(w io.Writer, base tdm.Config) error {
	_, _ = fmt.Fprintf(w, "=== Sync sweep (reference %.0f Hz, %d slots, x%d) ===\n\n",
		base.ReferenceHz, base.Channels, base.BitClockMultiplier)
	_, _ = fmt.Fprintf(w, "%-8s %-6s %-16s %-12s %s\n", "rate", "depth", "attained", "ratio", "verdict")

	for _, r := range sweepRates {
		for _, d := range sweepDepths {
			cfg := base
			cfg.FrameRateHz = r
			cfg.BitDepth = d

			plan, err := cfg.Plan()
			if err != nil {
				_, _ = fmt.Fprintf(w, "%-8.0f %-6d %v\n", r, d, err)
				continue
			}
			verdict := "synced"
			if !plan.ValidateSync() {
				verdict = "drifting"
			}
			_, _ = fmt.Fprintf(w, "%-8.0f %-6d %-16.6f %-12.6f %s\n",
				r, d, plan.AttainedRateHz, plan.Ratio(), verdict)
		}
	}
	return nil
}
