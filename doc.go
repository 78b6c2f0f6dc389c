// Package tdm streams multi-channel TDM audio through a double-buffered
// transmit pipeline.
//
// A [Streamer] derives the serializer clocks from a reference oscillator,
// allocates an 8-byte aligned ping-pong buffer and hands both halves to an
// output [Port]. The port drains one half while the fill function refills
// the other, and reports each half boundary through a completion handler.
//
// # Quick Start
//
//	cfg := tdm.DefaultConfig()
//	bank, _ := tdm.NewSineBank(cfg.FrameRateHz, tdm.Voice{Amplitude: 0.5, Frequency: 1000})
//	s, err := tdm.New(cfg, port, bank.Fill, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Clock Planning
//
// The frame clock divider is derived first. The bit clock is then computed
// from the frame rate that divider actually attains, so both clocks come
// from one realized base rate. A plan whose bit clock is not an integer
// multiple of its frame clock is logged as a warning and still streams;
// see [Streamer.Synced].
//
// # Real-time Contract
//
// The fill function runs inside the port's completion handler, once per
// frame. It must return well within one half period (frames per half
// divided by the frame rate) and must not block, allocate or log. Missed
// deadlines are counted in [Stats.Overruns].
//
// # Channel Mapping
//
// Each frame the fill function produces one value per generator, and a
// [ChannelMap] fans those values out to the frame's slots. [Mono] copies
// generator 0 to every slot; [Quad] gives slots k and k+4 generator k.
package tdm
