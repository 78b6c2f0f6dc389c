package tdm

// Default peripheral configuration
const (
	defaultFrameRateHz   = 48000
	defaultMultiplier    = 256 // master clock = 256 * frame rate
	defaultBitDepth      = 32
	defaultChannels      = 8
	defaultFramesPerHalf = 16 // 16 frames * 8 channels = 128 words of latency
	defaultReferenceHz   = 132_000_000

	// State machine cycles per clock period of each serializer program.
	defaultFrameProgramCycles = 2
	defaultBitProgramCycles   = 2
)

// Default pin assignment
const (
	defaultMasterClockPin = 10
	defaultDataOutPin     = 6
	defaultDataInPin      = 7
	defaultClockBasePin   = 8 // bit clock; frame sync on the next pin
)

// Configuration limits
const (
	maxPin           = 29
	maxChannels      = 32
	maxFramesPerHalf = 4096
	maxProgramCycles = 32
)
