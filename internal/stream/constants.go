package stream

// Buffer layout
const (
	// halfCount is the number of ping-pong halves.
	halfCount = 2

	// bufferAlign is the byte alignment the transmit DMA ring requires.
	bufferAlign = 8

	// wordsPerAlignUnit is how many int32 words fit in one aligned unit.
	wordsPerAlignUnit = 2
)

// maxGenerators bounds the number of distinct sources a channel map may reference.
const maxGenerators = 256
