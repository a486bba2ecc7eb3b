package dynamics

import "github.com/cwbudde/algo-dynamics/dsp/block"

// Processor handles one multichannel block per call. The host pipeline
// invokes ProcessChunk once per block and must serialize parameter
// updates against processing.
type Processor interface {
	Name() string
	ProcessChunk(chunk *block.Block) error
}

// Filter handles one channel waveform per call.
type Filter interface {
	Name() string
	ProcessWaveform(waveform []float64) error
}

var (
	_ Processor = (*Compressor)(nil)
	_ Filter    = (*Limiter)(nil)
)
