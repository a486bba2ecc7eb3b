// Package block provides the fixed-size multichannel sample container
// passed between pipeline stages. Processors mutate blocks in place.
package block

import "github.com/cwbudde/algo-dynamics/dsp/core"

// Block holds one chunk of audio as equal-length per-channel waveforms.
type Block struct {
	Waveforms [][]float64
}

// New returns a zero-filled block with the given channel count and
// frames per channel. Negative arguments are treated as zero.
func New(channels, frames int) *Block {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	waveforms := make([][]float64, channels)
	for ch := range waveforms {
		waveforms[ch] = make([]float64, frames)
	}

	return &Block{Waveforms: waveforms}
}

// FromWaveforms wraps existing per-channel slices without copying.
// All waveforms must have equal length.
func FromWaveforms(waveforms [][]float64) *Block {
	return &Block{Waveforms: waveforms}
}

// Channels returns the number of channels.
func (b *Block) Channels() int {
	return len(b.Waveforms)
}

// Frames returns the number of samples per channel.
func (b *Block) Frames() int {
	if len(b.Waveforms) == 0 {
		return 0
	}
	return len(b.Waveforms[0])
}

// Zero silences every channel.
func (b *Block) Zero() {
	for _, wf := range b.Waveforms {
		core.Zero(wf)
	}
}
