// Package delay provides a fixed integer-delay circular delay line used
// for sample-exact alignment between detector and signal paths.
package delay

import "github.com/cwbudde/algo-dynamics/dsp/core"

// Line delays a waveform by a fixed number of samples. The leading
// samples of the first processed block are the line's carried-over
// state (zeros after construction or Reset).
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a line delaying by the given number of samples.
// A delay of zero or less yields a passthrough line.
func New(delaySamples int) *Line {
	if delaySamples < 0 {
		delaySamples = 0
	}
	return &Line{buffer: make([]float64, delaySamples)}
}

// Delay returns the configured delay in samples.
func (d *Line) Delay() int {
	return len(d.buffer)
}

// ProcessSample pushes one sample and returns the sample delayed by Delay().
func (d *Line) ProcessSample(x float64) float64 {
	if len(d.buffer) == 0 {
		return x
	}

	out := d.buffer[d.writePos]
	d.buffer[d.writePos] = x
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}

	return out
}

// ProcessInPlace shifts waveform by Delay() samples in place. The sample
// count is preserved; the trailing Delay() samples are retained as line
// state for the next block.
func (d *Line) ProcessInPlace(waveform []float64) {
	if len(d.buffer) == 0 {
		return
	}

	for i, x := range waveform {
		waveform[i] = d.ProcessSample(x)
	}
}

// Reset clears the line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
