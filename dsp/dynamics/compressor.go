package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dynamics/dsp/block"
	"github.com/cwbudde/algo-dynamics/dsp/core"
)

// limiterModeFactor is the ratio cutoff above which the gain curve
// switches from soft-ratio compression to brick-wall limiting.
const limiterModeFactor = 1000.0

// Compressor tracks a combined loudness estimate across its monitor
// channels and applies one shared gain curve to its process channels
// (ganged control). When a clip limit is configured it also drives a
// bank of per-channel limiters after gain application.
//
// A Compressor is built for a fixed sample rate and block size; its
// scratch buffer is never reallocated during steady-state processing.
// It performs no locking: the host must serialize UpdateParameters
// against ProcessChunk.
type Compressor struct {
	name     string
	channels int

	monitorChannels []int
	processChannels []int

	// Per-sample smoothing coefficients derived from the time constants.
	attack  float64
	release float64

	thresholdDB  float64
	factor       float64
	makeupGainDB float64

	// Cached linear conversions.
	thresholdLin float64
	makeupLin    float64

	limiters []*Limiter

	sampleRate int
	scratch    []float64

	prevLoudness float64
	prevGain     float64

	clipUseMonitor  bool
	monitorUsePower bool
}

// NewCompressor creates a compressor from a validated parameter set, the
// block sample rate and the fixed block size in frames.
func NewCompressor(name string, params CompressorParameters, sampleRate, chunkSize int) (*Compressor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be larger than zero: %d", ErrInvalidConfig, sampleRate)
	}

	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be larger than zero: %d", ErrInvalidConfig, chunkSize)
	}

	if err := ValidateCompressorParameters(params); err != nil {
		return nil, err
	}

	c := &Compressor{
		name:       name,
		sampleRate: sampleRate,
		scratch:    make([]float64, chunkSize),
	}
	c.configure(params)

	return c, nil
}

// Name returns the compressor instance name.
func (c *Compressor) Name() string {
	return c.name
}

// Channels returns the configured total channel count.
func (c *Compressor) Channels() int {
	return c.channels
}

// ChunkSize returns the block size in frames the compressor was built for.
func (c *Compressor) ChunkSize() int {
	return len(c.scratch)
}

// Limiters returns the per-process-channel limiter bank, or nil when no
// clip limit is configured.
func (c *Compressor) Limiters() []*Limiter {
	return c.limiters
}

// ProcessChunk applies the compressor to one block in place: monitor
// summation, loudness estimation, gain-curve computation, ganged gain
// application and, when configured, per-channel limiting.
func (c *Compressor) ProcessChunk(chunk *block.Block) error {
	if err := c.checkChunk(chunk); err != nil {
		return err
	}

	c.sumMonitorChannels(chunk)
	c.estimateLoudness()
	c.calculateLinearGain()

	for _, ch := range c.processChannels {
		vecmath.MulBlockInPlace(chunk.Waveforms[ch], c.scratch)
	}

	if c.clipUseMonitor {
		// The gain computation overwrote scratch; rebuild the monitor sum
		// from the now-attenuated signal so all limiters share one detector.
		c.sumMonitorChannels(chunk)
	}

	for i, limiter := range c.limiters {
		ch := c.processChannels[i]
		var err error
		if c.clipUseMonitor {
			err = limiter.ProcessWaveformWithDetector(c.scratch, chunk.Waveforms[ch])
		} else {
			err = limiter.ProcessWaveform(chunk.Waveforms[ch])
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateParameters rebuilds all derived fields and the limiter bank from
// a new parameter set and resets the envelope state. The host must not
// call this concurrently with ProcessChunk.
func (c *Compressor) UpdateParameters(params CompressorParameters) error {
	if err := ValidateCompressorParameters(params); err != nil {
		return err
	}

	c.configure(params)

	return nil
}

// Reset clears the envelope state and any limiter state without changing
// parameters.
func (c *Compressor) Reset() {
	c.prevLoudness = 0
	c.prevGain = 1
	for _, limiter := range c.limiters {
		limiter.Reset()
	}
}

// configure derives all runtime fields from a validated parameter set.
func (c *Compressor) configure(params CompressorParameters) {
	srate := float64(c.sampleRate)

	c.channels = params.Channels
	c.monitorChannels = resolveChannels(params.MonitorChannels, params.Channels)
	c.processChannels = resolveChannels(params.ProcessChannels, params.Channels)

	// The envelope already releases at the attack rate, so the gain
	// release constant is the remainder of the release time.
	c.attack = math.Exp(-1 / (srate * params.Attack))
	c.release = math.Exp(-1 / (srate * (params.Release - params.Attack)))

	c.thresholdDB = params.Threshold
	c.factor = params.Factor
	c.makeupGainDB = params.MakeupGain
	c.thresholdLin = mathPower10(params.Threshold / 20)
	c.makeupLin = mathPower10(params.MakeupGain / 20)

	c.clipUseMonitor = params.ClipUseMonitor
	c.monitorUsePower = params.MonitorUsePower

	if params.ClipLimit != nil {
		limitParams := LimiterParameters{
			ClipLimit: *params.ClipLimit,
			SoftClip:  params.SoftClip,
			Lookahead: params.ClipLookahead,
		}
		c.limiters = make([]*Limiter, len(c.processChannels))
		for i, ch := range c.processChannels {
			limiter := NewLimiter(fmt.Sprintf("%s-limiter-%d", c.name, ch), limitParams)
			limiter.presizeGains(len(c.scratch))
			c.limiters[i] = limiter
		}
	} else {
		c.limiters = nil
	}

	c.prevLoudness = 0
	c.prevGain = 1
}

// checkChunk verifies the supplied block matches the construction-time
// geometry before any waveform is touched.
func (c *Compressor) checkChunk(chunk *block.Block) error {
	if chunk.Channels() != c.channels {
		return fmt.Errorf("%w: chunk has %d channels, want %d", ErrChunkSize, chunk.Channels(), c.channels)
	}

	if chunk.Frames() != len(c.scratch) {
		return fmt.Errorf("%w: chunk has %d frames, want %d", ErrChunkSize, chunk.Frames(), len(c.scratch))
	}

	return nil
}

// sumMonitorChannels writes the per-sample combination of the monitor
// channels into scratch: a direct copy for one channel, a root-sum-of-
// squares for power combination, or a plain sum for voltage combination.
func (c *Compressor) sumMonitorChannels(chunk *block.Block) {
	if len(c.monitorChannels) == 1 {
		copy(c.scratch, chunk.Waveforms[c.monitorChannels[0]])
		return
	}

	if c.monitorUsePower {
		for i := range c.scratch {
			sum := 0.0
			for _, ch := range c.monitorChannels {
				v := chunk.Waveforms[ch][i]
				sum += v * v
			}
			c.scratch[i] = mathSqrt(sum)
		}
		return
	}

	copy(c.scratch, chunk.Waveforms[c.monitorChannels[0]])
	for _, ch := range c.monitorChannels[1:] {
		wf := chunk.Waveforms[ch]
		for i := range c.scratch {
			c.scratch[i] += wf[i]
		}
	}
}

// estimateLoudness replaces each scratch value with a one-pole smoothed
// RMS envelope of the monitor sum. Only the attack coefficient is used,
// whether the envelope rises or falls.
func (c *Compressor) estimateLoudness() {
	for i, v := range c.scratch {
		c.prevLoudness = c.attack*c.prevLoudness + (1-c.attack)*v*v
		c.scratch[i] = mathSqrt(c.prevLoudness)
	}

	c.prevLoudness = core.FlushDenormals(c.prevLoudness)
}

// calculateLinearGain replaces each envelope value in scratch with the
// linear gain to apply, including makeup gain. Above threshold the gain
// follows the ratio (or brick-wall limits); below threshold it ramps
// toward unity at the release rate.
func (c *Compressor) calculateLinearGain() {
	for i, v := range c.scratch {
		var gain float64
		switch {
		case v > c.thresholdLin && c.factor > limiterModeFactor:
			gain = c.thresholdLin / v
		case v > c.thresholdLin:
			envDB := 20 * mathLog10(v)
			gainDB := -(envDB - c.thresholdDB) * (c.factor - 1) / c.factor
			gain = mathPower10(gainDB / 20)
		default:
			gain = c.release*c.prevGain + (1 - c.release)
		}

		c.prevGain = gain
		c.scratch[i] = gain * c.makeupLin
	}
}
