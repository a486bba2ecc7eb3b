package dynamics

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-dynamics/dsp/delay"
)

// cubeFactor shapes the soft-clip curve: 1 / (2 * 1.5^3).
const cubeFactor = 1.0 / 6.75

// allowedOvershoot is the residual overshoot target the lookahead
// smoothing coefficients are derived from (1%).
const allowedOvershoot = 1.01

// Limiter bounds the peak amplitude of one channel. With a lookahead of
// zero it applies static hard or soft waveshaping. With a lookahead of N
// samples it runs a feed-forward detector over the next N samples and
// applies the resulting gain curve to the correspondingly delayed
// signal, so gain reduction starts before a transient reaches the
// output.
type Limiter struct {
	name      string
	softClip  bool
	clipLimit float64 // linear amplitude ceiling
	lookahead int

	delay   *delay.Line
	history *maxWindow

	prevPeak    float64
	alpha, beta float64

	gains []float64
}

// NewLimiter creates a limiter from a parameter set. Construction never
// fails; a negative lookahead is clamped to zero (static waveshaping).
func NewLimiter(name string, params LimiterParameters) *Limiter {
	l := &Limiter{name: name}
	l.configure(params)
	return l
}

// Name returns the limiter instance name.
func (l *Limiter) Name() string {
	return l.name
}

// SoftClip reports whether the no-lookahead path uses soft waveshaping.
func (l *Limiter) SoftClip() bool {
	return l.softClip
}

// ClipLimit returns the linear amplitude ceiling.
func (l *Limiter) ClipLimit() float64 {
	return l.clipLimit
}

// Lookahead returns the lookahead window in samples.
func (l *Limiter) Lookahead() int {
	return l.lookahead
}

// ProcessWaveform limits one channel waveform in place, using the
// waveform itself as detector signal.
func (l *Limiter) ProcessWaveform(waveform []float64) error {
	return l.ProcessWaveformWithDetector(waveform, waveform)
}

// ProcessWaveformWithDetector limits waveform in place, computing the
// gain curve from a separate detector signal of the same length. With a
// lookahead of zero the detector is ignored and waveform is waveshaped
// directly.
func (l *Limiter) ProcessWaveformWithDetector(detector, waveform []float64) error {
	if l.lookahead == 0 {
		l.applyClip(waveform)
		return nil
	}

	l.calculateGain(detector)

	// Delay the signal path into the detector's lookahead window, then
	// apply the gains; reduction thus precedes the transient.
	l.delay.ProcessInPlace(waveform)
	vecmath.MulBlockInPlace(waveform, l.gains)

	return nil
}

// UpdateParameters rebuilds the limiter from a new parameter set. The
// delay line is recreated and envelope and history state are reset, not
// preserved.
func (l *Limiter) UpdateParameters(params LimiterParameters) {
	l.configure(params)
}

// Reset clears envelope, history and delay state without changing
// parameters.
func (l *Limiter) Reset() {
	l.prevPeak = 0
	if l.history != nil {
		l.history.reset()
	}
	if l.delay != nil {
		l.delay.Reset()
	}
}

func (l *Limiter) configure(params LimiterParameters) {
	lookahead := params.Lookahead
	if lookahead < 0 {
		lookahead = 0
	}

	l.softClip = params.SoftClip
	l.clipLimit = core.DBToLinear(params.ClipLimit)
	l.lookahead = lookahead
	l.prevPeak = 0

	if lookahead > 0 {
		l.alpha, l.beta = lookaheadCoefficients(lookahead)
		l.delay = delay.New(lookahead)
		l.history = newMaxWindow(lookahead)
	} else {
		l.alpha, l.beta = 0, 0
		l.delay = nil
		l.history = nil
	}
}

// presizeGains sizes the gain scratch for a known block size so the
// first processed block does not allocate. A standalone limiter that
// skips this sizes the scratch on its first block instead.
func (l *Limiter) presizeGains(frames int) {
	if l.lookahead == 0 {
		return
	}
	l.gains = core.EnsureLen(l.gains, frames)
}

// calculateGain runs the feed-forward detector over one block and fills
// l.gains with the per-sample gain curve.
func (l *Limiter) calculateGain(detector []float64) {
	l.gains = core.EnsureLen(l.gains, len(detector))

	for i, x := range detector {
		sample := math.Abs(x)

		// One-step-ahead prediction of where the peak envelope is heading.
		overshoot := (sample - l.beta*l.prevPeak) / (1 - l.beta)
		control := sample
		if overshoot > control {
			control = overshoot
		}

		l.history.push(control)

		// Moving max over the lookahead window drives the envelope.
		l.prevPeak = l.alpha*l.history.max() + (1-l.alpha)*l.prevPeak

		if l.prevPeak > l.clipLimit {
			l.gains[i] = l.clipLimit / l.prevPeak
		} else {
			l.gains[i] = 1
		}
	}
}

func (l *Limiter) applyClip(waveform []float64) {
	if l.softClip {
		l.applySoftClip(waveform)
	} else {
		l.applyHardClip(waveform)
	}
}

// applySoftClip applies a cubic soft-knee curve, continuous and bounded,
// saturating at exactly clipLimit for inputs at or beyond 1.5x the limit.
func (l *Limiter) applySoftClip(waveform []float64) {
	for i, x := range waveform {
		scaled := core.Clamp(x/l.clipLimit, -1.5, 1.5)
		scaled -= cubeFactor * scaled * scaled * scaled
		waveform[i] = scaled * l.clipLimit
	}
}

func (l *Limiter) applyHardClip(waveform []float64) {
	for i, x := range waveform {
		waveform[i] = core.Clamp(x, -l.clipLimit, l.clipLimit)
	}
}

// lookaheadCoefficients derives the envelope smoothing coefficients for
// a lookahead window. Alpha makes the smoothed peak settle to within
// allowedOvershoot over lookahead+1 samples; beta is the remaining
// fraction after the full window and feeds the one-step prediction.
func lookaheadCoefficients(lookahead int) (alpha, beta float64) {
	window := float64(lookahead) + 1
	alpha = 1 - math.Pow(10, math.Log10((allowedOvershoot-1)/allowedOvershoot)/window)
	beta = math.Pow(1-alpha, window)
	return alpha, beta
}

// maxWindow is a fixed-capacity ring buffer acting as a moving max
// filter. A linear scan per query is fine for typical lookahead sizes;
// a monotonic deque would only pay off for very large windows.
type maxWindow struct {
	buf  []float64
	pos  int
	size int
}

func newMaxWindow(capacity int) *maxWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &maxWindow{buf: make([]float64, capacity)}
}

// push appends a value, evicting the oldest when at capacity.
func (w *maxWindow) push(v float64) {
	w.buf[w.pos] = v
	w.pos++
	if w.pos >= len(w.buf) {
		w.pos = 0
	}
	if w.size < len(w.buf) {
		w.size++
	}
}

// max returns the largest value currently in the window, or 0 when empty.
func (w *maxWindow) max() float64 {
	m := 0.0
	for i := 0; i < w.size; i++ {
		if w.buf[i] > m {
			m = w.buf[i]
		}
	}
	return m
}

func (w *maxWindow) reset() {
	core.Zero(w.buf)
	w.pos = 0
	w.size = 0
}
