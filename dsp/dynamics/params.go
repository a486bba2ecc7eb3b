package dynamics

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when validation rejects a parameter set.
var ErrInvalidConfig = errors.New("invalid dynamics configuration")

// ErrChunkSize is returned when a processed block does not match the
// block size a processor was built for.
var ErrChunkSize = errors.New("chunk size mismatch")

// CompressorParameters configures a Compressor stage.
//
// Attack and Release are time constants in seconds and are converted to
// per-sample smoothing coefficients at construction. A Factor above
// limiterModeFactor selects brick-wall limiting instead of soft-ratio
// compression. ClipLimit, when non-nil, enables a bank of per-channel
// limiters built from ClipLimit, SoftClip and ClipLookahead.
type CompressorParameters struct {
	Channels        int
	MonitorChannels []int // indices combined for detection; empty selects all
	ProcessChannels []int // indices receiving gain; empty selects all
	Attack          float64
	Release         float64
	Threshold       float64 // dB
	Factor          float64
	MakeupGain      float64  // dB
	ClipLimit       *float64 // dB; nil disables the limiter bank
	SoftClip        bool
	ClipLookahead   int
	ClipUseMonitor  bool
	MonitorUsePower bool
}

// LimiterParameters configures a standalone Limiter.
type LimiterParameters struct {
	ClipLimit float64 // dB
	SoftClip  bool
	Lookahead int // samples; 0 selects static waveshaping
}

// ValidateCompressorParameters checks a compressor parameter set and
// returns a descriptive error wrapping ErrInvalidConfig on the first
// violation. Values are never clamped silently.
func ValidateCompressorParameters(p CompressorParameters) error {
	if p.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be larger than zero: %d", ErrInvalidConfig, p.Channels)
	}

	if p.Attack <= 0 {
		return fmt.Errorf("%w: attack must be larger than zero: %f", ErrInvalidConfig, p.Attack)
	}

	if p.Release <= 0 {
		return fmt.Errorf("%w: release must be larger than zero: %f", ErrInvalidConfig, p.Release)
	}

	if p.Release <= p.Attack {
		return fmt.Errorf("%w: release (%f) must be larger than attack (%f)",
			ErrInvalidConfig, p.Release, p.Attack)
	}

	for _, ch := range p.MonitorChannels {
		if ch < 0 || ch >= p.Channels {
			return fmt.Errorf("%w: invalid monitor channel: %d, max is: %d",
				ErrInvalidConfig, ch, p.Channels-1)
		}
	}

	for _, ch := range p.ProcessChannels {
		if ch < 0 || ch >= p.Channels {
			return fmt.Errorf("%w: invalid channel to process: %d, max is: %d",
				ErrInvalidConfig, ch, p.Channels-1)
		}
	}

	return nil
}

// ValidateLimiterParameters accepts any limiter parameter combination.
// This is an intentionally permissive policy: out-of-range values such as
// a negative lookahead are clamped at construction, and anything beyond
// that is the caller's responsibility.
func ValidateLimiterParameters(_ LimiterParameters) error {
	return nil
}

// resolveChannels returns the given channel list, or all channels in
// order when the list is empty.
func resolveChannels(list []int, channels int) []int {
	if len(list) > 0 {
		resolved := make([]int, len(list))
		copy(resolved, list)
		return resolved
	}

	resolved := make([]int, channels)
	for n := range resolved {
		resolved[n] = n
	}
	return resolved
}
