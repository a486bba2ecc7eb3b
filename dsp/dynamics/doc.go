// Package dynamics implements the dynamics-processing stage of a
// multichannel audio pipeline.
//
// Included processors:
//   - Compressor: loudness-tracking compressor that derives one gain
//     curve from a configurable set of monitor channels and applies it
//     to a configurable set of process channels (ganged control), with
//     an optional bank of per-channel limiters for post-compression
//     peak control.
//   - Limiter: per-channel peak limiter using either static hard/soft
//     waveshaping or a feed-forward, delay-compensated lookahead
//     gain-reduction algorithm.
//
// Processing is single-threaded and allocation-free in steady state; all
// working buffers are sized at construction or parameter update. Both
// processors rebuild coefficients and reset runtime state on parameter
// updates, which the host must serialize against block processing.
package dynamics
