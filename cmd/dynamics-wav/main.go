// Command dynamics-wav applies compression and optional peak limiting
// to a WAV file, processing it offline in fixed-size blocks.
//
// Usage:
//
//	dynamics-wav -threshold -20 -factor 4 input.wav output.wav
//	dynamics-wav -threshold -18 -factor 1000 input.wav output.wav          # brick-wall mode
//	dynamics-wav -threshold -20 -factor 4 -clip-limit -1 -lookahead 64 input.wav output.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-dynamics/dsp/block"
	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
)

const defaultBlockSize = 1024

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	threshold := flag.Float64("threshold", -20, "compression threshold in dB")
	factor := flag.Float64("factor", 4, "compression ratio (>1000 selects brick-wall limiting)")
	attack := flag.Float64("attack", 0.01, "attack time constant in seconds")
	release := flag.Float64("release", 0.1, "release time constant in seconds")
	makeup := flag.Float64("makeup", 0, "makeup gain in dB")
	clipLimit := flag.Float64("clip-limit", 0, "clip ceiling in dB (enables the per-channel limiter bank when set)")
	softClip := flag.Bool("soft-clip", false, "use soft waveshaping instead of hard clipping")
	lookahead := flag.Int("lookahead", 0, "limiter lookahead in samples (0 = static waveshaping)")
	useMonitor := flag.Bool("clip-use-monitor", false, "drive all limiters from the shared monitor sum")
	usePower := flag.Bool("monitor-use-power", false, "combine monitor channels as root-sum-of-squares")
	monitorList := flag.String("monitor", "", "comma-separated monitor channel indices (default: all)")
	processList := flag.String("process", "", "comma-separated process channel indices (default: all)")
	blockSize := flag.Int("block", defaultBlockSize, "processing block size in frames")
	verbose := flag.Bool("verbose", false, "print processing details")
	flag.Parse()

	if flag.NArg() != 2 {
		return fmt.Errorf("usage: dynamics-wav [flags] input.wav output.wav")
	}

	clipEnabled := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "clip-limit" {
			clipEnabled = true
		}
	})

	monitorChannels, err := parseChannelList(*monitorList)
	if err != nil {
		return fmt.Errorf("invalid -monitor list: %w", err)
	}

	processChannels, err := parseChannelList(*processList)
	if err != nil {
		return fmt.Errorf("invalid -process list: %w", err)
	}

	inputFile, err := os.Open(flag.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer inputFile.Close()

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", flag.Arg(0))
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to read PCM data: %w", err)
	}

	rate := pcm.Format.SampleRate
	channels := pcm.Format.NumChannels
	bitDepth := int(decoder.BitDepth)
	frames := len(pcm.Data) / channels

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	if *verbose {
		log.Printf("input: %d Hz, %d channels, %d-bit, %d frames", rate, channels, bitDepth, frames)
	}

	params := dynamics.CompressorParameters{
		Channels:        channels,
		MonitorChannels: monitorChannels,
		ProcessChannels: processChannels,
		Attack:          *attack,
		Release:         *release,
		Threshold:       *threshold,
		Factor:          *factor,
		MakeupGain:      *makeup,
		SoftClip:        *softClip,
		ClipLookahead:   *lookahead,
		ClipUseMonitor:  *useMonitor,
		MonitorUsePower: *usePower,
	}
	if clipEnabled {
		limit := *clipLimit
		params.ClipLimit = &limit
	}

	comp, err := dynamics.NewCompressor("dynamics-wav", params, rate, *blockSize)
	if err != nil {
		return err
	}

	waveforms := deinterleave(pcm, bitDepth)

	if err := processBlocks(comp, waveforms, *blockSize); err != nil {
		return err
	}

	interleave(pcm, waveforms, bitDepth)

	outputFile, err := os.Create(flag.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	encoder := wav.NewEncoder(outputFile, rate, bitDepth, channels, 1)
	if err := encoder.Write(pcm); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	if *verbose {
		log.Printf("wrote %s", flag.Arg(1))
	}

	return nil
}

// processBlocks runs the compressor over the full waveforms in
// fixed-size blocks, zero-padding the final partial block.
func processBlocks(comp *dynamics.Compressor, waveforms [][]float64, blockSize int) error {
	if len(waveforms) == 0 {
		return nil
	}

	frames := len(waveforms[0])
	chunk := block.New(len(waveforms), blockSize)

	for offset := 0; offset < frames; offset += blockSize {
		n := blockSize
		if offset+n > frames {
			n = frames - offset
			chunk.Zero()
		}

		for ch := range waveforms {
			core.CopyInto(chunk.Waveforms[ch][:n], waveforms[ch][offset:offset+n])
		}

		if err := comp.ProcessChunk(chunk); err != nil {
			return err
		}

		for ch := range waveforms {
			core.CopyInto(waveforms[ch][offset:offset+n], chunk.Waveforms[ch][:n])
		}
	}

	return nil
}

// deinterleave converts an interleaved integer PCM buffer to
// per-channel float64 waveforms in [-1, 1]. 8-bit WAV stores unsigned
// samples around a 128 midpoint; deeper formats are signed.
func deinterleave(pcm *audio.IntBuffer, bitDepth int) [][]float64 {
	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels
	scale, offset, _ := sampleRange(bitDepth)

	waveforms := make([][]float64, channels)
	for ch := range waveforms {
		waveforms[ch] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			waveforms[ch][i] = (float64(pcm.Data[i*channels+ch]) - offset) / scale
		}
	}

	return waveforms
}

// interleave converts per-channel float64 waveforms back into the
// integer PCM buffer, restoring the unsigned midpoint for 8-bit and
// clamping to the sample format range.
func interleave(pcm *audio.IntBuffer, waveforms [][]float64, bitDepth int) {
	channels := len(waveforms)
	if channels == 0 {
		return
	}

	scale, offset, maxSample := sampleRange(bitDepth)

	for ch := range waveforms {
		for i, v := range waveforms[ch] {
			s := int(math.Round(core.Clamp(v, -1, 1)*scale + offset))
			if s > maxSample {
				s = maxSample
			}
			pcm.Data[i*channels+ch] = s
		}
	}
}

// sampleRange returns the float scale, integer offset and largest
// representable sample for a PCM bit depth.
func sampleRange(bitDepth int) (scale, offset float64, maxSample int) {
	scale = float64(int64(1) << (bitDepth - 1))
	maxSample = int(int64(1)<<(bitDepth-1)) - 1
	if bitDepth == 8 {
		offset = scale
		maxSample = 255
	}
	return scale, offset, maxSample
}

// parseChannelList parses a comma-separated index list; an empty string
// yields nil (all channels).
func parseChannelList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	list := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("not a channel index: %q", part)
		}
		list = append(list, n)
	}

	return list, nil
}
