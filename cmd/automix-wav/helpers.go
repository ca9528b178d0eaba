package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	automix "github.com/tphakala/go-audio-automix"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAV audio format tag for PCM
	wavFormatPCM = 1
)

// maxValueForBitDepth returns the full-scale sample value for a bit depth.
func maxValueForBitDepth(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// readWAVTrack decodes a WAV file into a planar float buffer normalized to
// [-1, 1], returning the buffer and its sample rate.
func readWAVTrack(path string) (*automix.Buffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	intBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	format := intBuf.Format
	track, err := intBufferToTrack(intBuf.Data, format.NumChannels, int(decoder.BitDepth))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	return track, format.SampleRate, nil
}

// intBufferToTrack deinterleaves PCM int samples into a normalized planar
// buffer.
func intBufferToTrack(data []int, channels, bitDepth int) (*automix.Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("no channels in PCM data")
	}

	samples := len(data) / channels
	track, err := automix.NewBuffer(channels, samples)
	if err != nil {
		return nil, err
	}

	invMax := 1.0 / maxValueForBitDepth(bitDepth)
	for ch := range channels {
		dst := track.Channel(ch)
		for i := range samples {
			dst[i] = float64(data[i*channels+ch]) * invMax
		}
	}

	return track, nil
}

// writeWAVStereo encodes a stereo buffer as PCM WAV, clamping samples to
// [-1, 1].
func writeWAVStereo(path string, mix *automix.Buffer, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	encoder := wav.NewEncoder(f, sampleRate, bitDepth, mix.Channels(), wavFormatPCM)

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: mix.Channels(),
			SampleRate:  sampleRate,
		},
		Data:           trackToIntBuffer(mix, bitDepth),
		SourceBitDepth: bitDepth,
	}

	if err := encoder.Write(intBuf); err != nil {
		_ = encoder.Close()
		_ = f.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := encoder.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return f.Close()
}

// trackToIntBuffer interleaves a planar buffer into clamped PCM int
// samples.
func trackToIntBuffer(mix *automix.Buffer, bitDepth int) []int {
	channels := mix.Channels()
	samples := mix.Samples()
	maxVal := maxValueForBitDepth(bitDepth)

	data := make([]int, samples*channels)
	for ch := range channels {
		src := mix.Channel(ch)
		for i := range samples {
			// Round rather than truncate so int samples survive a
			// normalize/denormalize round trip.
			data[i*channels+ch] = int(math.Round(clampUnit(src[i]) * maxVal))
		}
	}
	return data
}

// clampUnit clamps a sample to [-1, 1].
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
