package automix

import (
	"fmt"

	"github.com/tphakala/go-audio-automix/internal/simdops"
)

// MixTracks is a convenience function for one-shot mixing with default
// settings: it creates an AutoMixer, analyzes the tracks and returns the
// mixed stereo buffer.
func MixTracks(tracks []*Buffer) (*Buffer, error) {
	return MixTracksWith(tracks, nil)
}

// MixTracksWith is like MixTracks with explicit settings. A nil settings
// pointer selects DefaultSettings.
func MixTracksWith(tracks []*Buffer, settings *Settings) (*Buffer, error) {
	mixer, err := New(settings)
	if err != nil {
		return nil, err
	}
	return mixer.Process(tracks)
}

// BufferFromChannels builds a buffer by copying per-channel sample slices.
// All channels must have the same length.
func BufferFromChannels(channels [][]float64) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channel data", ErrInvalidInput)
	}

	samples := len(channels[0])
	for ch := range channels {
		if len(channels[ch]) != samples {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d",
				ErrInvalidInput, ch, len(channels[ch]), samples)
		}
	}

	b, err := NewBuffer(len(channels), samples)
	if err != nil {
		return nil, err
	}
	for ch := range channels {
		copy(b.data[ch], channels[ch])
	}
	return b, nil
}

// MonoBuffer builds a single-channel buffer by copying the given samples.
func MonoBuffer(samples []float64) *Buffer {
	b, _ := NewBuffer(1, len(samples))
	copy(b.data[0], samples)
	return b
}

// InterleaveStereo converts a stereo buffer to interleaved samples:
// [L0, R0, L1, R1, ...]. Buffers with more than two channels use the first
// two; mono buffers duplicate their channel.
func InterleaveStereo(b *Buffer) []float64 {
	left := b.Channel(0)
	right := left
	if b.Channels() >= stereoChannels {
		right = b.Channel(1)
	}

	result := make([]float64, len(left)*stereoChannels)
	simdops.Float64Ops().Interleave2(result, left, right)
	return result
}

// DeinterleaveStereo converts interleaved stereo samples
// [L0, R0, L1, R1, ...] into a two-channel buffer.
func DeinterleaveStereo(interleaved []float64) *Buffer {
	samples := len(interleaved) / stereoChannels
	b, _ := NewBuffer(stereoChannels, samples)
	for i := range samples {
		b.data[0][i] = interleaved[i*stereoChannels]
		b.data[1][i] = interleaved[i*stereoChannels+1]
	}
	return b
}
