package automix

import (
	"fmt"

	"github.com/tphakala/go-audio-automix/internal/simdops"
)

// Buffer holds multichannel audio as planar float64 samples. Channel count
// and sample count are fixed at construction; samples are mutated in place.
//
// Operations across two buffers act on the overlapping region
// min(channels) x min(samples) and never fail on mismatched extents; the
// excess region of the larger buffer is left untouched.
//
// A Buffer is exclusively owned by its creator and is not safe for
// concurrent mutation.
type Buffer struct {
	data    [][]float64
	samples int
}

// NewBuffer creates a zeroed buffer with the given channel and sample
// counts. Buffers must have at least one channel; zero samples is valid.
func NewBuffer(channels, samples int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: buffer needs at least 1 channel, got %d", ErrInvalidInput, channels)
	}
	if samples < 0 {
		return nil, fmt.Errorf("%w: negative sample count %d", ErrInvalidInput, samples)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, samples)
	}

	return &Buffer{data: data, samples: samples}, nil
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return len(b.data)
}

// Samples returns the per-channel sample count.
func (b *Buffer) Samples() int {
	return b.samples
}

// Channel returns the sample slice for one channel. The slice aliases the
// buffer's storage; writes through it mutate the buffer.
func (b *Buffer) Channel(ch int) []float64 {
	return b.data[ch]
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([][]float64, len(b.data))
	for ch := range b.data {
		data[ch] = make([]float64, b.samples)
		copy(data[ch], b.data[ch])
	}
	return &Buffer{data: data, samples: b.samples}
}

// Scale multiplies every sample in every channel by gain.
func (b *Buffer) Scale(gain float64) {
	ops := simdops.Float64Ops()
	for ch := range b.data {
		ops.Scale(b.data[ch], b.data[ch], gain)
	}
}

// Clear zeroes all samples.
func (b *Buffer) Clear() {
	for ch := range b.data {
		clear(b.data[ch])
	}
}

// Accumulate adds other's samples into this buffer with the given gain:
// b[ch][i] += other[ch][i] * gain over the overlapping region. A nil other
// is a no-op.
func (b *Buffer) Accumulate(other *Buffer, gain float64) {
	if other == nil {
		return
	}

	channels := min(len(b.data), len(other.data))
	for ch := range channels {
		accumulateScaled(b.data[ch], other.data[ch], gain)
	}
}

// AccumulateChannel adds src into one channel with the given gain over the
// overlapping sample range. Out-of-range channels are ignored.
func (b *Buffer) AccumulateChannel(ch int, src []float64, gain float64) {
	if ch < 0 || ch >= len(b.data) {
		return
	}
	accumulateScaled(b.data[ch], src, gain)
}

// MonoMix returns a new slice holding the mean of all channels per sample.
// Single-channel buffers return a copy of the channel.
func (b *Buffer) MonoMix() []float64 {
	mono := make([]float64, b.samples)
	if len(b.data) == 1 {
		copy(mono, b.data[0])
		return mono
	}

	for ch := range b.data {
		accumulateScaled(mono, b.data[ch], 1)
	}
	simdops.Float64Ops().Scale(mono, mono, 1/float64(len(b.data)))
	return mono
}

// Energy returns the sum of squared samples across all channels.
func (b *Buffer) Energy() float64 {
	ops := simdops.Float64Ops()
	var sum float64
	for ch := range b.data {
		if len(b.data[ch]) > 0 {
			sum += ops.DotProductUnsafe(b.data[ch], b.data[ch])
		}
	}
	return sum
}

// accumulateScaled computes dst[i] += src[i] * gain over the overlapping
// range. Kept scalar: the SIMD library carries no fused multiply-add slice op.
func accumulateScaled(dst, src []float64, gain float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += src[i] * gain
	}
}

// Flatten returns the buffer as a flat row-major array: channel 0's
// samples, then channel 1's, and so on.
func (b *Buffer) Flatten() []float64 {
	flat := make([]float64, len(b.data)*b.samples)
	for ch := range b.data {
		copy(flat[ch*b.samples:], b.data[ch])
	}
	return flat
}

// Flatten32 is like Flatten but converts to float32, the external binding
// sample format.
func (b *Buffer) Flatten32() []float32 {
	flat := make([]float32, len(b.data)*b.samples)
	for ch := range b.data {
		for i, v := range b.data[ch] {
			flat[ch*b.samples+i] = float32(v)
		}
	}
	return flat
}

// BufferFromFlat builds a buffer from a flat row-major array. The array
// length must equal channels*samples exactly; no implicit resampling or
// reshaping is performed.
func BufferFromFlat(flat []float64, channels, samples int) (*Buffer, error) {
	b, err := newBufferForFlat(len(flat), channels, samples)
	if err != nil {
		return nil, err
	}
	for ch := range b.data {
		copy(b.data[ch], flat[ch*samples:(ch+1)*samples])
	}
	return b, nil
}

// BufferFromFlat32 is like BufferFromFlat for float32 data. float32 values
// convert to float64 exactly, so a float32 round trip through a Buffer is
// lossless.
func BufferFromFlat32(flat []float32, channels, samples int) (*Buffer, error) {
	b, err := newBufferForFlat(len(flat), channels, samples)
	if err != nil {
		return nil, err
	}
	for ch := range b.data {
		for i := range samples {
			b.data[ch][i] = float64(flat[ch*samples+i])
		}
	}
	return b, nil
}

// newBufferForFlat validates the flat-array shape contract and allocates
// the destination buffer.
func newBufferForFlat(flatLen, channels, samples int) (*Buffer, error) {
	b, err := NewBuffer(channels, samples)
	if err != nil {
		return nil, err
	}
	if flatLen != channels*samples {
		return nil, fmt.Errorf("%w: flat array has %d samples, want %d (%d channels x %d samples)",
			ErrInvalidInput, flatLen, channels*samples, channels, samples)
	}
	return b, nil
}
