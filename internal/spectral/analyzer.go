// Package spectral estimates magnitude spectra for the auto-mixer's
// frequency-conflict and spatial-placement decisions.
package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	// DefaultSize is the default transform size in samples.
	DefaultSize = 2048

	// minSize keeps degenerate transform sizes out of the FFT plan.
	minSize = 16

	// minEnergy is the floor below which a spectrum is treated as silent.
	minEnergy = 1e-12
)

// Analyzer computes Hann-windowed magnitude spectra over a fixed transform
// size using a real FFT (O(N log N)). Input shorter than the transform size
// is zero-padded; longer input is analyzed over its leading frame.
//
// Scratch buffers are reused between calls, so an Analyzer must not be
// shared between goroutines. Parallel analysis uses one Analyzer per worker.
type Analyzer struct {
	size int
	fft  *fourier.FFT

	frame  []float64
	coeffs []complex128
	mags   []float64
}

// NewAnalyzer creates an analyzer with the given transform size.
// Sizes below the minimum are raised to it; power-of-two sizes give the
// fastest transforms but any size is accepted.
func NewAnalyzer(size int) *Analyzer {
	if size < minSize {
		size = minSize
	}

	return &Analyzer{
		size:   size,
		fft:    fourier.NewFFT(size),
		frame:  make([]float64, size),
		coeffs: make([]complex128, size/2+1),
		mags:   make([]float64, size/2+1),
	}
}

// Size returns the transform size in samples.
func (a *Analyzer) Size() int {
	return a.size
}

// NumBins returns the number of magnitude bins (size/2 + 1).
func (a *Analyzer) NumBins() int {
	return a.size/2 + 1
}

// Magnitudes returns the Hann-windowed magnitude spectrum of data.
// The returned slice is owned by the analyzer and valid until the next
// Magnitudes call; callers that keep it must copy it.
func (a *Analyzer) Magnitudes(data []float64) []float64 {
	n := copy(a.frame, data)
	clear(a.frame[n:])
	window.Hann(a.frame)

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)
	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c)
	}

	return a.mags
}

// FreqToBin maps a frequency in Hz to the nearest transform bin for the
// given sample rate. Results are clamped to the valid bin range.
func (a *Analyzer) FreqToBin(freq, sampleRate float64) int {
	bin := int(freq*float64(a.size)/sampleRate + 0.5)
	if bin < 0 {
		return 0
	}
	if bin > a.size/2 {
		return a.size / 2
	}
	return bin
}

// BinToFreq maps a transform bin to its center frequency in Hz for the
// given sample rate.
func (a *Analyzer) BinToFreq(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(a.size)
}

// DominantBin returns the bin with the largest magnitude, or -1 when the
// spectrum carries no meaningful energy (silent input).
func DominantBin(mags []float64) int {
	best := -1
	bestMag := minEnergy
	for i, m := range mags {
		if m > bestMag {
			best = i
			bestMag = m
		}
	}
	return best
}

// Centroid returns the energy-weighted mean frequency of the spectrum in
// Hz, a brightness proxy used for spatial placement. Silence yields 0.
func (a *Analyzer) Centroid(mags []float64, sampleRate float64) float64 {
	var weighted, total float64
	for i, m := range mags {
		energy := m * m
		weighted += energy * a.BinToFreq(i, sampleRate)
		total += energy
	}

	if total < minEnergy {
		return 0
	}
	return weighted / total
}
