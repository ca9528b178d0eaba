// Package eq implements a cascaded biquad equalizer with RBJ cookbook
// filter design for peaking, shelving and pass filters.
package eq

// FilterType selects the frequency response of a band.
type FilterType int

const (
	// Peak boosts or cuts a bell-shaped region around the center frequency.
	Peak FilterType = iota

	// LowShelf boosts or cuts everything below the corner frequency.
	LowShelf

	// HighShelf boosts or cuts everything above the corner frequency.
	HighShelf

	// LowPass attenuates above the cutoff frequency (gain is ignored).
	LowPass

	// HighPass attenuates below the cutoff frequency (gain is ignored).
	HighPass
)

// Band describes one equalizer band. Frequency is in Hz and must lie in
// (0, sampleRate/2), Gain is in dB, Q must be positive.
type Band struct {
	Frequency float64
	Gain      float64
	Q         float64
	Type      FilterType
}

// Equalizer applies an ordered cascade of biquad bands. Each band has its
// own coefficient set and two-pole delay line, applied in band order with
// each band's output feeding the next. Delay-line state persists across
// Process calls for streaming continuity.
//
// An Equalizer instance must not be used concurrently.
type Equalizer struct {
	sampleRate float64
	bands      []Band
	coeffs     []coefficients
	states     []biquadState
}

// New creates an equalizer with no bands for the given sample rate.
func New(sampleRate float64) *Equalizer {
	return &Equalizer{sampleRate: sampleRate}
}

// NumBands returns the number of configured bands.
func (e *Equalizer) NumBands() int {
	return len(e.bands)
}

// Band returns the band at index. The index must be in range.
func (e *Equalizer) Band(index int) Band {
	return e.bands[index]
}

// SetBand configures the band at index, growing the cascade as needed.
// Bands appended implicitly by growth start as 0 dB peaks, which are
// identity filters. Only the affected band's coefficients are recomputed;
// other bands keep their coefficients and delay-line state.
func (e *Equalizer) SetBand(index int, band Band) {
	for index >= len(e.bands) {
		e.bands = append(e.bands, Band{Q: 1, Type: Peak})
		e.coeffs = append(e.coeffs, identityCoefficients())
		e.states = append(e.states, biquadState{})
	}

	e.bands[index] = band
	e.coeffs[index] = designCoefficients(band, e.sampleRate)
}

// AddBand appends a band to the end of the cascade.
func (e *Equalizer) AddBand(band Band) {
	e.SetBand(len(e.bands), band)
}

// ClearBands drops all bands, coefficients and delay-line state.
func (e *Equalizer) ClearBands() {
	e.bands = e.bands[:0]
	e.coeffs = e.coeffs[:0]
	e.states = e.states[:0]
}

// Reset clears the delay lines of all bands while keeping the band
// configuration.
func (e *Equalizer) Reset() {
	for i := range e.states {
		e.states[i] = biquadState{}
	}
}

// Process filters data in place through the band cascade.
// No allocations occur inside the sample loops.
func (e *Equalizer) Process(data []float64) {
	for b := range e.bands {
		c := e.coeffs[b]
		s := &e.states[b]

		for i, x := range data {
			y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2

			s.x2 = s.x1
			s.x1 = x
			s.y2 = s.y1
			s.y1 = y

			data[i] = y
		}
	}
}
