package eq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-automix/internal/testutil"
)

const testSampleRate = 48000.0

// TestZeroGainPeakIsIdentity verifies that a 0 dB peak band passes the
// signal through unchanged within numeric tolerance.
func TestZeroGainPeakIsIdentity(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Gain: 0, Q: 1, Type: Peak})

	input := testutil.Sine(440, testSampleRate, 0.5, 4096)
	output := make([]float64, len(input))
	copy(output, input)

	e.Process(output)

	testutil.AssertSlicesInDelta(t, input, output, testutil.FilterTolerance)
}

func TestEmptyCascadeIsIdentity(t *testing.T) {
	e := New(testSampleRate)

	input := testutil.Sine(440, testSampleRate, 0.5, 1024)
	output := make([]float64, len(input))
	copy(output, input)

	e.Process(output)

	assert.Equal(t, input, output)
}

// TestSetBandGrowth verifies that setting a band past the current count
// grows the cascade with identity placeholders.
func TestSetBandGrowth(t *testing.T) {
	e := New(testSampleRate)
	e.SetBand(2, Band{Frequency: 2000, Gain: -6, Q: 1, Type: Peak})

	require.Equal(t, 3, e.NumBands())

	// Implicit bands are 0 dB peaks.
	for i := range 2 {
		band := e.Band(i)
		assert.Zero(t, band.Gain, "implicit band %d has gain", i)
		assert.Equal(t, Peak, band.Type, "implicit band %d type", i)
	}
	assert.Equal(t, -6.0, e.Band(2).Gain)

	// The cascade with two identity placeholders and one cut behaves
	// identically to the cut alone.
	single := New(testSampleRate)
	single.AddBand(Band{Frequency: 2000, Gain: -6, Q: 1, Type: Peak})

	input := testutil.Sine(2000, testSampleRate, 0.5, 4096)
	grown := make([]float64, len(input))
	copy(grown, input)
	alone := make([]float64, len(input))
	copy(alone, input)

	e.Process(grown)
	single.Process(alone)

	testutil.AssertSlicesInDelta(t, alone, grown, testutil.FilterTolerance)
}

func TestLowPassAttenuatesHighFrequencies(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Q: 0.707, Type: LowPass})

	high := testutil.Sine(8000, testSampleRate, 0.5, 9600)
	filtered := make([]float64, len(high))
	copy(filtered, high)
	e.Process(filtered)

	// An 8 kHz tone through a 1 kHz second-order low-pass loses well over
	// 30 dB.
	assert.Less(t, testutil.RMS(filtered), 0.05*testutil.RMS(high))

	// A tone an octave below the cutoff passes nearly untouched.
	e.Reset()
	low := testutil.Sine(500, testSampleRate, 0.5, 9600)
	passed := make([]float64, len(low))
	copy(passed, low)
	e.Process(passed)

	testutil.AssertInRange(t, testutil.RMS(passed)/testutil.RMS(low), 0.9, 1.2)
}

func TestHighPassAttenuatesLowFrequencies(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 2000, Q: 0.707, Type: HighPass})

	low := testutil.Sine(100, testSampleRate, 0.5, 9600)
	filtered := make([]float64, len(low))
	copy(filtered, low)
	e.Process(filtered)

	assert.Less(t, testutil.RMS(filtered), 0.05*testutil.RMS(low))
}

// TestPeakBoostAtCenterFrequency verifies that a +12 dB peak band raises a
// tone at its center frequency by roughly that amount.
func TestPeakBoostAtCenterFrequency(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Gain: 12, Q: 2, Type: Peak})

	input := testutil.Sine(1000, testSampleRate, 0.1, 48000)
	output := make([]float64, len(input))
	copy(output, input)
	e.Process(output)

	// +12 dB is a factor of ~3.98; allow slack for the filter transient.
	ratio := testutil.RMS(output) / testutil.RMS(input)
	testutil.AssertInRange(t, ratio, 3.5, 4.5)
	testutil.AssertNoNaNOrInf(t, output)
}

func TestPeakCutAtCenterFrequency(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Gain: -12, Q: 2, Type: Peak})

	input := testutil.Sine(1000, testSampleRate, 0.5, 48000)
	output := make([]float64, len(input))
	copy(output, input)
	e.Process(output)

	ratio := testutil.RMS(output) / testutil.RMS(input)
	testutil.AssertInRange(t, ratio, 0.2, 0.3)
}

func TestShelfFilters(t *testing.T) {
	tests := []struct {
		name     string
		band     Band
		toneFreq float64
		minRatio float64
		maxRatio float64
	}{
		{
			name:     "low shelf boosts bass",
			band:     Band{Frequency: 500, Gain: 6, Q: 0.707, Type: LowShelf},
			toneFreq: 100,
			minRatio: 1.8,
			maxRatio: 2.2,
		},
		{
			name:     "low shelf leaves treble",
			band:     Band{Frequency: 500, Gain: 6, Q: 0.707, Type: LowShelf},
			toneFreq: 8000,
			minRatio: 0.9,
			maxRatio: 1.2,
		},
		{
			name:     "high shelf cuts treble",
			band:     Band{Frequency: 2000, Gain: -6, Q: 0.707, Type: HighShelf},
			toneFreq: 10000,
			minRatio: 0.4,
			maxRatio: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(testSampleRate)
			e.AddBand(tt.band)

			input := testutil.Sine(tt.toneFreq, testSampleRate, 0.25, 48000)
			output := make([]float64, len(input))
			copy(output, input)
			e.Process(output)

			ratio := testutil.RMS(output) / testutil.RMS(input)
			testutil.AssertInRange(t, ratio, tt.minRatio, tt.maxRatio)
		})
	}
}

// TestCascadeOrder verifies that bands are applied in sequence with each
// band's output feeding the next: a boost followed by an equal cut at the
// same frequency is near identity.
func TestCascadeOrder(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Gain: 6, Q: 1, Type: Peak})
	e.AddBand(Band{Frequency: 1000, Gain: -6, Q: 1, Type: Peak})

	input := testutil.Sine(1000, testSampleRate, 0.3, 48000)
	output := make([]float64, len(input))
	copy(output, input)
	e.Process(output)

	ratio := testutil.RMS(output) / testutil.RMS(input)
	testutil.AssertInRange(t, ratio, 0.95, 1.05)
}

func TestClearBands(t *testing.T) {
	e := New(testSampleRate)
	e.AddBand(Band{Frequency: 1000, Gain: -12, Q: 1, Type: Peak})
	require.Equal(t, 1, e.NumBands())

	e.ClearBands()
	assert.Zero(t, e.NumBands())

	// After clearing, processing is a pass-through again.
	input := testutil.Sine(1000, testSampleRate, 0.5, 1024)
	output := make([]float64, len(input))
	copy(output, input)
	e.Process(output)

	assert.Equal(t, input, output)
}

// TestResetClearsDelayLines verifies that Reset restores the exact output
// of a freshly configured equalizer.
func TestResetClearsDelayLines(t *testing.T) {
	band := Band{Frequency: 1000, Gain: -6, Q: 1, Type: Peak}
	input := testutil.Sine(1000, testSampleRate, 0.5, 2048)

	fresh := New(testSampleRate)
	fresh.AddBand(band)
	want := make([]float64, len(input))
	copy(want, input)
	fresh.Process(want)

	reused := New(testSampleRate)
	reused.AddBand(band)
	warmup := make([]float64, len(input))
	copy(warmup, input)
	reused.Process(warmup)
	reused.Reset()

	got := make([]float64, len(input))
	copy(got, input)
	reused.Process(got)

	assert.Equal(t, want, got)
}

func TestInvalidBandIsIdentity(t *testing.T) {
	// Out-of-range parameters fall back to a pass-through rather than
	// producing NaN.
	invalid := []Band{
		{Frequency: 0, Gain: 6, Q: 1, Type: Peak},
		{Frequency: -100, Gain: 6, Q: 1, Type: Peak},
		{Frequency: testSampleRate, Gain: 6, Q: 1, Type: Peak},
		{Frequency: 1000, Gain: 6, Q: 0, Type: Peak},
	}

	input := testutil.Sine(440, testSampleRate, 0.5, 1024)
	for _, band := range invalid {
		e := New(testSampleRate)
		e.AddBand(band)

		output := make([]float64, len(input))
		copy(output, input)
		e.Process(output)

		testutil.AssertNoNaNOrInf(t, output, "band %+v", band)
		testutil.AssertSlicesInDelta(t, input, output, testutil.FilterTolerance)
	}
}
