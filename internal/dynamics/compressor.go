// Package dynamics implements dynamic-range processors used by the auto-mixer.
package dynamics

import (
	"math"
)

// Numeric guards for time-constant and level computations.
const (
	// minLinearLevel floors linear levels before dB conversion to avoid -Inf.
	minLinearLevel = 1e-10

	// minTimeMs floors attack/release times so the exp() argument stays finite.
	minTimeMs = 0.01

	// msPerSecond converts millisecond time constants to samples.
	msPerSecond = 1000.0

	// dbPerDecade is the scale factor between amplitude dB and log10.
	dbPerDecade = 20.0
)

// Settings holds compressor parameters. Threshold, Knee and MakeupGain are
// in dB, Ratio is the compression ratio (2 means 2:1), Attack and Release
// are in milliseconds.
type Settings struct {
	Threshold  float64
	Ratio      float64
	Attack     float64
	Release    float64
	Knee       float64
	MakeupGain float64
}

// DefaultSettings returns general-purpose compressor settings.
func DefaultSettings() Settings {
	return Settings{
		Threshold:  -12.0,
		Ratio:      4.0,
		Attack:     10.0,
		Release:    100.0,
		Knee:       6.0,
		MakeupGain: 0.0,
	}
}

// Compressor is a soft-knee dynamic-range compressor with a one-pole
// envelope follower. The envelope persists across Process calls so audio
// can be streamed in blocks; Reset clears it.
//
// A Compressor instance must not be used concurrently.
type Compressor struct {
	settings   Settings
	sampleRate float64

	// Derived time constants, recomputed on settings changes.
	attackCoeff  float64
	releaseCoeff float64

	// Per-instance state.
	envelope        float64
	gainReductionDB float64
}

// New creates a compressor for the given sample rate.
// Out-of-range settings are clamped: ratio below 1 becomes 1 (no
// compression), non-positive times are floored, negative knee becomes 0.
func New(settings Settings, sampleRate float64) *Compressor {
	c := &Compressor{sampleRate: sampleRate}
	c.SetSettings(settings)
	return c
}

// SetSettings replaces the compressor settings and recomputes the derived
// attack and release coefficients. Envelope state is preserved.
func (c *Compressor) SetSettings(settings Settings) {
	if settings.Ratio < 1 {
		settings.Ratio = 1
	}
	if settings.Attack < minTimeMs {
		settings.Attack = minTimeMs
	}
	if settings.Release < minTimeMs {
		settings.Release = minTimeMs
	}
	if settings.Knee < 0 {
		settings.Knee = 0
	}
	c.settings = settings

	attackSamples := settings.Attack * c.sampleRate / msPerSecond
	releaseSamples := settings.Release * c.sampleRate / msPerSecond
	c.attackCoeff = math.Exp(-1.0 / attackSamples)
	c.releaseCoeff = math.Exp(-1.0 / releaseSamples)
}

// Settings returns the active (clamped) settings.
func (c *Compressor) Settings() Settings {
	return c.settings
}

// GainReduction returns the gain reduction in dB applied at the most
// recently processed sample. Read-only telemetry; 0 means no reduction.
func (c *Compressor) GainReduction() float64 {
	return c.gainReductionDB
}

// Reset clears the envelope follower and telemetry.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.gainReductionDB = 0
}

// Process compresses a single channel in place.
func (c *Compressor) Process(data []float64) {
	for i, sample := range data {
		level := math.Abs(sample)
		c.updateEnvelope(level)

		reduction := c.reductionDB(c.envelope)
		gain := math.Pow(10, (c.settings.MakeupGain-reduction)/dbPerDecade)

		data[i] = sample * gain
		c.gainReductionDB = reduction
	}
}

// ProcessLinked compresses a stereo pair in place using one shared envelope
// driven by the louder of the two channels. Linked detection keeps the
// left/right gain identical, so the stereo image does not shift when the
// compressor engages.
func (c *Compressor) ProcessLinked(left, right []float64) {
	n := min(len(left), len(right))
	for i := range n {
		level := math.Max(math.Abs(left[i]), math.Abs(right[i]))
		c.updateEnvelope(level)

		reduction := c.reductionDB(c.envelope)
		gain := math.Pow(10, (c.settings.MakeupGain-reduction)/dbPerDecade)

		left[i] *= gain
		right[i] *= gain
		c.gainReductionDB = reduction
	}
}

// updateEnvelope advances the one-pole follower by one sample. Rising input
// uses the attack coefficient, falling input the release coefficient.
func (c *Compressor) updateEnvelope(level float64) {
	coeff := c.releaseCoeff
	if level > c.envelope {
		coeff = c.attackCoeff
	}
	c.envelope = level + (c.envelope-level)*coeff
}

// reductionDB computes the soft-knee gain reduction in dB for a linear
// envelope level. Below threshold-knee/2 the reduction is exactly 0; above
// threshold+knee/2 it follows the ratio slope; inside the knee the slope is
// blended in with a squared ramp for a smooth transition.
func (c *Compressor) reductionDB(level float64) float64 {
	levelDB := dbPerDecade * math.Log10(math.Max(level, minLinearLevel))

	kneeStart := c.settings.Threshold - c.settings.Knee/2
	kneeEnd := c.settings.Threshold + c.settings.Knee/2
	slope := 1.0 - 1.0/c.settings.Ratio

	switch {
	case levelDB <= kneeStart:
		return 0
	case levelDB >= kneeEnd:
		return (levelDB - c.settings.Threshold) * slope
	default:
		kneeProgress := (levelDB - kneeStart) / c.settings.Knee
		return (levelDB - c.settings.Threshold) * slope * kneeProgress * kneeProgress
	}
}
