package automix

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-automix/internal/dynamics"
	"github.com/tphakala/go-audio-automix/internal/eq"
)

// Common errors returned by the auto-mixer.
var (
	// ErrInvalidSettings indicates invalid auto-mixer configuration.
	ErrInvalidSettings = errors.New("invalid auto-mixer settings")

	// ErrInvalidInput indicates malformed caller input (zero-channel
	// buffers, nil tracks, mismatched parameter shapes). It is the only
	// condition that aborts processing; it is always raised before any
	// buffer is mutated.
	ErrInvalidInput = errors.New("invalid input")
)

// FilterType selects the response of an EQ band.
type FilterType int

const (
	// FilterPeak is a bell-shaped boost or cut around the center frequency.
	FilterPeak FilterType = iota

	// FilterLowShelf boosts or cuts below the corner frequency.
	FilterLowShelf

	// FilterHighShelf boosts or cuts above the corner frequency.
	FilterHighShelf

	// FilterLowPass attenuates above the cutoff frequency.
	FilterLowPass

	// FilterHighPass attenuates below the cutoff frequency.
	FilterHighPass
)

// EQBand describes one equalizer band. Frequency is in Hz and must lie in
// (0, sampleRate/2), Gain is in dB, Q must be positive.
type EQBand struct {
	Frequency float64
	Gain      float64
	Q         float64
	Type      FilterType
}

// toInternal converts the public band to the equalizer package's model.
func (b EQBand) toInternal() eq.Band {
	band := eq.Band{Frequency: b.Frequency, Gain: b.Gain, Q: b.Q}
	switch b.Type {
	case FilterLowShelf:
		band.Type = eq.LowShelf
	case FilterHighShelf:
		band.Type = eq.HighShelf
	case FilterLowPass:
		band.Type = eq.LowPass
	case FilterHighPass:
		band.Type = eq.HighPass
	default:
		band.Type = eq.Peak
	}
	return band
}

// CompressorSettings holds dynamic-range compressor parameters.
// Threshold, Knee and MakeupGain are in dB, Attack and Release in
// milliseconds, Ratio is the compression ratio (2 means 2:1).
type CompressorSettings struct {
	Threshold  float64
	Ratio      float64
	Attack     float64
	Release    float64
	Knee       float64
	MakeupGain float64
}

// toInternal converts to the dynamics package's settings model.
func (s CompressorSettings) toInternal() dynamics.Settings {
	return dynamics.Settings{
		Threshold:  s.Threshold,
		Ratio:      s.Ratio,
		Attack:     s.Attack,
		Release:    s.Release,
		Knee:       s.Knee,
		MakeupGain: s.MakeupGain,
	}
}

// Settings configures an AutoMixer. Zero values for SampleRate fall back
// to DefaultSampleRate; use DefaultSettings for a fully populated baseline.
type Settings struct {
	// SampleRate is the sample rate of all track buffers in Hz.
	SampleRate float64

	// TargetLoudness is the per-track loudness target on the engine's
	// mean-square dB scale (see AutoMixer docs for the loudness proxy).
	TargetLoudness float64

	// MaxGainReduction caps how far a track may be turned down, in dB.
	// Boost toward the target is not capped.
	MaxGainReduction float64

	// FrequencySeparation is the minimum spectral energy difference, in
	// dB, that conflict resolution establishes between two tracks whose
	// dominant frequencies collide.
	FrequencySeparation float64

	// EnableDynamicEQ enables frequency-conflict resolution and per-track
	// corrective EQ.
	EnableDynamicEQ bool

	// EnableSpatialProcessing enables automatic stereo placement. When
	// disabled every track stays centered.
	EnableSpatialProcessing bool

	// EnableParallel fans per-track analysis out across goroutines.
	// Results are identical to sequential analysis.
	EnableParallel bool

	// MixBusRatio is the glue compressor's ratio on the stereo bus.
	MixBusRatio float64

	// MixBusThreshold is the glue compressor's threshold in dB.
	MixBusThreshold float64
}

// DefaultSettings returns the recommended baseline configuration.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:              DefaultSampleRate,
		TargetLoudness:          defaultTargetLoudness,
		MaxGainReduction:        defaultMaxGainReduction,
		FrequencySeparation:     defaultFrequencySeparation,
		EnableDynamicEQ:         true,
		EnableSpatialProcessing: true,
		EnableParallel:          false,
		MixBusRatio:             defaultMixBusRatio,
		MixBusThreshold:         defaultMixBusThreshold,
	}
}

// Validate checks the settings, applying the SampleRate fallback.
func (s *Settings) Validate() error {
	if s.SampleRate == 0 {
		s.SampleRate = DefaultSampleRate
	}
	if s.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidSettings, s.SampleRate)
	}
	if s.MaxGainReduction < 0 {
		return fmt.Errorf("%w: max gain reduction must be >= 0 dB, got %v", ErrInvalidSettings, s.MaxGainReduction)
	}
	if s.FrequencySeparation < 0 {
		return fmt.Errorf("%w: frequency separation must be >= 0 dB, got %v", ErrInvalidSettings, s.FrequencySeparation)
	}
	if s.MixBusRatio < 1 {
		return fmt.Errorf("%w: mix bus ratio must be >= 1, got %v", ErrInvalidSettings, s.MixBusRatio)
	}
	return nil
}

// MixParameters is the result of an analysis pass: one gain, EQ band list
// and pan position per track, plus the mix bus compressor settings.
// Parameters are produced once per Analyze call and consumed by Apply;
// they are not mutated after creation.
type MixParameters struct {
	// TrackGains holds linear per-track gains.
	TrackGains []float64

	// TrackEQs holds corrective EQ bands per track; tracks without
	// spectral conflicts have empty band lists.
	TrackEQs [][]EQBand

	// PanPositions holds per-track stereo positions in [-1, 1], where -1
	// is hard left, 0 center and +1 hard right.
	PanPositions []float64

	// BusCompressor configures the glue compressor applied to the summed
	// stereo bus.
	BusCompressor CompressorSettings
}

// NumTracks returns the number of tracks these parameters describe.
func (p *MixParameters) NumTracks() int {
	return len(p.TrackGains)
}
