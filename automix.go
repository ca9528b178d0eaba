package automix

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tphakala/go-audio-automix/internal/dynamics"
	"github.com/tphakala/go-audio-automix/internal/eq"
	"github.com/tphakala/go-audio-automix/internal/simdops"
	"github.com/tphakala/go-audio-automix/internal/spectral"
)

// AutoMixer computes and applies per-track gain, corrective EQ and stereo
// placement so that a set of tracks sums into a balanced stereo mix.
//
// The loudness measure is a mean-square energy proxy mapped to a dB scale
// (-0.691 + 10*log10(meanSquare)), not an ITU-R BS.1770 measurement.
//
// The mixer owns its spectrum analyzer and bus compressor for its whole
// lifetime. Analyze and Apply are synchronous and run to completion; a
// single AutoMixer instance must not be used concurrently. The bus
// compressor's envelope persists across Apply calls so consecutive blocks
// of the same program compress continuously; call Reset between unrelated
// programs.
type AutoMixer struct {
	settings Settings
	analyzer *spectral.Analyzer
	busComp  *dynamics.Compressor
}

// New creates an auto-mixer. A nil settings pointer selects
// DefaultSettings; otherwise the settings are validated and copied.
func New(settings *Settings) (*AutoMixer, error) {
	if settings == nil {
		defaults := DefaultSettings()
		settings = &defaults
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &AutoMixer{
		settings: *settings,
		analyzer: spectral.NewAnalyzer(spectral.DefaultSize),
		busComp:  dynamics.New(dynamics.DefaultSettings(), settings.SampleRate),
	}, nil
}

// Settings returns a copy of the active settings.
func (m *AutoMixer) Settings() Settings {
	return m.settings
}

// Reset clears the bus compressor envelope, detaching the next Apply call
// from previously processed audio.
func (m *AutoMixer) Reset() {
	m.busComp.Reset()
}

// Process analyzes the tracks and applies the resulting parameters in one
// call, returning the mixed stereo buffer.
func (m *AutoMixer) Process(tracks []*Buffer) (*Buffer, error) {
	params, err := m.Analyze(tracks)
	if err != nil {
		return nil, err
	}
	return m.Apply(tracks, params)
}

// trackMeasure holds the per-track analysis results. Spectral fields are
// only populated when dynamic EQ or spatial processing needs them.
type trackMeasure struct {
	loudness    float64
	mags        []float64
	dominantBin int
	centroid    float64
}

// Analyze measures all tracks and computes mix parameters: linear gains
// toward the target loudness, corrective EQ for spectral conflicts, pan
// positions and the bus compressor settings. The tracks are read but never
// mutated.
func (m *AutoMixer) Analyze(tracks []*Buffer) (*MixParameters, error) {
	if err := validateTracks(tracks); err != nil {
		return nil, err
	}

	measures := m.measureTracks(tracks)

	params := &MixParameters{
		TrackGains:   make([]float64, len(tracks)),
		TrackEQs:     make([][]EQBand, len(tracks)),
		PanPositions: make([]float64, len(tracks)),
		BusCompressor: CompressorSettings{
			Threshold:  m.settings.MixBusThreshold,
			Ratio:      m.settings.MixBusRatio,
			Attack:     busAttackMs,
			Release:    busReleaseMs,
			Knee:       busKneeDB,
			MakeupGain: busMakeupDB,
		},
	}

	for i := range measures {
		gainDB := m.settings.TargetLoudness - measures[i].loudness
		// Reduction is capped, boost toward the target is not.
		gainDB = math.Max(gainDB, -m.settings.MaxGainReduction)
		params.TrackGains[i] = math.Pow(10, gainDB/dbPerDecade)
	}

	if m.settings.EnableDynamicEQ {
		m.resolveFrequencyConflicts(measures, params)
	}

	if m.settings.EnableSpatialProcessing {
		m.fillPanPositions(measures, params.PanPositions)
	}

	return params, nil
}

// Apply mixes the tracks down to a stereo buffer using previously computed
// parameters: per-track gain, EQ cascade and constant-power panning, then
// glue compression on the summed bus. An empty track list yields a stereo
// buffer with zero samples.
func (m *AutoMixer) Apply(tracks []*Buffer, params *MixParameters) (*Buffer, error) {
	if len(tracks) == 0 {
		return NewBuffer(stereoChannels, 0)
	}
	if err := validateTracks(tracks); err != nil {
		return nil, err
	}
	if params == nil || len(params.TrackGains) != len(tracks) ||
		len(params.TrackEQs) != len(tracks) || len(params.PanPositions) != len(tracks) {
		return nil, fmt.Errorf("%w: parameters do not match track count %d", ErrInvalidInput, len(tracks))
	}

	maxSamples := 0
	for _, track := range tracks {
		maxSamples = max(maxSamples, track.Samples())
	}

	bus, err := NewBuffer(stereoChannels, maxSamples)
	if err != nil {
		return nil, err
	}

	ops := simdops.Float64Ops()
	for i, track := range tracks {
		mono := track.MonoMix()
		ops.Scale(mono, mono, params.TrackGains[i])

		if m.settings.EnableDynamicEQ && len(params.TrackEQs[i]) > 0 {
			equalizer := eq.New(m.settings.SampleRate)
			for b, band := range params.TrackEQs[i] {
				equalizer.SetBand(b, band.toInternal())
			}
			equalizer.Process(mono)
		}

		left, right := panGains(params.PanPositions[i])
		bus.AccumulateChannel(0, mono, left)
		bus.AccumulateChannel(1, mono, right)
	}

	// Glue compression with a single linked envelope so left/right gains
	// stay identical and the stereo image does not shift.
	m.busComp.SetSettings(params.BusCompressor.toInternal())
	m.busComp.ProcessLinked(bus.Channel(0), bus.Channel(1))

	return bus, nil
}

// measureTracks runs per-track analysis, sequentially or fanned out across
// goroutines when EnableParallel is set. Each track's measurement is
// independent; parallel workers use private analyzers because analyzer
// scratch buffers are not shareable.
func (m *AutoMixer) measureTracks(tracks []*Buffer) []trackMeasure {
	needSpectrum := m.settings.EnableDynamicEQ || m.settings.EnableSpatialProcessing
	measures := make([]trackMeasure, len(tracks))

	if !m.settings.EnableParallel || len(tracks) <= 1 {
		for i, track := range tracks {
			measures[i] = m.measureTrack(m.analyzer, track, needSpectrum)
		}
		return measures
	}

	var wg sync.WaitGroup
	for i, track := range tracks {
		wg.Add(1)
		go func(idx int, t *Buffer) {
			defer wg.Done()
			analyzer := spectral.NewAnalyzer(m.analyzer.Size())
			measures[idx] = m.measureTrack(analyzer, t, needSpectrum)
		}(i, track)
	}
	wg.Wait()

	return measures
}

// measureTrack computes the loudness proxy and, when requested, the
// magnitude spectrum, dominant bin and spectral centroid of one track.
func (m *AutoMixer) measureTrack(analyzer *spectral.Analyzer, track *Buffer, needSpectrum bool) trackMeasure {
	measure := trackMeasure{
		loudness:    loudnessProxy(track),
		dominantBin: -1,
	}

	if !needSpectrum {
		return measure
	}

	mags := analyzer.Magnitudes(track.MonoMix())
	measure.mags = make([]float64, len(mags))
	copy(measure.mags, mags)
	measure.dominantBin = spectral.DominantBin(measure.mags)
	measure.centroid = analyzer.Centroid(measure.mags, m.settings.SampleRate)

	return measure
}

// loudnessProxy maps a track's mean-square energy to a dB-like scale.
// Silence and zero-length tracks produce the finite floor value, never NaN
// or -Inf.
func loudnessProxy(track *Buffer) float64 {
	total := track.Channels() * track.Samples()

	meanSquare := 0.0
	if total > 0 {
		meanSquare = track.Energy() / float64(total)
	}

	return loudnessOffset + powerDBPerDecade*math.Log10(meanSquare+energyFloor)
}

// resolveFrequencyConflicts injects corrective EQ cuts where two tracks'
// dominant frequencies collide. The louder track keeps the contested
// region (ties favor the earlier track); the other receives a peak cut at
// its dominant frequency sized to push the spectral energy difference to
// at least the configured separation. Tracks without conflicts keep empty
// band lists, and near-silent spectra are skipped entirely.
func (m *AutoMixer) resolveFrequencyConflicts(measures []trackMeasure, params *MixParameters) {
	sampleRate := m.settings.SampleRate

	for i := range measures {
		if measures[i].dominantBin < 0 {
			continue
		}
		for j := i + 1; j < len(measures); j++ {
			if measures[j].dominantBin < 0 {
				continue
			}

			freqI := m.analyzer.BinToFreq(measures[i].dominantBin, sampleRate)
			freqJ := m.analyzer.BinToFreq(measures[j].dominantBin, sampleRate)
			if math.Abs(freqI-freqJ) > conflictBandwidthHz {
				continue
			}

			keep, cut := i, j
			if measures[j].loudness > measures[i].loudness {
				keep, cut = j, i
			}

			bin := measures[cut].dominantBin
			diffDB := magnitudeDB(measures[keep].mags[bin]) - magnitudeDB(measures[cut].mags[bin])
			cutDB := m.settings.FrequencySeparation - diffDB
			if cutDB <= 0 {
				continue
			}

			params.TrackEQs[cut] = append(params.TrackEQs[cut], EQBand{
				Frequency: m.analyzer.BinToFreq(bin, sampleRate),
				Gain:      -cutDB,
				Q:         conflictQ,
				Type:      FilterPeak,
			})
		}
	}
}

// fillPanPositions distributes tracks across the stereo field. A single
// track stays centered; multiple tracks get evenly spaced slots across
// [-panRange, +panRange]. Slots are assigned center-out by ascending
// spectral centroid, placing low-frequency tracks near the center and
// bright tracks toward the edges.
func (m *AutoMixer) fillPanPositions(measures []trackMeasure, positions []float64) {
	n := len(measures)
	if n <= 1 {
		return
	}

	slots := make([]float64, n)
	step := 2 * panRange / float64(n-1)
	for k := range slots {
		slots[k] = -panRange + float64(k)*step
	}

	slotOrder := make([]int, n)
	trackOrder := make([]int, n)
	for k := range slotOrder {
		slotOrder[k] = k
		trackOrder[k] = k
	}
	sort.SliceStable(slotOrder, func(a, b int) bool {
		return math.Abs(slots[slotOrder[a]]) < math.Abs(slots[slotOrder[b]])
	})
	sort.SliceStable(trackOrder, func(a, b int) bool {
		return measures[trackOrder[a]].centroid < measures[trackOrder[b]].centroid
	})

	for k := range trackOrder {
		positions[trackOrder[k]] = slots[slotOrder[k]]
	}
}

// panGains converts a pan position in [-1, 1] to constant-power left and
// right gains: the position maps to an angle in [0, pi/2] with
// left = cos(theta), right = sin(theta), keeping perceived loudness even
// across the field. Out-of-range positions are clamped.
func panGains(pan float64) (left, right float64) {
	pan = math.Max(-1, math.Min(1, pan))
	theta := (pan + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

// magnitudeDB converts a linear spectral magnitude to dB with a floor that
// keeps silence finite.
func magnitudeDB(mag float64) float64 {
	return dbPerDecade * math.Log10(math.Max(mag, energyFloor))
}

// validateTracks rejects nil or zero-channel track buffers before any
// processing begins.
func validateTracks(tracks []*Buffer) error {
	for i, track := range tracks {
		if track == nil {
			return fmt.Errorf("%w: track %d is nil", ErrInvalidInput, i)
		}
		if track.Channels() < 1 {
			return fmt.Errorf("%w: track %d has no channels", ErrInvalidInput, i)
		}
	}
	return nil
}
