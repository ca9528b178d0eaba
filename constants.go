package automix

// Channel constants
const (
	stereoChannels = 2 // The mix bus is always stereo
)

// Default auto-mixer settings
const (
	// DefaultSampleRate is the sample rate assumed when settings leave it zero.
	DefaultSampleRate = 48000.0

	defaultTargetLoudness      = -16.0 // Target loudness proxy in dB
	defaultMaxGainReduction    = 12.0  // Maximum per-track gain reduction in dB
	defaultFrequencySeparation = 3.0   // Minimum spectral separation in dB
	defaultMixBusRatio         = 2.0   // Mix bus compression ratio
	defaultMixBusThreshold     = -6.0  // Mix bus compression threshold in dB
)

// Mix bus glue compression time constants
const (
	busAttackMs  = 10.0  // Fast enough to catch summed transients
	busReleaseMs = 100.0 // Slow enough to avoid pumping
	busKneeDB    = 6.0   // Soft knee width for transparent engagement
	busMakeupDB  = 0.0   // Glue compression adds no makeup gain
)

// Analysis constants
const (
	// panRange bounds automatic pan positions to [-panRange, +panRange],
	// keeping every track partially present in both channels.
	panRange = 0.8

	// conflictBandwidthHz is the maximum distance between two tracks'
	// dominant frequencies for them to count as spectrally conflicting.
	conflictBandwidthHz = 50.0

	// conflictQ is the width of corrective EQ cuts injected by
	// frequency-conflict resolution.
	conflictQ = 1.0

	// loudnessOffset aligns the mean-square energy proxy with the dB scale
	// used by the target loudness setting.
	loudnessOffset = -0.691

	// energyFloor keeps log10 finite for silent signals.
	energyFloor = 1e-10
)

// dB conversion constants
const (
	dbPerDecade      = 20.0 // Amplitude dB per log10 decade
	powerDBPerDecade = 10.0 // Power dB per log10 decade
)
