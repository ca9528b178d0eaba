// Package automix provides automatic multi-track audio mixing in pure Go.
//
// Given N independent tracks as in-memory sample buffers, the engine
// computes per-track gain, corrective equalization and stereo placement,
// then sums the tracks into a balanced stereo mix with glue compression on
// the bus — no manual intervention required.
//
// # Features
//
//   - Mean-square loudness balancing toward a configurable target level
//   - Spectral-conflict detection with corrective EQ cuts, driven by a
//     real Hann-windowed FFT (gonum) rather than heuristics
//   - Automatic constant-power stereo placement, biased by spectral
//     centroid so bright tracks sit wider than bass-heavy ones
//   - Soft-knee mix bus compression with a linked stereo envelope
//   - Optional SIMD acceleration via github.com/tphakala/simd
//   - Optional parallel per-track analysis
//
// # Quick Start
//
// For simple one-shot mixing:
//
//	mix, err := automix.MixTracks([]*automix.Buffer{drums, bass, vocals})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For control over analysis and application:
//
//	settings := automix.DefaultSettings()
//	settings.TargetLoudness = -14
//	mixer, err := automix.New(&settings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	params, err := mixer.Analyze(tracks)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Inspect or tweak params here.
//	mix, err := mixer.Apply(tracks, params)
//
// # Processing Model
//
// Analyze reads the tracks and produces [MixParameters]; Apply consumes
// the parameters and produces the stereo bus:
//
//	tracks -> Analyze -> MixParameters -> Apply -> stereo Buffer
//
// Multichannel tracks are downmixed to mono before placement, so the
// engine decides each track's position in the stereo field itself. Size
// mismatches between buffers are resolved by operating on the overlapping
// region; shorter tracks contribute silence beyond their own length.
//
// # Loudness
//
// Track loudness is a mean-square energy proxy mapped to a dB scale
// (-0.691 + 10*log10(meanSquare)). It deliberately is not an ITU-R
// BS.1770 measurement; it needs no filter chain and behaves predictably
// on short buffers while still ranking program material sensibly.
//
// # Thread Safety
//
// Buffers and processor instances are single-owner: an [AutoMixer], and
// any buffer passed to it, must not be used from multiple goroutines at
// once. Internally, analysis may fan out across goroutines when
// [Settings].EnableParallel is set; results are identical to the
// sequential path.
package automix
