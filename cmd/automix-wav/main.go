// Command automix-wav mixes multiple WAV files into a balanced stereo mix.
//
// Usage:
//
//	automix-wav -o mix.wav drums.wav bass.wav vocals.wav
//	automix-wav -o mix.wav -target -14 -no-pan stems/*.wav
//
// All inputs must share one sample rate; the output is 16-bit stereo at
// that rate.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	automix "github.com/tphakala/go-audio-automix"
)

const (
	// CLI defaults
	defaultOutputPath = "mix.wav"
	minRequiredArgs   = 1

	// Output format
	outputBitDepth = 16
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outputPath := flag.String("o", defaultOutputPath, "Output WAV path")
	target := flag.Float64("target", automix.DefaultSettings().TargetLoudness, "Target loudness in dB")
	noEQ := flag.Bool("no-eq", false, "Disable frequency-conflict EQ")
	noPan := flag.Bool("no-pan", false, "Disable automatic stereo placement")
	parallel := flag.Bool("parallel", true, "Analyze tracks in parallel")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input1.wav [input2.wav ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -o mix.wav drums.wav bass.wav vocals.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o mix.wav -target -14 stems/*.wav\n", os.Args[0])
		return fmt.Errorf("no input files")
	}

	// Decode all inputs
	tracks := make([]*automix.Buffer, 0, len(args))
	sampleRate := 0
	for _, path := range args {
		track, rate, err := readWAVTrack(path)
		if err != nil {
			return err
		}

		if sampleRate == 0 {
			sampleRate = rate
		} else if rate != sampleRate {
			return fmt.Errorf("sample rate mismatch: %s is %d Hz, want %d Hz", path, rate, sampleRate)
		}

		if *verbose {
			log.Printf("Loaded %s: %d channels, %d samples at %d Hz",
				filepath.Base(path), track.Channels(), track.Samples(), rate)
		}
		tracks = append(tracks, track)
	}

	// Configure and run the mixer
	settings := automix.DefaultSettings()
	settings.SampleRate = float64(sampleRate)
	settings.TargetLoudness = *target
	settings.EnableDynamicEQ = !*noEQ
	settings.EnableSpatialProcessing = !*noPan
	settings.EnableParallel = *parallel

	mixer, err := automix.New(&settings)
	if err != nil {
		return err
	}

	start := time.Now()
	params, err := mixer.Analyze(tracks)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if *verbose {
		for i := range tracks {
			log.Printf("Track %d: gain %.3f, pan %+.2f, %d EQ bands",
				i, params.TrackGains[i], params.PanPositions[i], len(params.TrackEQs[i]))
		}
	}

	mix, err := mixer.Apply(tracks, params)
	if err != nil {
		return fmt.Errorf("mixing failed: %w", err)
	}
	elapsed := time.Since(start)

	if err := writeWAVStereo(*outputPath, mix, sampleRate, outputBitDepth); err != nil {
		return err
	}

	fmt.Printf("Mixed %d tracks -> %s\n", len(tracks), filepath.Base(*outputPath))
	fmt.Printf("  %d samples at %d Hz, %d-bit stereo\n", mix.Samples(), sampleRate, outputBitDepth)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(mix.Samples())/float64(sampleRate)/elapsed.Seconds())

	return nil
}
