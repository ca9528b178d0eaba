package eq

import "math"

// dbPerDoubleDecade converts a dB gain to the RBJ amplitude parameter A
// (A = 10^(dB/40), so that A^2 is the linear power gain).
const dbPerDoubleDecade = 40.0

// coefficients holds one normalized biquad stage:
//
//	y = b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
//
// The denominator a0 is normalized to 1 at design time.
type coefficients struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// identityCoefficients passes the input through unchanged.
func identityCoefficients() coefficients {
	return coefficients{b0: 1}
}

// biquadState is the two-pole delay line of one stage. Each band owns
// exactly one state record; state persists across Process calls until an
// explicit reset.
type biquadState struct {
	x1, x2 float64
	y1, y2 float64
}

// designCoefficients derives normalized biquad coefficients for a band
// using the RBJ audio EQ cookbook formulas. A Peak band with 0 dB gain
// degenerates to the identity filter (A = 1 makes numerator and
// denominator equal). Unknown filter types yield an explicit identity
// passthrough rather than silently borrowing another curve.
func designCoefficients(band Band, sampleRate float64) coefficients {
	// Out-of-range parameters would produce NaN coefficients; treat such
	// bands as pass-throughs.
	if band.Frequency <= 0 || band.Frequency >= sampleRate/2 || band.Q <= 0 {
		return identityCoefficients()
	}

	omega := 2 * math.Pi * band.Frequency / sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2 * band.Q)
	amp := math.Pow(10, band.Gain/dbPerDoubleDecade)

	var b0, b1, b2, a0, a1, a2 float64

	switch band.Type {
	case Peak:
		b0 = 1 + alpha*amp
		b1 = -2 * cosOmega
		b2 = 1 - alpha*amp
		a0 = 1 + alpha/amp
		a1 = -2 * cosOmega
		a2 = 1 - alpha/amp

	case LowShelf:
		sqrtAmpAlpha := 2 * math.Sqrt(amp) * alpha
		b0 = amp * ((amp + 1) - (amp-1)*cosOmega + sqrtAmpAlpha)
		b1 = 2 * amp * ((amp - 1) - (amp+1)*cosOmega)
		b2 = amp * ((amp + 1) - (amp-1)*cosOmega - sqrtAmpAlpha)
		a0 = (amp + 1) + (amp-1)*cosOmega + sqrtAmpAlpha
		a1 = -2 * ((amp - 1) + (amp+1)*cosOmega)
		a2 = (amp + 1) + (amp-1)*cosOmega - sqrtAmpAlpha

	case HighShelf:
		sqrtAmpAlpha := 2 * math.Sqrt(amp) * alpha
		b0 = amp * ((amp + 1) + (amp-1)*cosOmega + sqrtAmpAlpha)
		b1 = -2 * amp * ((amp - 1) + (amp+1)*cosOmega)
		b2 = amp * ((amp + 1) + (amp-1)*cosOmega - sqrtAmpAlpha)
		a0 = (amp + 1) - (amp-1)*cosOmega + sqrtAmpAlpha
		a1 = 2 * ((amp - 1) - (amp+1)*cosOmega)
		a2 = (amp + 1) - (amp-1)*cosOmega - sqrtAmpAlpha

	case LowPass:
		b0 = (1 - cosOmega) / 2
		b1 = 1 - cosOmega
		b2 = (1 - cosOmega) / 2
		a0 = 1 + alpha
		a1 = -2 * cosOmega
		a2 = 1 - alpha

	case HighPass:
		b0 = (1 + cosOmega) / 2
		b1 = -(1 + cosOmega)
		b2 = (1 + cosOmega) / 2
		a0 = 1 + alpha
		a1 = -2 * cosOmega
		a2 = 1 - alpha

	default:
		return identityCoefficients()
	}

	invA0 := 1 / a0
	return coefficients{
		b0: b0 * invA0,
		b1: b1 * invA0,
		b2: b2 * invA0,
		a1: a1 * invA0,
		a2: a2 * invA0,
	}
}
