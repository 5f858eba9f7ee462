package compiler

import "math"

// notchCoeffs derives RBJ-cookbook biquad notch coefficients for a band-
// reject stage centered at n.Hz with quality n.Q, sampled at sampleRateHz.
// GainDB of 0 collapses the stage to an exact identity filter rather than a
// full null, so a caller can dial partial notch depth; a more negative
// GainDB approaches a full notch.
//
// Returns InvalidConfig if the resulting poles are not strictly inside the
// unit circle (spec.md §4.E's stability check) — this cannot happen for a
// standard RBJ notch design with finite Q > 0 and 0 < Hz < nyquist, but the
// check runs unconditionally since a future curve family or malformed Q
// could otherwise ship an unstable filter silently.
func notchCoeffs(n NotchConfig, which string) (b0, b1, b2, a1, a2 float32, err error) {
	w0 := 2 * math.Pi * float64(n.Hz) / sampleRateHz
	alpha := math.Sin(w0) / (2 * float64(n.Q))
	cosw0 := math.Cos(w0)

	depth := 1 - math.Pow(10, float64(n.GainDB)/20) // 0 at 0dB, ->1 as gain -> -inf

	fb0 := 1.0
	fb1 := -2 * cosw0
	fb2 := 1.0
	fa0 := 1 + alpha
	fa1 := -2 * cosw0
	fa2 := 1 - alpha

	// Blend the notch transfer function with an identity pass-through by
	// depth, so GainDB controls how much of the null is applied.
	nb0 := fb0/fa0*depth + (1 - depth)
	nb1 := fb1 / fa0 * depth
	nb2 := fb2 / fa0 * depth
	na1 := fa1 / fa0 * depth
	na2 := fa2 / fa0 * depth

	poleMagSq := na2
	if !(poleMagSq >= 0 && poleMagSq < 1) {
		return 0, 0, 0, 0, 0, &InvalidConfig{which, "notch poles not strictly inside unit circle"}
	}

	return float32(nb0), float32(nb1), float32(nb2), float32(na1), float32(na2), nil
}
