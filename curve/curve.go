// Package curve implements the response-curve lookup table used by the
// pipeline's response-curve filter node: a 257-entry table precomputed at
// load time from a cubic Bezier or a parametric curve family, evaluated at
// 1kHz with two lookups and one linear interpolation.
package curve

import "math"

// lutEntries is the number of entries in a LUT, one more than the 256
// spec.md calls for so the final input sample (+1.0) has an exact
// endpoint entry rather than needing to clamp the upper interpolation
// index.
const lutEntries = 257

// LUT is a precomputed response-curve lookup table. Never built on the hot
// path: construct with Compile (from a Bezier) or New (from a Type),
// both non-RT, then call Lookup from the RT loop.
type LUT struct {
	table [lutEntries]float32
}

// Lookup maps x in [-1.0, 1.0] through the table with linear interpolation
// between the two nearest entries. RT-safe: O(1), no allocation.
func (l *LUT) Lookup(x float32) float32 {
	if x <= -1 {
		return l.table[0]
	}
	if x >= 1 {
		return l.table[lutEntries-1]
	}
	pos := (x + 1) / 2 * float32(lutEntries-1)
	i := int(pos)
	frac := pos - float32(i)
	if i >= lutEntries-1 {
		return l.table[lutEntries-1]
	}
	return l.table[i] + frac*(l.table[i+1]-l.table[i])
}

// Point is a 2D control point for a cubic Bezier curve, in normalized
// [-1, 1] x/y space.
type Point struct {
	X, Y float32
}

// Cubic is a cubic Bezier curve defined by four control points, matching
// the shape of spec.md's "four Bezier control points" curve specification.
type Cubic struct {
	C0, C1, C2, C3 Point
}

// Compile precomputes a LUT from a cubic Bezier curve. Not RT-safe: uses
// Newton-Raphson iteration to invert the curve's parametric X(t) for each
// table entry's input X. Call only at profile/pipeline load time.
func Compile(c Cubic) *LUT {
	lut := &LUT{}
	for i := 0; i < lutEntries; i++ {
		x := float32(i)/float32(lutEntries-1)*2 - 1
		t := invertX(c, x)
		lut.table[i] = clamp(bezierY(c, t))
	}
	return lut
}

// bezierX evaluates the curve's X component at parameter t in [0, 1].
func bezierX(c Cubic, t float32) float32 {
	return cubicBlend(c.C0.X, c.C1.X, c.C2.X, c.C3.X, t)
}

// bezierY evaluates the curve's Y component at parameter t in [0, 1].
func bezierY(c Cubic, t float32) float32 {
	return cubicBlend(c.C0.Y, c.C1.Y, c.C2.Y, c.C3.Y, t)
}

func cubicBlend(p0, p1, p2, p3, t float32) float32 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

func bezierXDeriv(c Cubic, t float32) float32 {
	mt := 1 - t
	return 3*mt*mt*(c.C1.X-c.C0.X) + 6*mt*t*(c.C2.X-c.C1.X) + 3*t*t*(c.C3.X-c.C2.X)
}

// invertX finds t such that bezierX(c, t) == x, via Newton-Raphson. At
// most 8 iterations, as in the reference implementation this module is
// grounded on. There is no bisection fallback: when the derivative's
// magnitude drops below 1e-6 the iteration stops and the current t is
// used.
func invertX(c Cubic, x float32) float32 {
	t := (x + 1) / 2 // initial guess assuming a roughly monotonic, near-linear curve
	for i := 0; i < 8; i++ {
		fx := bezierX(c, t) - x
		dfx := bezierXDeriv(c, t)
		if float32(math.Abs(float64(dfx))) < 1e-6 {
			break
		}
		t -= fx / dfx
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}
	return t
}

func clamp(y float32) float32 {
	if y < -1 {
		return -1
	}
	if y > 1 {
		return 1
	}
	return y
}

// Type enumerates the closed set of parametric curve families supported in
// addition to an explicit Bezier (SPEC_FULL.md §3 supplement; spec.md §3
// itself only requires "Bezier control points OR a parametric family").
type Type uint8

const (
	// Linear is the identity mapping.
	Linear Type = iota
	// Exponential is a power curve for enhanced response near full
	// deflection.
	Exponential
	// Logarithmic is a compressed response for fine control near center.
	Logarithmic
)

// Param holds the single shape parameter used by Exponential and
// Logarithmic curve families. Ignored for Linear.
type Param struct {
	// Exponent controls curve steepness; must be > 0.
	Exponent float64
}

// New precomputes a LUT from a parametric curve family. Not RT-safe; call
// only at load time.
func New(t Type, p Param) *LUT {
	lut := &LUT{}
	exp := p.Exponent
	if exp <= 0 {
		exp = 1
	}
	for i := 0; i < lutEntries; i++ {
		x := float64(i)/float64(lutEntries-1)*2 - 1
		var y float64
		switch t {
		case Exponential:
			y = math.Copysign(math.Pow(math.Abs(x), exp), x)
		case Logarithmic:
			y = math.Copysign(math.Log1p(math.Abs(x)*(math.E-1))/1, x)
		default:
			y = x
		}
		lut.table[i] = clamp(float32(y))
	}
	return lut
}
