package compiler

import "github.com/trackforce/ffbcore/curve"

// compileResponseCurve precomputes the LUT for a response-curve node from
// whichever of Bezier or Parametric validation has already confirmed is
// set.
func compileResponseCurve(c *ResponseCurveConfig) (*curve.LUT, error) {
	if c.Bezier != nil {
		return curve.Compile(*c.Bezier), nil
	}
	return curve.New(c.Parametric.Type, curve.Param{Exponent: c.Parametric.Exponent}), nil
}
