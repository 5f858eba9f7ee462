package compiler

import (
	"math"
	"testing"

	"github.com/trackforce/ffbcore/curve"
	"github.com/trackforce/ffbcore/frame"
)

func TestCompileEmptyConfigIsPassthrough(t *testing.T) {
	p, err := Compile(FilterConfig{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	f := frame.Frame{FFBIn: 0.3}
	if err := p.Process(&f); err != frame.ErrNone {
		t.Fatalf("Process returned %v", err)
	}
	if f.TorqueOut != 0.3 {
		t.Fatalf("TorqueOut = %v, want 0.3", f.TorqueOut)
	}
}

func TestCompileFullConfigOrdersNodesCanonically(t *testing.T) {
	cfg := FilterConfig{
		TorqueCap:      &TorqueCapConfig{Max: 1.0},
		Damper:         &DamperConfig{Coeff: 0.2},
		Reconstruction: &ReconstructionConfig{CutoffHz: 100},
		HandsOff:       &HandsOffConfig{ThresholdRadPerSec: 0.01, TimeoutMs: 50},
	}
	p, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	f := frame.Frame{FFBIn: 0, WheelSpeed: 1.0}
	if err := p.Process(&f); err != frame.ErrNone {
		t.Fatalf("Process returned %v", err)
	}
	if f.TorqueOut >= 0 {
		t.Fatalf("TorqueOut = %v, want negative (damper opposing motion)", f.TorqueOut)
	}
}

func TestCompileRejectsInvalidReconstruction(t *testing.T) {
	_, err := Compile(FilterConfig{Reconstruction: &ReconstructionConfig{CutoffHz: -1}})
	var invalid *InvalidConfig
	if err == nil {
		t.Fatal("Compile did not return an error")
	}
	if ic, ok := err.(*InvalidConfig); !ok {
		t.Fatalf("error = %T, want *InvalidConfig", err)
	} else {
		invalid = ic
	}
	if invalid.Which != "reconstruction.cutoff_hz" {
		t.Errorf("Which = %q", invalid.Which)
	}
}

func TestCompileRejectsBothCurveKinds(t *testing.T) {
	_, err := Compile(FilterConfig{
		ResponseCurve: &ResponseCurveConfig{
			Bezier:     &curve.Cubic{},
			Parametric: &ParametricCurveConfig{Type: curve.Linear},
		},
	})
	if err == nil {
		t.Fatal("Compile did not return an error for ambiguous curve config")
	}
}

func TestCompileRejectsMissingCurveKind(t *testing.T) {
	_, err := Compile(FilterConfig{ResponseCurve: &ResponseCurveConfig{}})
	if err == nil {
		t.Fatal("Compile did not return an error for empty curve config")
	}
}

func TestCompileNotchProducesStableCoefficients(t *testing.T) {
	cfg := FilterConfig{
		Notches:   []NotchConfig{{Hz: 60, Q: 4, GainDB: -20}},
		TorqueCap: &TorqueCapConfig{Max: 1.0},
	}
	p, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	f := frame.Frame{FFBIn: 0.5, TorqueOut: 0.5}
	for i := 0; i < 1000; i++ {
		if err := p.Process(&f); err != frame.ErrNone {
			t.Fatalf("tick %d: Process returned %v", i, err)
		}
		if math.IsNaN(float64(f.TorqueOut)) || math.IsInf(float64(f.TorqueOut), 0) {
			t.Fatalf("tick %d: notch filter diverged: %v", i, f.TorqueOut)
		}
	}
}

func TestCompileRejectsBadNotchQ(t *testing.T) {
	_, err := Compile(FilterConfig{Notches: []NotchConfig{{Hz: 60, Q: 0}}})
	if err == nil {
		t.Fatal("Compile did not return an error for zero Q")
	}
}

func TestCompileDeterministicHash(t *testing.T) {
	cfg := FilterConfig{
		Damper:    &DamperConfig{Coeff: 0.4},
		TorqueCap: &TorqueCapConfig{Max: 1.0},
	}
	p1, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	p2, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if p1.Hash() != p2.Hash() {
		t.Fatalf("Hash() not deterministic: %d != %d", p1.Hash(), p2.Hash())
	}

	cfg.Damper.Coeff = 0.5
	p3, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if p1.Hash() == p3.Hash() {
		t.Fatal("Hash() identical for different configs")
	}
}

func TestCompileParametricResponseCurve(t *testing.T) {
	cfg := FilterConfig{
		ResponseCurve: &ResponseCurveConfig{Parametric: &ParametricCurveConfig{Type: curve.Exponential, Exponent: 2}},
		TorqueCap:     &TorqueCapConfig{Max: 1.0},
	}
	p, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	f := frame.Frame{FFBIn: 0.5}
	if err := p.Process(&f); err != frame.ErrNone {
		t.Fatalf("Process returned %v", err)
	}
	if f.TorqueOut >= 0.5 {
		t.Fatalf("TorqueOut = %v, want compressed below linear 0.5 for exponent 2", f.TorqueOut)
	}
}
