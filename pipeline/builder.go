package pipeline

// Builder assembles a Pipeline node by node. It is the only way to
// populate node state from outside the package (package compiler uses it
// exclusively); this keeps each node's state struct an implementation
// detail of pipeline while letting the compiler drive construction from
// validated configuration.
type Builder struct {
	nodes []node
}

// AddReconstruction appends a one-pole anti-alias low-pass node.
func (b *Builder) AddReconstruction(alpha float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Reconstruction, reconstruction: reconstructionState{alpha: alpha}})
	return b
}

// AddResponseCurve appends a LUT-backed response curve node.
func (b *Builder) AddResponseCurve(lut lutLookup) *Builder {
	b.nodes = append(b.nodes, node{kind: ResponseCurve, responseCurve: responseCurveState{lut: lut}})
	return b
}

// AddFriction appends a signed, speed-adapted friction node.
func (b *Builder) AddFriction(coeff, speedScale float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Friction, friction: frictionState{coeff: coeff, speedScale: speedScale}})
	return b
}

// AddDamper appends a velocity-proportional damping node.
func (b *Builder) AddDamper(coeff float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Damper, damper: damperState{coeff: coeff}})
	return b
}

// AddInertia appends an acceleration-proportional resistance node.
func (b *Builder) AddInertia(coeff float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Inertia, inertia: inertiaState{coeff: coeff}})
	return b
}

// AddNotch appends a biquad band-reject node with precomputed
// coefficients (see package compiler for f0/Q -> coefficient derivation).
func (b *Builder) AddNotch(b0, b1, b2, a1, a2 float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Notch, notch: notchState{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}})
	return b
}

// AddSlewRate appends a per-tick delta limiter node.
func (b *Builder) AddSlewRate(maxDelta float32) *Builder {
	b.nodes = append(b.nodes, node{kind: SlewRate, slewRate: slewRateState{maxDelta: maxDelta}})
	return b
}

// AddBumpstop appends a position-clamp spring node.
func (b *Builder) AddBumpstop(angleLimit, stiffness float32) *Builder {
	b.nodes = append(b.nodes, node{kind: Bumpstop, bumpstop: bumpstopState{angleLimit: angleLimit, stiffness: stiffness}})
	return b
}

// AddHandsOff appends a consecutive-tick low-speed detector node.
func (b *Builder) AddHandsOff(threshold float32, windowTicks uint32) *Builder {
	b.nodes = append(b.nodes, node{kind: HandsOff, handsOff: handsOffState{threshold: threshold, windowTicks: windowTicks}})
	return b
}

// AddTorqueCap appends the safety clamp node. By convention it is always
// compiled last when present (spec.md §3).
func (b *Builder) AddTorqueCap(max float32) *Builder {
	b.nodes = append(b.nodes, node{kind: TorqueCap, torqueCap: torqueCapState{max: max}})
	return b
}

// Kinds returns the compiled node kinds in order, for introspection and
// testing.
func (b *Builder) Kinds() []Kind {
	kinds := make([]Kind, len(b.nodes))
	for i, n := range b.nodes {
		kinds[i] = n.kind
	}
	return kinds
}

// Build finalizes the pipeline with the given deterministic config hash.
func (b *Builder) Build(hash uint64) *Pipeline {
	nodes := make([]node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Pipeline{nodes: nodes, hash: hash}
}
