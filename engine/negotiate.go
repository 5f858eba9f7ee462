package engine

import "github.com/trackforce/ffbcore/mailbox"

// NegotiateMode picks the effect mode actually used for a session,
// supplementing spec.md's bare `effect_mode: enum` field with the
// capability-negotiation step a real host/device handshake needs
// (SPEC_FULL.md, CapabilityNegotiator). requested is what the game or
// user asked for; supported is the device's advertised capability
// list, most-preferred first. If requested is supported, it wins;
// otherwise the device's most-preferred supported mode is used.
func NegotiateMode(requested mailbox.EffectMode, supported []mailbox.EffectMode) mailbox.EffectMode {
	for _, m := range supported {
		if m == requested {
			return requested
		}
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return mailbox.TelemetrySynth
}

// NegotiateMode negotiates requested against the capabilities this
// Engine was configured with.
func (e *Engine) NegotiateMode(requested mailbox.EffectMode) mailbox.EffectMode {
	return NegotiateMode(requested, e.cfg.Capabilities)
}
