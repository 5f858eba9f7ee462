package compiler

import (
	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

// hashConfig produces a deterministic fingerprint of a FilterConfig so
// callers can detect "has the pipeline changed?" without content-sampling
// the compiled nodes. Canonical CBOR (RFC 8949 §4.2.1 deterministic
// encoding: sorted map keys, shortest-form integers) guarantees the same
// FilterConfig value always serializes to the same bytes regardless of
// field-population order, which a plain Go struct literal does not
// guarantee on its own once pointers and slices are involved.
var canonicalEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

func hashConfig(cfg FilterConfig) (uint64, error) {
	b, err := canonicalEncMode.Marshal(cfg)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}
