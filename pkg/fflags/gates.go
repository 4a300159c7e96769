package fflags

// Harness feature gates. Defaults are chosen by the harness Env;
// individual tests can flip them through Features.
var (
	// FeatureVerifySignatures makes transaction submission ed25519-verify
	// every collected signature against the serialized message. When
	// disabled only signature presence is checked.
	FeatureVerifySignatures = Register(GateAddress("VerifySignatures"), "VerifySignatures")

	// FeatureStrictConservation re-checks total lamport supply after
	// every program effect, failing the mutation if supply changed.
	FeatureStrictConservation = Register(GateAddress("StrictConservation"), "StrictConservation")
)
