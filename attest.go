// Package attest is the facade over the tamper-evidence engine: content
// digests, Merkle trees with inclusion proofs, ECDSA signing, signed
// envelopes, and leveled attestation verification.
//
// The subpackages under pkg/ carry the full APIs; this package bundles the
// common paths into a few calls.
package attest

import (
	"encoding/json"

	"github.com/provenly/attest/pkg/attestation"
	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/keys"
)

// Version is the module version reported by the CLI.
const Version = "0.3.0"

// Sign wraps any attestation payload in a signed envelope with the in-toto
// payload type.
func Sign(payload any, signer *keys.Signer) (*dsse.Envelope, error) {
	return dsse.Sign(payload, dsse.PayloadTypeInToto, signer)
}

// Verify detects the attestation type of a raw JSON document and runs the
// matching structural verification. Signed envelopes need VerifyEnvelope.
func Verify(data []byte) attestation.VerificationResult {
	return attestation.VerifyJSON(data)
}

// VerifyEnvelope checks an envelope's signature, then structurally verifies
// the payload it carries. A valid result reports L2.
func VerifyEnvelope(env *dsse.Envelope, verifier *keys.Verifier) attestation.VerificationResult {
	result := attestation.VerifySigned[json.RawMessage](env, verifier)
	if !result.Valid {
		return result
	}

	payload, err := dsse.DecodePayload[json.RawMessage](env)
	if err != nil {
		return attestation.Fail("payload decode error: %v", err)
	}
	inner := attestation.VerifyJSON(payload)
	if !inner.Valid {
		return inner
	}

	for _, msg := range inner.Messages {
		result = result.WithMessage("%s", msg)
	}
	return result
}
