// Package dsse implements the DSSE-style signed envelope that wraps
// serialized attestation payloads. The pre-authentication encoding (PAE)
// binds the payload type and content into the signed bytes, so a signature
// for one payload type cannot be replayed as if it covered another.
package dsse

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/provenly/attest/pkg/keys"
)

// PayloadTypeInToto is the payload type for in-toto Statement attestations.
const PayloadTypeInToto = "application/vnd.in-toto+json"

// paeVersionTag identifies the pre-authentication encoding scheme.
const paeVersionTag = "DSSEv1"

// ErrInvalidPayload indicates an envelope payload that cannot be decoded:
// malformed base64 or content that does not match the expected shape.
var ErrInvalidPayload = errors.New("invalid envelope payload")

// Signature is one {key id, signature} pair in an envelope.
type Signature struct {
	KeyID string `json:"keyid"`
	Sig   string `json:"sig"`
}

// Envelope is a signed DSSE envelope: the payload type, the base64-encoded
// serialized payload, and one or more signatures over the PAE. Key id
// uniqueness among signatures is not enforced.
type Envelope struct {
	PayloadType string      `json:"payloadType"`
	Payload     string      `json:"payload"`
	Signatures  []Signature `json:"signatures"`
}

// SignatureStatus is the detailed outcome of envelope verification. Verify
// folds NoMatchingKey and InvalidSignature into plain false; VerifyDetailed
// exposes the distinction.
type SignatureStatus int

const (
	// StatusVerified means a matching key id was found and every matching
	// signature verified.
	StatusVerified SignatureStatus = iota
	// StatusNoMatchingKey means no signature carries the verifier's key id.
	StatusNoMatchingKey
	// StatusInvalidSignature means a matching signature failed
	// cryptographic verification.
	StatusInvalidSignature
)

// String returns the textual status name.
func (s SignatureStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusNoMatchingKey:
		return "no matching key"
	case StatusInvalidSignature:
		return "invalid signature"
	default:
		return "unknown"
	}
}

// PAE builds the canonical pre-authentication encoding for a payload type
// and base64 payload. The segments are space-joined; base64 never contains
// spaces, so no escaping is needed.
func PAE(payloadType, payloadB64 string) []byte {
	return []byte(fmt.Sprintf("%s %s %s", paeVersionTag, payloadType, payloadB64))
}

// Sign serializes the payload, wraps it in an envelope of the given payload
// type, and signs the PAE with the signer's key.
func Sign(payload any, payloadType string, signer *keys.Signer) (*Envelope, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	payloadB64 := base64.StdEncoding.EncodeToString(payloadJSON)
	sig, err := signer.Sign(PAE(payloadType, payloadB64))
	if err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}

	return &Envelope{
		PayloadType: payloadType,
		Payload:     payloadB64,
		Signatures: []Signature{{
			KeyID: signer.KeyID(),
			Sig:   base64.StdEncoding.EncodeToString(sig),
		}},
	}, nil
}

// Verify checks the envelope's signatures against one verifier. The PAE is
// reconstructed from the envelope's own fields, never from caller
// expectations. It returns false both when no signature carries the
// verifier's key id and when a matching signature is cryptographically
// invalid; callers that need the distinction use VerifyDetailed. All
// matching entries are checked and any single failure fails the call. An
// error is returned only for malformed signature encoding.
func (e *Envelope) Verify(verifier *keys.Verifier) (bool, error) {
	status, err := e.VerifyDetailed(verifier)
	if err != nil {
		return false, err
	}
	return status == StatusVerified, nil
}

// VerifyDetailed is Verify with the no-matching-key / invalid-signature
// distinction surfaced.
func (e *Envelope) VerifyDetailed(verifier *keys.Verifier) (SignatureStatus, error) {
	pae := PAE(e.PayloadType, e.Payload)
	found := false

	for _, sig := range e.Signatures {
		if sig.KeyID != verifier.KeyID() {
			continue
		}
		found = true

		raw, err := base64.StdEncoding.DecodeString(sig.Sig)
		if err != nil {
			return StatusInvalidSignature, fmt.Errorf(
				"%w: signature base64: %v", keys.ErrMalformedSignature, err,
			)
		}

		ok, err := verifier.Verify(pae, raw)
		if err != nil {
			return StatusInvalidSignature, err
		}
		if !ok {
			return StatusInvalidSignature, nil
		}
	}

	if !found {
		return StatusNoMatchingKey, nil
	}
	return StatusVerified, nil
}

// DecodePayload base64-decodes the envelope payload and unmarshals it into
// T.
func DecodePayload[T any](e *Envelope) (T, error) {
	var out T

	raw, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		return out, fmt.Errorf("%w: base64: %v", ErrInvalidPayload, err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}
