package attestation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/hash"
	"github.com/provenly/attest/pkg/keys"
)

// VerificationResult is the outcome of one verification call. It is created
// fresh per call; the With* annotation methods are only used before the
// result is returned.
type VerificationResult struct {
	// Valid reports whether verification passed.
	Valid bool
	// Level is the assurance level reached when Valid is true.
	Level Level
	// Messages are ordered diagnostics.
	Messages []string
	// Warnings are ordered non-fatal findings.
	Warnings []string
}

// Pass creates a passing result at the given level.
func Pass(level Level) VerificationResult {
	return VerificationResult{Valid: true, Level: level}
}

// Fail creates a failing result with one message.
func Fail(format string, args ...any) VerificationResult {
	return VerificationResult{
		Valid:    false,
		Messages: []string{fmt.Sprintf(format, args...)},
	}
}

// WithMessage appends a diagnostic message.
func (r VerificationResult) WithMessage(format string, args ...any) VerificationResult {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
	return r
}

// WithWarning appends a non-fatal warning.
func (r VerificationResult) WithWarning(format string, args ...any) VerificationResult {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	return r
}

// VerifyDigest recomputes the SHA-256 of data and compares it against the
// digest. A mismatch is returned as a HashMismatchError carrying both
// values.
func VerifyDigest(d Digest, data []byte) error {
	computed := hash.HashBytes(data).Hex()
	if computed != d.SHA256 {
		return &HashMismatchError{Expected: d.SHA256, Actual: computed}
	}
	return nil
}

// VerifyDigestHex compares the digest's SHA-256 against a hex string,
// case-insensitively.
func VerifyDigestHex(d Digest, expected string) bool {
	return strings.EqualFold(d.SHA256, expected)
}

// checkDigest enforces the exact hex length invariant on a digest's primary
// hash. Any other length is a hard structural failure.
func checkDigest(name string, d Digest) *VerificationResult {
	if len(d.SHA256) != hash.HexSize {
		r := Fail(
			"invalid SHA-256 hash length for %q: expected %d, got %d",
			name, hash.HexSize, len(d.SHA256),
		)
		return &r
	}
	return nil
}

func checkSubjects(subjects []Subject) *VerificationResult {
	for _, s := range subjects {
		if r := checkDigest(s.Name, s.Digest); r != nil {
			return r
		}
	}
	return nil
}

// VerifyOriginStructure performs the L1 structural check on an origin
// attestation.
func VerifyOriginStructure(a *OriginAttestation) VerificationResult {
	if err := a.Validate(); err != nil {
		return Fail("structure validation failed: %v", err)
	}
	if r := checkSubjects(a.Subject); r != nil {
		return *r
	}
	return Pass(LevelL1).WithMessage("origin attestation structure is valid")
}

// VerifyTransformStructure performs the L1 structural check on a transform
// attestation.
func VerifyTransformStructure(a *TransformAttestation) VerificationResult {
	if err := a.Validate(); err != nil {
		return Fail("structure validation failed: %v", err)
	}
	for _, input := range a.Predicate.Inputs {
		if r := checkDigest(input.Name, input.Digest); r != nil {
			return *r
		}
	}
	if r := checkSubjects(a.Subject); r != nil {
		return *r
	}
	return Pass(LevelL1).WithMessage("transform attestation structure is valid")
}

// VerifyStreamWindowStructure performs the L1 structural check on a
// stream-window attestation.
func VerifyStreamWindowStructure(a *StreamWindowAttestation) VerificationResult {
	if err := a.Validate(); err != nil {
		return Fail("structure validation failed: %v", err)
	}

	tree := a.Predicate.Integrity.MerkleTree
	if len(tree.Root) != hash.HexSize {
		return Fail(
			"invalid Merkle root length: expected %d, got %d",
			hash.HexSize, len(tree.Root),
		)
	}
	if tree.LeafCount == 0 {
		return Fail("Merkle tree has no leaves")
	}

	if chain := a.Predicate.Integrity.Chain; chain != nil && chain.PreviousMerkleRoot != "" {
		if len(chain.PreviousMerkleRoot) != hash.HexSize {
			return Fail(
				"invalid previous Merkle root length: expected %d, got %d",
				hash.HexSize, len(chain.PreviousMerkleRoot),
			)
		}
		if chain.PreviousWindowID == "" {
			return Fail("previous window ID is empty")
		}
	}

	return Pass(LevelL1).WithMessage("stream window attestation structure is valid")
}

// VerifyDBOMStructure performs the L1 structural check on a DBOM manifest.
func VerifyDBOMStructure(d *DBOM) VerificationResult {
	if err := d.Validate(); err != nil {
		return Fail("DBOM validation failed: %v", err)
	}
	if r := checkDigest(d.Dataset.Name, d.Dataset.Digest); r != nil {
		return *r
	}
	return Pass(LevelL1).WithMessage("DBOM structure is valid")
}

// VerifySigned checks an envelope's signature with the given verifier, then
// decodes the payload into T and reports L2 on success. Semantic failures
// come back as a failing result, not an error.
func VerifySigned[T any](env *dsse.Envelope, verifier *keys.Verifier) VerificationResult {
	ok, err := env.Verify(verifier)
	if err != nil {
		return Fail("signature error: %v", err)
	}
	if !ok {
		return Fail("signature verification failed")
	}

	if _, err := dsse.DecodePayload[T](env); err != nil {
		return Fail("payload decode error: %v", err)
	}

	return Pass(LevelL2).
		WithMessage("signed attestation is valid").
		WithMessage("signature verified for key: %s", verifier.KeyID())
}

// VerifyJSON detects the attestation type of a raw JSON document and runs
// the matching structural verification. Signed envelopes cannot be verified
// without a key; they fail with a pointer to the signature path.
func VerifyJSON(data []byte) VerificationResult {
	detected, err := DetectType(data)
	if err != nil {
		return Fail("type detection failed: %v", err)
	}

	switch detected {
	case TypeOrigin:
		var a OriginAttestation
		if err := json.Unmarshal(data, &a); err != nil {
			return Fail("parse error: %v", err)
		}
		return VerifyOriginStructure(&a)
	case TypeTransform:
		var a TransformAttestation
		if err := json.Unmarshal(data, &a); err != nil {
			return Fail("parse error: %v", err)
		}
		return VerifyTransformStructure(&a)
	case TypeStreamWindow:
		var a StreamWindowAttestation
		if err := json.Unmarshal(data, &a); err != nil {
			return Fail("parse error: %v", err)
		}
		return VerifyStreamWindowStructure(&a)
	case TypeDBOM:
		var d DBOM
		if err := json.Unmarshal(data, &d); err != nil {
			return Fail("parse error: %v", err)
		}
		return VerifyDBOMStructure(&d)
	case TypeSigned:
		return Fail("signed attestations require a verifier key")
	default:
		return Fail("unhandled attestation type %q", detected)
	}
}
