// Package attestation defines the attestation payload schemas (origin,
// transform, stream-window, DBOM), shape-based type detection, and leveled
// structural verification.
//
// Attestations for the three predicate types are in-toto Statement v1
// documents; the DBOM is a standalone manifest. Construction goes through
// params-struct constructors that validate required fields up front and
// return typed errors, never a half-built value.
package attestation

import (
	"time"

	"github.com/provenly/attest/pkg/hash"
)

// StatementType is the in-toto Statement v1 type identifier.
const StatementType = "https://in-toto.io/Statement/v1"

// Predicate type URIs. These form a closed set; anything else is unknown.
const (
	OriginPredicateType       = "https://provenly.dev/origin/v1"
	TransformPredicateType    = "https://provenly.dev/transform/v1"
	StreamWindowPredicateType = "https://provenly.dev/stream-window/v1"
)

// Level is the assurance level an attestation has reached.
type Level string

const (
	// LevelL1 means the attestation exists and its structure holds.
	LevelL1 Level = "L1"
	// LevelL2 means L1 plus a valid cryptographic signature.
	LevelL2 Level = "L2"
	// LevelL3 means hardened signing. It is defined for wire compatibility
	// but never produced by this module.
	LevelL3 Level = "L3"
)

// Digest carries cryptographic digests of an artifact. SHA256 is required;
// the rest are optional annotations.
type Digest struct {
	SHA256      string `json:"sha256"`
	SHA512      string `json:"sha512,omitempty"`
	RecordCount string `json:"recordCount,omitempty"`
	MerkleRoot  string `json:"merkleRoot,omitempty"`
}

// NewDigest computes the SHA-256 digest of data.
func NewDigest(data []byte) Digest {
	return Digest{SHA256: hash.HashBytes(data).Hex()}
}

// Subject is the artifact an attestation describes.
type Subject struct {
	Name   string `json:"name"`
	Digest Digest `json:"digest"`
}

// SourceType classifies where origin data came from.
type SourceType string

const (
	SourceAPI      SourceType = "api"
	SourceDatabase SourceType = "database"
	SourceFile     SourceType = "file"
	SourceStream   SourceType = "stream"
	SourceManual   SourceType = "manual"
	SourceSensor   SourceType = "sensor"
	SourceOther    SourceType = "other"
)

// CollectionMethod classifies how origin data was collected.
type CollectionMethod string

const (
	MethodPull          CollectionMethod = "pull"
	MethodPush          CollectionMethod = "push"
	MethodScheduledPull CollectionMethod = "scheduled-pull"
	MethodEventDriven   CollectionMethod = "event-driven"
	MethodBatchUpload   CollectionMethod = "batch-upload"
	MethodStreaming     CollectionMethod = "streaming"
	MethodManual        CollectionMethod = "manual"
)

// Environment is the deployment environment of a collector or executor.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

// WindowType is the stream windowing strategy.
type WindowType string

const (
	WindowTumbling WindowType = "tumbling"
	WindowSliding  WindowType = "sliding"
	WindowSession  WindowType = "session"
)

// HashAlgorithmSHA256 names the baseline tree hash algorithm on the wire.
const HashAlgorithmSHA256 = "sha256"

// Statement holds the fields shared by every in-toto attestation document.
type Statement struct {
	StatementType string    `json:"_type"`
	Subject       []Subject `json:"subject"`
	PredicateType string    `json:"predicateType"`
}

// validateStatement checks the shared statement fields against the expected
// predicate type.
func validateStatement(s Statement, wantPredicateType string) error {
	if s.StatementType != StatementType {
		return &InvalidAttestationError{
			Reason: "invalid statement type: expected " +
				StatementType + ", got " + s.StatementType,
		}
	}
	if s.PredicateType != wantPredicateType {
		return &InvalidPredicateTypeError{
			Expected: wantPredicateType,
			Actual:   s.PredicateType,
		}
	}
	if len(s.Subject) == 0 {
		return &MissingFieldError{Field: "subject"}
	}
	return nil
}

// timeUTC normalizes a timestamp for serialization.
func timeUTC(t time.Time) time.Time {
	return t.UTC()
}
