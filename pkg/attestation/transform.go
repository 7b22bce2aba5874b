package attestation

import (
	"time"

	"github.com/google/uuid"
)

// TransformAttestation documents a transformation applied to one or more
// input artifacts.
type TransformAttestation struct {
	Statement
	Predicate TransformPredicate `json:"predicate"`
}

// TransformPredicate is the transform predicate body.
type TransformPredicate struct {
	Inputs    []InputReference    `json:"inputs"`
	Transform TransformDefinition `json:"transform"`
	Executor  Executor            `json:"executor"`
	Metadata  *ExecutionMetadata  `json:"metadata,omitempty"`
}

// InputReference points to an input artifact by digest, optionally linking
// its own attestation.
type InputReference struct {
	Name           string `json:"name"`
	Digest         Digest `json:"digest"`
	AttestationRef string `json:"attestationRef,omitempty"`
	Level          Level  `json:"level,omitempty"`
}

// TransformDefinition describes the transformation that ran.
type TransformDefinition struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Version    string         `json:"version,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Executor identifies the execution environment.
type Executor struct {
	ID          string      `json:"id"`
	Platform    string      `json:"platform,omitempty"`
	Environment Environment `json:"environment,omitempty"`
}

// ExecutionMetadata carries run statistics. InvocationID is generated when
// left empty.
type ExecutionMetadata struct {
	InvocationID  string     `json:"invocationId,omitempty"`
	StartedOn     *time.Time `json:"startedOn,omitempty"`
	FinishedOn    *time.Time `json:"finishedOn,omitempty"`
	RecordsInput  uint64     `json:"recordsInput,omitempty"`
	RecordsOutput uint64     `json:"recordsOutput,omitempty"`
}

// TransformParams holds the required fields of a transform attestation.
type TransformParams struct {
	Subjects  []Subject
	Inputs    []InputReference
	Transform TransformDefinition
	Executor  Executor
}

// TransformOptions holds the optional fields.
type TransformOptions struct {
	Metadata *ExecutionMetadata
}

// NewTransformAttestation builds a transform attestation after validating
// all required fields. opts may be nil.
func NewTransformAttestation(params TransformParams, opts *TransformOptions) (*TransformAttestation, error) {
	if len(params.Subjects) == 0 {
		return nil, &MissingFieldError{Field: "subject"}
	}
	if len(params.Inputs) == 0 {
		return nil, &MissingFieldError{Field: "inputs"}
	}
	if params.Transform.Name == "" {
		return nil, &MissingFieldError{Field: "transform.name"}
	}
	if params.Executor.ID == "" {
		return nil, &MissingFieldError{Field: "executor.id"}
	}

	a := &TransformAttestation{
		Statement: Statement{
			StatementType: StatementType,
			Subject:       params.Subjects,
			PredicateType: TransformPredicateType,
		},
		Predicate: TransformPredicate{
			Inputs:    params.Inputs,
			Transform: params.Transform,
			Executor:  params.Executor,
		},
	}

	if opts != nil && opts.Metadata != nil {
		meta := *opts.Metadata
		if meta.InvocationID == "" {
			meta.InvocationID = uuid.NewString()
		}
		a.Predicate.Metadata = &meta
	}
	return a, nil
}

// Validate checks the attestation's structural invariants.
func (a *TransformAttestation) Validate() error {
	if err := validateStatement(a.Statement, TransformPredicateType); err != nil {
		return err
	}
	if len(a.Predicate.Inputs) == 0 {
		return &MissingFieldError{Field: "inputs"}
	}
	if a.Predicate.Transform.Name == "" {
		return &MissingFieldError{Field: "transform.name"}
	}
	return nil
}
