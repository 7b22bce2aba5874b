package attestation

import "time"

// OriginAttestation documents data provenance at the point of collection.
type OriginAttestation struct {
	Statement
	Predicate OriginPredicate `json:"predicate"`
}

// OriginPredicate is the origin predicate body.
type OriginPredicate struct {
	Origin    Origin              `json:"origin"`
	Collector Collector           `json:"collector"`
	Schema    *DataSchema         `json:"schema,omitempty"`
	Metadata  *CollectionMetadata `json:"metadata,omitempty"`
}

// Origin describes the data source and how it was read.
type Origin struct {
	Source              string           `json:"source"`
	SourceType          SourceType       `json:"sourceType"`
	CollectionMethod    CollectionMethod `json:"collectionMethod"`
	CollectionTimestamp time.Time        `json:"collectionTimestamp"`
	Geography           string           `json:"geography,omitempty"`
}

// Collector identifies the component that performed collection.
type Collector struct {
	ID          string      `json:"id"`
	Platform    string      `json:"platform,omitempty"`
	Environment Environment `json:"environment,omitempty"`
}

// DataSchema describes the collected data's format.
type DataSchema struct {
	Format        string            `json:"format"`
	SchemaRef     string            `json:"schemaRef,omitempty"`
	SchemaVersion string            `json:"schemaVersion,omitempty"`
	SchemaDigest  map[string]string `json:"schemaDigest,omitempty"`
}

// CollectionMetadata carries collection statistics.
type CollectionMetadata struct {
	CollectionDuration string     `json:"collectionDuration,omitempty"`
	BytesCollected     uint64     `json:"bytesCollected,omitempty"`
	RecordsCollected   uint64     `json:"recordsCollected,omitempty"`
	RecordsDropped     uint64     `json:"recordsDropped,omitempty"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
}

// OriginParams holds the required fields of an origin attestation.
type OriginParams struct {
	Subjects  []Subject
	Origin    Origin
	Collector Collector
}

// OriginOptions holds the optional fields.
type OriginOptions struct {
	Schema   *DataSchema
	Metadata *CollectionMetadata
}

// NewOriginAttestation builds an origin attestation after validating all
// required fields. opts may be nil.
func NewOriginAttestation(params OriginParams, opts *OriginOptions) (*OriginAttestation, error) {
	if len(params.Subjects) == 0 {
		return nil, &MissingFieldError{Field: "subject"}
	}
	if params.Origin.Source == "" {
		return nil, &MissingFieldError{Field: "origin.source"}
	}
	if params.Collector.ID == "" {
		return nil, &MissingFieldError{Field: "collector.id"}
	}

	a := &OriginAttestation{
		Statement: Statement{
			StatementType: StatementType,
			Subject:       params.Subjects,
			PredicateType: OriginPredicateType,
		},
		Predicate: OriginPredicate{
			Origin:    params.Origin,
			Collector: params.Collector,
		},
	}
	a.Predicate.Origin.CollectionTimestamp = timeUTC(params.Origin.CollectionTimestamp)

	if opts != nil {
		a.Predicate.Schema = opts.Schema
		a.Predicate.Metadata = opts.Metadata
	}
	return a, nil
}

// Validate checks the attestation's structural invariants.
func (a *OriginAttestation) Validate() error {
	if err := validateStatement(a.Statement, OriginPredicateType); err != nil {
		return err
	}
	if a.Predicate.Origin.Source == "" {
		return &MissingFieldError{Field: "origin.source"}
	}
	if a.Predicate.Collector.ID == "" {
		return &MissingFieldError{Field: "collector.id"}
	}
	return nil
}
